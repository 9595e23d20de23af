package core

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pulse-server/internal/presence"
)

// Broadcaster is the transport surface the presence protocol needs.
// Both methods are fire-and-forget.
type Broadcaster interface {
	// SendTo delivers ev to a single connection.
	SendTo(connID string, ev *Event)
	// SendExcept delivers ev to every registered connection but connID.
	SendExcept(connID string, ev *Event)
}

// presenceProtocol applies connection lifecycle and state changes to the
// registry and fans the results out. It must only be driven from one goroutine.
type presenceProtocol struct {
	reg *presence.Registry
	out Broadcaster
	log *zerolog.Logger
}

func (p *presenceProtocol) connect(connID string) (presence.Record, error) {
	rec, err := p.reg.Register(connID)
	if err != nil {
		return presence.Record{}, err
	}

	all := p.reg.Snapshot()
	peers := make([]presence.Record, 0, len(all))
	for _, r := range all {
		if r.ConnectionID != connID {
			peers = append(peers, r)
		}
	}

	p.out.SendTo(connID, &Event{Kind: EventHello, Self: rec, Peers: peers})
	p.out.SendExcept(connID, &Event{Kind: EventJoined, Record: rec})

	p.log.Info().Str("conn_id", connID).Str("user_id", rec.UserID).Int("peers", len(peers)).Msg("participant joined")
	return rec, nil
}

func (p *presenceProtocol) stateUpdate(connID string, raw float64) {
	applied, ok := p.reg.ApplyIntensity(connID, raw)
	if !ok {
		p.log.Debug().Str("conn_id", connID).Msg("state update for unknown connection ignored")
		return
	}
	rec, _ := p.reg.Get(connID)
	p.out.SendExcept(connID, &Event{Kind: EventStateUpdate, UserID: rec.UserID, Intensity: applied})
}

func (p *presenceProtocol) disconnect(connID string) {
	rec, ok := p.reg.Remove(connID)
	if !ok {
		return
	}
	p.out.SendExcept(connID, &Event{Kind: EventLeft, UserID: rec.UserID})
	p.log.Info().Str("conn_id", connID).Str("user_id", rec.UserID).Msg("participant left")
}
