package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pulse-server/internal/presence"
)

type clientCommand struct {
	client *Client
	cmd    *Command
}

// Hub owns the presence registry and serializes every change to it.
// All registry access happens on the goroutine running Run.
type Hub struct {
	clients  map[string]*Client
	protocol presenceProtocol
	log      *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	snapshots  chan chan []presence.Record
	stopped    chan struct{}

	// slow holds clients whose buffer overflowed during the current event.
	slow []*Client
}

// NewHub creates a hub around reg. Nil arguments fall back to an empty
// registry and a disabled logger.
func NewHub(reg *presence.Registry, logger *zerolog.Logger) *Hub {
	if reg == nil {
		reg = presence.NewRegistry(nil)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	h := &Hub{
		clients:    make(map[string]*Client),
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
		snapshots:  make(chan chan []presence.Record),
		stopped:    make(chan struct{}),
	}
	h.protocol = presenceProtocol{reg: reg, out: h, log: logger}
	return h
}

// Run processes hub events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleRegister(c)
		case c := <-h.unregister:
			h.handleUnregister(c)
		case cc := <-h.commands:
			h.handleCommand(cc.client, cc.cmd)
		case reply := <-h.snapshots:
			reply <- h.protocol.reg.Snapshot()
		}
		h.evictSlow()
	}
}

// RegisterClient adds a connection. The client receives its hello event (or
// a closed Events channel on failure) before any command it sends is handled.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		c.close(ErrHubStopped)
		return
	}
	go h.pump(c)
}

// UnregisterClient removes a connection and announces its departure.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
	}
}

// Snapshot returns the current registry contents in join order.
func (h *Hub) Snapshot(ctx context.Context) ([]presence.Record, error) {
	reply := make(chan []presence.Record, 1)
	select {
	case h.snapshots <- reply:
	case <-h.stopped:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case records := <-reply:
		return records, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// pump forwards a client's commands to the hub until the client is unregistered.
func (h *Hub) pump(c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-h.stopped:
				return
			}
		case <-c.done:
			return
		case <-h.stopped:
			return
		}
	}
}

func (h *Hub) handleRegister(c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		h.log.Error().Str("conn_id", c.ID).Msg("connection registered twice")
		c.close(presence.ErrAlreadyRegistered)
		return
	}
	h.clients[c.ID] = c
	if _, err := h.protocol.connect(c.ID); err != nil {
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("register presence")
		delete(h.clients, c.ID)
		c.close(err)
	}
}

func (h *Hub) handleUnregister(c *Client) {
	if cur, ok := h.clients[c.ID]; !ok || cur != c {
		return
	}
	h.protocol.disconnect(c.ID)
	delete(h.clients, c.ID)
	c.close(nil)
}

// evictSlow disconnects clients that missed an event, so every connected
// client has seen the full event sequence. Announcing their departure may
// overflow further clients; the loop handles those too.
func (h *Hub) evictSlow() {
	for len(h.slow) > 0 {
		c := h.slow[0]
		h.slow = h.slow[1:]
		if cur, ok := h.clients[c.ID]; !ok || cur != c {
			continue
		}
		delete(h.clients, c.ID)
		h.protocol.disconnect(c.ID)
		c.close(ErrSlowConsumer)
		h.log.Warn().Str("conn_id", c.ID).Msg("slow client disconnected")
	}
	h.slow = nil
}

func (h *Hub) handleCommand(c *Client, cmd *Command) {
	if cmd == nil {
		return
	}
	if cur, ok := h.clients[c.ID]; !ok || cur != c {
		return
	}
	switch cmd.Kind {
	case CommandStateUpdate:
		h.protocol.stateUpdate(c.ID, cmd.Intensity)
	case CommandReject:
		h.SendTo(c.ID, &Event{Kind: EventError, Error: cmd.Error})
	default:
		h.SendTo(c.ID, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unsupported command")})
	}
}

// SendTo delivers ev to one connection without blocking.
func (h *Hub) SendTo(connID string, ev *Event) {
	if c, ok := h.clients[connID]; ok {
		h.deliver(c, ev)
	}
}

// SendExcept delivers ev to every connection except connID without blocking.
func (h *Hub) SendExcept(connID string, ev *Event) {
	for id, c := range h.clients {
		if id == connID {
			continue
		}
		h.deliver(c, ev)
	}
}

func (h *Hub) deliver(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		for _, s := range h.slow {
			if s == c {
				return
			}
		}
		h.log.Debug().Str("conn_id", c.ID).Stringer("event", ev.Kind).Msg("client buffer full")
		h.slow = append(h.slow, c)
	}
}
