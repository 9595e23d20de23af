package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pulse-server/internal/core"
	"github.com/vovakirdan/pulse-server/internal/proto"
)

// WSOptions tunes per-connection behaviour.
type WSOptions struct {
	Buffer              int
	MaxUpdatesPerSecond float64
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub  *core.Hub
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString(), h.opts.Buffer)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	commands := make(chan *core.Command)
	errCh := make(chan error, 3)
	go func() {
		errCh <- h.readLoop(ctx, conn, client.ID, commands)
	}()
	go func() {
		errCh <- h.forwardLoop(ctx, client, commands)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutines
	<-errCh
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, core.ErrSlowConsumer):
		h.log.Warn().Str("conn_id", client.ID).Msg("closing slow ws connection")
		conn.Close(websocket.StatusPolicyViolation, "connection too slow")
		return
	case errors.Is(err, core.ErrHubStopped):
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop decodes inbound frames into commands. Protocol errors become
// reject commands so the hub answers them in order with other events.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, connID string, out chan<- *core.Command) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("conn_id", connID).Msg("read ws inbound")
			return err
		}

		var cmd *core.Command
		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", connID).Msg("malformed inbound envelope")
			cmd = core.RejectCommand(core.ErrCodeInvalidMessage, "malformed message")
		} else if c, protoErr := inboundToCommand(inbound); protoErr != nil {
			cmd = core.RejectCommand(protoErr.Code, protoErr.Msg)
		} else {
			cmd = c
		}

		select {
		case out <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// forwardLoop hands commands to the hub. State updates over the rate limit are
// coalesced: only the newest pending value is kept and it is sent once the
// limiter allows, so the last reported intensity always reaches the hub.
func (h *WSHandler) forwardLoop(ctx context.Context, client *core.Client, in <-chan *core.Command) error {
	limiter := newRateLimiter(h.opts.MaxUpdatesPerSecond)

	var pending *core.Command
	var timer *time.Timer
	var wake <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	send := func(cmd *core.Command) error {
		select {
		case client.Commands <- cmd:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case cmd := <-in:
			if cmd.Kind != core.CommandStateUpdate {
				if err := send(cmd); err != nil {
					return err
				}
				continue
			}
			if wake != nil {
				h.log.Debug().Str("conn_id", client.ID).Msg("state update coalesced")
				pending = cmd
				continue
			}
			if limiter.allow() {
				if err := send(cmd); err != nil {
					return err
				}
				continue
			}
			pending = cmd
			timer = time.NewTimer(limiter.reserve())
			wake = timer.C
		case <-wake:
			wake = nil
			cmd := pending
			pending = nil
			if err := send(cmd); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return client.Err()
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
