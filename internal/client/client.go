// Package client is a headless presence participant: it mirrors the server
// registry and reports its own intensity at a throttled rate.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pulse-server/internal/mirror"
	"github.com/vovakirdan/pulse-server/internal/proto"
)

const (
	// DefaultEmitInterval bounds outbound stateUpdate frequency.
	DefaultEmitInterval = 120 * time.Millisecond
	// DefaultSampleInterval is how often the sampler is read.
	DefaultSampleInterval = 30 * time.Millisecond
)

// ErrUnexpectedMessage is returned for server messages the client cannot decode.
var ErrUnexpectedMessage = errors.New("unexpected server message")

// Options configures a Client.
type Options struct {
	URL            string
	EmitInterval   time.Duration
	SampleInterval time.Duration
	Sampler        Sampler
}

// Client connects to a presence server and keeps a local mirror.
type Client struct {
	opts   Options
	mirror *mirror.Mirror
	log    *zerolog.Logger
}

type inbound struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error,omitempty"`
}

// New builds a client. A nil sampler reports a steady zero.
func New(opts Options, logger *zerolog.Logger) *Client {
	if opts.EmitInterval <= 0 {
		opts.EmitInterval = DefaultEmitInterval
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = DefaultSampleInterval
	}
	if opts.Sampler == nil {
		opts.Sampler = Unavailable
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{opts: opts, mirror: mirror.New(), log: logger}
}

// Mirror exposes the local replica for read-only use.
func (c *Client) Mirror() *mirror.Mirror {
	return c.mirror
}

// Run dials the server and blocks until ctx is cancelled or the connection ends.
// Disconnect is terminal; Run does not reconnect.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.opts.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.opts.URL, err)
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- c.readLoop(ctx, conn)
	}()
	go func() {
		errCh <- c.emitLoop(ctx, conn)
	}()

	err = <-errCh
	cancel()
	<-errCh

	conn.Close(websocket.StatusNormalClosure, "bye")
	if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		return nil
	}
	return err
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg inbound
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}
		if err := c.handle(msg); err != nil {
			c.log.Warn().Err(err).Str("type", msg.Type).Msg("ignoring server message")
		}
	}
}

// handle applies one server message to the mirror.
func (c *Client) handle(msg inbound) error {
	switch msg.Type {
	case proto.TypeHello:
		var hello proto.Hello
		if err := json.Unmarshal(msg.Data, &hello); err != nil {
			return fmt.Errorf("decode hello: %w", err)
		}
		c.mirror.ApplyHello(hello)
		c.log.Info().Str("user_id", hello.Self.UserID).Int("peers", len(hello.Peers)).Msg("connected")
	case proto.TypeJoined:
		var rec proto.Record
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			return fmt.Errorf("decode joined: %w", err)
		}
		c.mirror.ApplyJoined(rec)
		c.log.Debug().Str("user_id", rec.UserID).Msg("peer joined")
	case proto.TypeStateUpdate:
		var update proto.StateUpdateOut
		if err := json.Unmarshal(msg.Data, &update); err != nil {
			return fmt.Errorf("decode stateUpdate: %w", err)
		}
		c.mirror.ApplyStateUpdate(update)
	case proto.TypeLeft:
		var left proto.Left
		if err := json.Unmarshal(msg.Data, &left); err != nil {
			return fmt.Errorf("decode left: %w", err)
		}
		c.mirror.ApplyLeft(left)
		c.log.Debug().Str("user_id", left.UserID).Msg("peer left")
	case proto.TypeError:
		if msg.Error != nil {
			c.log.Warn().Str("code", msg.Error.Code).Str("msg", msg.Error.Msg).Msg("server error")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnexpectedMessage, msg.Type)
	}
	return nil
}

func (c *Client) emitLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(c.opts.SampleInterval)
	defer ticker.Stop()

	em := newEmitter(c.opts.EmitInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			sample, ok := c.opts.Sampler.Sample()
			if !ok {
				sample = 0
			}
			// Nothing to report until the server has told us who we are.
			if !c.mirror.SetSelfIntensity(sample) {
				continue
			}
			v, send := em.offer(now, sample)
			if !send {
				continue
			}
			data, err := json.Marshal(map[string]float64{"intensity": v})
			if err != nil {
				return err
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeStateUpdate, Data: data}); err != nil {
				return err
			}
		}
	}
}
