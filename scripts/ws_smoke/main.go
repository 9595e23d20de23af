package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pulse-server/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run speaks the raw wire protocol: it waits for hello, reports one
// intensity and prints whatever arrives until the timeout.
func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	intensity := flag.String("intensity", "0.5", "raw JSON value to send as intensity")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var hello frame
	if err := wsjson.Read(ctx, conn, &hello); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	if hello.Type != proto.TypeHello {
		return fmt.Errorf("expected hello, got %s", hello.Type)
	}
	var h proto.Hello
	if err := json.Unmarshal(hello.Data, &h); err != nil {
		return fmt.Errorf("unmarshal hello: %w", err)
	}
	fmt.Printf("Hello: self=%s color=%s pos=(%.2f,%.2f) peers=%d\n",
		h.Self.UserID, h.Self.Color.Hex, h.Self.Position.X, h.Self.Position.Y, len(h.Peers))

	payload := json.RawMessage(fmt.Sprintf(`{"intensity":%s}`, *intensity))
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.TypeStateUpdate, Data: payload}); err != nil {
		return fmt.Errorf("send stateUpdate: %w", err)
	}

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		switch f.Type {
		case proto.TypeJoined:
			var rec proto.Record
			if err := json.Unmarshal(f.Data, &rec); err == nil {
				fmt.Printf("Joined: user=%s color=%s\n", rec.UserID, rec.Color.Hex)
			}
		case proto.TypeStateUpdate:
			var u proto.StateUpdateOut
			if err := json.Unmarshal(f.Data, &u); err == nil {
				fmt.Printf("State: user=%s intensity=%.3f\n", u.UserID, u.Intensity)
			}
		case proto.TypeLeft:
			var l proto.Left
			if err := json.Unmarshal(f.Data, &l); err == nil {
				fmt.Printf("Left: user=%s\n", l.UserID)
			}
		case proto.TypeError:
			if f.Error != nil {
				fmt.Printf("Error: %s %s\n", f.Error.Code, f.Error.Msg)
			}
		default:
			fmt.Printf("Raw: type=%s data=%s\n", f.Type, string(f.Data))
		}
	}
}
