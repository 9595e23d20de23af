package http

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vovakirdan/pulse-server/internal/core"
	"github.com/vovakirdan/pulse-server/internal/presence"
	"github.com/vovakirdan/pulse-server/internal/proto"
)

func TestInboundToCommandStateUpdate(t *testing.T) {
	cases := []struct {
		data string
		want float64
	}{
		{data: `{"intensity":0.5}`, want: 0.5},
		{data: `{"intensity":7}`, want: 1},
		{data: `{"intensity":[1]}`, want: 0},
		{data: `42`, want: 0},
		{data: ``, want: 0},
	}
	for _, tc := range cases {
		cmd, protoErr := inboundToCommand(proto.Inbound{Type: proto.TypeStateUpdate, Data: json.RawMessage(tc.data)})
		if protoErr != nil {
			t.Fatalf("data %q: unexpected error %+v", tc.data, protoErr)
		}
		if cmd.Kind != core.CommandStateUpdate || cmd.Intensity != tc.want {
			t.Fatalf("data %q: got %+v, want intensity %v", tc.data, cmd, tc.want)
		}
	}
}

func TestInboundToCommandRejectsUnknownTypes(t *testing.T) {
	if _, protoErr := inboundToCommand(proto.Inbound{}); protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
		t.Fatalf("expected bad_request for empty type, got %+v", protoErr)
	}
	// Server-originated types are not accepted from clients.
	if _, protoErr := inboundToCommand(proto.Inbound{Type: proto.TypeJoined}); protoErr == nil || protoErr.Code != core.ErrCodeInvalidMessage {
		t.Fatalf("expected invalid_message, got %+v", protoErr)
	}
}

func TestOutboundFromEventShapes(t *testing.T) {
	rec := presence.Record{UserID: "u1", ConnectionID: "c1", Intensity: 0.3}

	hello := outboundFromEvent(&core.Event{Kind: core.EventHello, Self: rec})
	data, ok := hello.Data.(proto.Hello)
	if hello.Type != proto.TypeHello || !ok || data.Self.UserID != "u1" || data.Peers == nil {
		t.Fatalf("unexpected hello: %+v", hello)
	}

	left := outboundFromEvent(&core.Event{Kind: core.EventLeft, UserID: "u1"})
	if left.Type != proto.TypeLeft || left.Data.(proto.Left).UserID != "u1" {
		t.Fatalf("unexpected left: %+v", left)
	}

	update := outboundFromEvent(&core.Event{Kind: core.EventStateUpdate, UserID: "u1", Intensity: 0.7})
	if update.Type != proto.TypeStateUpdate || update.Data.(proto.StateUpdateOut).Intensity != 0.7 {
		t.Fatalf("unexpected state update: %+v", update)
	}

	raw, err := json.Marshal(outboundFromEvent(&core.Event{Kind: core.EventJoined, Record: rec}))
	if err != nil {
		t.Fatalf("marshal joined: %v", err)
	}
	if strings.Contains(string(raw), `"c1"`) {
		t.Fatalf("joined leaks connection id: %s", raw)
	}
}

