package core

import (
	"testing"

	"github.com/rs/zerolog"
)

type sent struct {
	to     string
	except string
	ev     *Event
}

type recordingBroadcaster struct {
	sent []sent
}

func (r *recordingBroadcaster) SendTo(connID string, ev *Event) {
	r.sent = append(r.sent, sent{to: connID, ev: ev})
}

func (r *recordingBroadcaster) SendExcept(connID string, ev *Event) {
	r.sent = append(r.sent, sent{except: connID, ev: ev})
}

func newTestProtocol() (*presenceProtocol, *recordingBroadcaster) {
	out := &recordingBroadcaster{}
	nop := zerolog.Nop()
	return &presenceProtocol{reg: sequentialRegistry(), out: out, log: &nop}, out
}

func TestProtocolHelloPeersExcludeSelf(t *testing.T) {
	p, out := newTestProtocol()

	for _, id := range []string{"c1", "c2", "c3"} {
		if _, err := p.connect(id); err != nil {
			t.Fatalf("connect %s: %v", id, err)
		}
	}

	hello := out.sent[len(out.sent)-2]
	if hello.to != "c3" || hello.ev.Kind != EventHello {
		t.Fatalf("expected hello to c3, got %+v", hello)
	}
	seen := map[string]int{}
	for _, peer := range hello.ev.Peers {
		if peer.UserID == hello.ev.Self.UserID {
			t.Fatalf("peers contain self: %+v", hello.ev.Peers)
		}
		seen[peer.UserID]++
	}
	if len(seen) != 2 || seen["user-1"] != 1 || seen["user-2"] != 1 {
		t.Fatalf("unexpected peers: %+v", hello.ev.Peers)
	}

	joined := out.sent[len(out.sent)-1]
	if joined.except != "c3" || joined.ev.Kind != EventJoined || joined.ev.Record.UserID != "user-3" {
		t.Fatalf("expected joined fan-out excluding c3, got %+v", joined)
	}
}

func TestProtocolStateUpdateFansOutExceptOrigin(t *testing.T) {
	p, out := newTestProtocol()
	_, _ = p.connect("c1")
	_, _ = p.connect("c2")
	out.sent = nil

	p.stateUpdate("c2", -0.5)

	if len(out.sent) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(out.sent))
	}
	msg := out.sent[0]
	if msg.except != "c2" || msg.ev.Kind != EventStateUpdate || msg.ev.UserID != "user-2" || msg.ev.Intensity != 0 {
		t.Fatalf("unexpected state update: %+v", msg)
	}
}

func TestProtocolStaleReferencesAreSilent(t *testing.T) {
	p, out := newTestProtocol()

	p.stateUpdate("ghost", 0.9)
	p.disconnect("ghost")

	if len(out.sent) != 0 {
		t.Fatalf("stale references should not broadcast: %+v", out.sent)
	}
	if p.reg.Len() != 0 {
		t.Fatalf("stale update created a record")
	}
}

func TestProtocolDisconnectOnce(t *testing.T) {
	p, out := newTestProtocol()
	_, _ = p.connect("c1")
	out.sent = nil

	p.disconnect("c1")
	p.disconnect("c1")

	if len(out.sent) != 1 || out.sent[0].ev.Kind != EventLeft || out.sent[0].ev.UserID != "user-1" {
		t.Fatalf("expected a single left event, got %+v", out.sent)
	}
}
