package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vovakirdan/pulse-server/internal/mirror"
	"github.com/vovakirdan/pulse-server/internal/proto"
)

func TestPrintMirror(t *testing.T) {
	m := mirror.New()
	m.ApplyHello(proto.Hello{
		Self:  proto.Record{UserID: "me", Color: proto.Color{Hex: "#112233"}, Position: proto.Position{X: 0.25, Y: 0.75}},
		Peers: []proto.Record{{UserID: "peer", Intensity: 0.5}},
	})

	var buf bytes.Buffer
	printMirror(&buf, m)

	out := buf.String()
	if !strings.Contains(out, "USER") || !strings.Contains(out, "#112233") {
		t.Fatalf("missing header or colour: %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "me") || !strings.Contains(lines[1], "true") {
		t.Fatalf("self row wrong: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "peer") || !strings.Contains(lines[2], "0.50") {
		t.Fatalf("peer row wrong: %q", lines[2])
	}
}
