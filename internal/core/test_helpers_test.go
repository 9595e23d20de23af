package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/vovakirdan/pulse-server/internal/presence"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func expectNoEvent(t *testing.T, ch <-chan *Event, wait time.Duration) {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(wait):
	}
}

func sequentialRegistry() *presence.Registry {
	n := 0
	return presence.NewRegistry(presence.NewAllocator(presence.AllocatorOptions{
		NewID: func() string {
			n++
			return fmt.Sprintf("user-%d", n)
		},
	}))
}
