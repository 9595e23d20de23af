package core

import "github.com/vovakirdan/pulse-server/internal/presence"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventHello delivers the snapshot to a newly connected client.
	EventHello EventKind = iota
	// EventJoined announces a new participant to everyone else.
	EventJoined
	// EventStateUpdate relays another participant's intensity.
	EventStateUpdate
	// EventLeft announces a participant's disconnect.
	EventLeft
	// EventError notifies a client about a protocol error.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventHello:
		return "hello"
	case EventJoined:
		return "joined"
	case EventStateUpdate:
		return "stateUpdate"
	case EventLeft:
		return "left"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
// Events are shared between recipients and must not be modified after sending.
type Event struct {
	Kind      EventKind
	Self      presence.Record   // EventHello
	Peers     []presence.Record // EventHello
	Record    presence.Record   // EventJoined
	UserID    string            // EventStateUpdate, EventLeft
	Intensity float64           // EventStateUpdate
	Error     *CoreError
}
