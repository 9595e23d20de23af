package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandStateUpdate reports the client's own intensity.
	CommandStateUpdate CommandKind = iota
	// CommandReject asks the hub to answer the client with Error.
	CommandReject
)

// Command represents an action requested by a client.
// Intensity is the value decoded from the wire; the registry clamps it again.
type Command struct {
	Kind      CommandKind
	Intensity float64
	Error     *CoreError
}

// RejectCommand builds a command that reports a protocol error back to its sender
// through the hub, keeping it ordered with the sender's other events.
func RejectCommand(code, msg string) *Command {
	return &Command{Kind: CommandReject, Error: coreError(code, msg)}
}
