package core

// DefaultClientBuffer is the outbound event buffer used when none is configured.
const DefaultClientBuffer = 32

// Client is a connection as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	done chan struct{}
	err  error
}

// NewClient constructs a client with initialized channels.
// buffer bounds pending outbound events; a client whose buffer overflows is
// disconnected.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Err reports why the hub closed Events. It is nil after a normal unregister
// and must only be read once Events is closed.
func (c *Client) Err() error {
	return c.err
}

// close ends the client's session. Only the hub goroutine calls it.
func (c *Client) close(err error) {
	c.err = err
	close(c.done)
	close(c.Events)
}
