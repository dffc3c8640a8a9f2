package chathub

// Client is the transport side of one connection. It abstracts the
// underlying mechanism (WebSocket in production, in-memory doubles in
// tests) so the router can deliver to any client type uniformly.
type Client interface {
	// GetSessionID returns the connection-scoped session identifier.
	GetSessionID() string

	// GetSendChannel returns the channel the router delivers marshaled
	// events to. It is never closed; delivery stops when the client is
	// torn down.
	GetSendChannel() chan<- []byte

	// Close shuts the transport down. Safe to call more than once.
	Close()
}
