package dispatcher

import (
	"github.com/google/uuid"
)

// Transport names
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
	TransportLocal = "local"
)

// Session identifies the connection a call arrived on. Each transport
// connection owns its own Session; nothing about a connection is kept at
// package level.
type Session struct {
	ID        string
	Transport string
}

// NewSession returns a Session with a fresh random ID.
func NewSession(transport string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Transport: transport,
	}
}

// id and transport accept a nil receiver; calls without a session are anonymous.
func (s *Session) id() string {
	if s == nil {
		return ""
	}
	return s.ID
}

func (s *Session) transport() string {
	if s == nil {
		return ""
	}
	return s.Transport
}
