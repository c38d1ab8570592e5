package core

import "github.com/tbarros/salachat/internal/domain"

// Frame is one encoded wire payload.
type Frame []byte

type SessionID string

// Connection abstracts the outbound half of a member transport.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	TrySend(Frame) error
	Close()
}

// Session binds a domain.User and its transport endpoint.
// This is what a room stores and fans out to.
type Session interface {
	User() *domain.User
	Conn() Connection
}
