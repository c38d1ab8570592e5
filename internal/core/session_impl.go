package core

import "github.com/tbarros/salachat/internal/domain"

// session implements Session by pairing user + transport.
type session struct {
	user *domain.User
	conn Connection
}

func NewSession(user *domain.User, conn Connection) Session {
	return &session{user: user, conn: conn}
}

func (s *session) User() *domain.User { return s.user }
func (s *session) Conn() Connection   { return s.conn }
