package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

type sessionEntry struct {
	RoomName domain.RoomName
	Session  core.Session
	Cancel   context.CancelFunc
}

// Registry owns the session-id to session binding and remembers which
// room, if any, each session is in. Room member sets live in the room
// itself; the registry is the reverse index.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) Bind(sid core.SessionID, sess core.Session, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
}

func (r *Registry) Get(sid core.SessionID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// RoomOf reports the room a session currently belongs to. ok is false
// for unknown sessions and for sessions that have not joined yet.
func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomName, core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomName == "" {
		return "", nil, false
	}
	return e.RoomName, e.Session, true
}

func (r *Registry) SetRoom(sid core.SessionID, room domain.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomName = room
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("updated room")
	return true
}

// ClearRoom detaches the session from its room and returns the room it
// was in. The second return is false when there was nothing to clear,
// which makes duplicate disconnect signals harmless.
func (r *Registry) ClearRoom(sid core.SessionID) (domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomName == "" {
		return "", false
	}
	prev := e.RoomName
	e.RoomName = ""
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(prev)).Msg("removed room association")
	return prev, true
}

// Cancel fires the session's cancel func, tearing down its pumps.
func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
