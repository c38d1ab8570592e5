package core

import (
	"github.com/tbarros/salachat/internal/domain"
)

// PublishResult reports delivery stats/backpressure to the broadcaster.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Username string `json:"username"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO

	// AddMember reports false once the room is closed; the caller must
	// fetch a live room from the manager and retry.
	AddMember(sid SessionID, s Session) bool
	RemoveMember(sid SessionID)
	// CloseIfEmpty atomically ends an empty room's life so a reclaim
	// cannot race a join landing in a room the manager forgot.
	CloseIfEmpty() bool
	Broadcast(data Frame) PublishResult
}

type RoomInfo struct {
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(name domain.RoomName) RoomService
	Get(name domain.RoomName) (RoomService, bool)
	List() []RoomInfo
	Reclaim(name domain.RoomName)
}
