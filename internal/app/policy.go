package app

import "github.com/tbarros/salachat/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose send buffer was full
// during fan-out.
type Policy interface {
	OnBackpressure(room core.RoomService, sid core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackpressure(room core.RoomService, sid core.SessionID) BackpressureAction {
	return KickMember
}
