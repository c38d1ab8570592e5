package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbarros/salachat/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (c *fakeConn) TrySend(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("send buffer full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func newMember(name string) (Session, *fakeConn) {
	conn := &fakeConn{}
	return NewSession(&domain.User{Username: name}, conn), conn
}

func TestRoomMembership(t *testing.T) {
	req := require.New(t)
	room := NewRoomService(&domain.Room{Name: "lobby"})

	s1, _ := newMember("alice")
	s2, _ := newMember("bob")
	room.AddMember("sid-1", s1)
	room.AddMember("sid-2", s2)
	req.Equal(2, room.MemberCount())

	room.RemoveMember("sid-1")
	req.Equal(1, room.MemberCount())

	// Removing an absent member is a no-op.
	room.RemoveMember("sid-1")
	req.Equal(1, room.MemberCount())
}

func TestBroadcastReachesEveryMember(t *testing.T) {
	req := require.New(t)
	room := NewRoomService(&domain.Room{Name: "lobby"})

	s1, c1 := newMember("alice")
	s2, c2 := newMember("bob")
	room.AddMember("sid-1", s1)
	room.AddMember("sid-2", s2)

	res := room.Broadcast(Frame(`{"msg":"hi"}`))
	req.Equal(2, res.SentTo)
	req.Empty(res.Dropped)
	req.Equal(1, c1.count())
	req.Equal(1, c2.count())
}

func TestBroadcastSkipsFailedMemberOnly(t *testing.T) {
	req := require.New(t)
	room := NewRoomService(&domain.Room{Name: "lobby"})

	s1, c1 := newMember("alice")
	s2, c2 := newMember("bob")
	c2.fail = true
	room.AddMember("sid-1", s1)
	room.AddMember("sid-2", s2)

	res := room.Broadcast(Frame(`{"msg":"hi"}`))
	req.Equal(1, res.SentTo)
	req.Equal([]SessionID{"sid-2"}, res.Dropped)
	req.Equal(1, c1.count())
	req.Equal(0, c2.count())
}

func TestCloseIfEmptyRefusesLateMembers(t *testing.T) {
	req := require.New(t)
	room := NewRoomService(&domain.Room{Name: "lobby"})

	s1, _ := newMember("alice")
	req.True(room.AddMember("sid-1", s1))

	// An occupied room cannot be closed.
	req.False(room.CloseIfEmpty())

	room.RemoveMember("sid-1")
	req.True(room.CloseIfEmpty())

	// Once closed, a racing joiner is turned away instead of landing
	// in a room nobody can reach anymore.
	req.False(room.AddMember("sid-2", s1))
	req.Equal(0, room.MemberCount())
}

func TestMembersSnapshot(t *testing.T) {
	req := require.New(t)
	room := NewRoomService(&domain.Room{Name: "lobby"})

	s1, _ := newMember("alice")
	room.AddMember("sid-1", s1)

	snap := room.MembersSnapshot()
	req.Len(snap, 1)
	req.Equal("alice", snap[0].Username)
}
