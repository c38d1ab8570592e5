package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

func TestRoomManagerLazyCreate(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()

	_, ok := m.Get("lobby")
	req.False(ok)

	room := m.GetOrCreate("lobby")
	req.NotNil(room)
	req.Equal(domain.RoomName("lobby"), room.Room().Name)

	again := m.GetOrCreate("lobby")
	req.Same(room, again)

	got, ok := m.Get("lobby")
	req.True(ok)
	req.Same(room, got)
}

func TestRoomManagerReclaimOnlyWhenEmpty(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()

	room := m.GetOrCreate("lobby")
	room.AddMember("sid-1", core.NewSession(&domain.User{Username: "alice"}, &fakeConn{}))

	m.Reclaim("lobby")
	_, ok := m.Get("lobby")
	req.True(ok)

	room.RemoveMember("sid-1")
	m.Reclaim("lobby")
	_, ok = m.Get("lobby")
	req.False(ok)
}

func TestReclaimDoesNotStrandRacingJoiner(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()

	// A joiner fetched the room, then the last member's departure
	// reclaimed it before AddMember ran.
	stale := m.GetOrCreate("lobby")
	m.Reclaim("lobby")

	sess := core.NewSession(&domain.User{Username: "alice"}, &fakeConn{})
	req.False(stale.AddMember("sid-1", sess), "reclaimed room must refuse the member")

	// The retry lands in a live room the manager actually maps.
	fresh := m.GetOrCreate("lobby")
	req.NotSame(stale, fresh)
	req.True(fresh.AddMember("sid-1", sess))

	got, ok := m.Get("lobby")
	req.True(ok)
	req.Same(fresh, got)
	req.Equal(1, got.MemberCount())
}

func TestRoomManagerList(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()

	m.GetOrCreate("lobby").AddMember("sid-1", core.NewSession(&domain.User{Username: "alice"}, &fakeConn{}))
	m.GetOrCreate("support")

	infos := m.List()
	req.Len(infos, 2)

	counts := map[domain.RoomName]int{}
	for _, info := range infos {
		counts[info.Name] = info.MemberCount
	}
	req.Equal(1, counts["lobby"])
	req.Equal(0, counts["support"])
}
