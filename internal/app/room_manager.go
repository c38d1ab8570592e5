package app

import (
	"sync"

	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]core.RoomService
}

func NewRoomManager() core.RoomManager {
	return &RoomManagerImpl{rooms: make(map[domain.RoomName]core.RoomService)}
}

func (m *RoomManagerImpl) GetOrCreate(name domain.RoomName) core.RoomService {
	m.mu.RLock()
	room, ok := m.rooms[name]
	m.mu.RUnlock()
	if ok {
		return room
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[name]; ok {
		return room
	}
	room = core.NewRoomService(&domain.Room{Name: name})
	m.rooms[name] = room
	return room
}

func (m *RoomManagerImpl) Get(name domain.RoomName) (core.RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[name]
	return room, ok
}

func (m *RoomManagerImpl) List() []core.RoomInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(m.rooms))
	for name, r := range m.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: r.MemberCount()})
	}
	return out
}

// Reclaim drops a room once its member set is empty. A room that
// picked up a member between the caller's check and this call stays.
// Closing and removal happen inside the manager lock, so GetOrCreate
// can never hand out a room that is closed but still mapped.
func (m *RoomManagerImpl) Reclaim(name domain.RoomName) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok := m.rooms[name]; ok && room.CloseIfEmpty() {
		delete(m.rooms, name)
	}
}
