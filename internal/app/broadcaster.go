package app

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

// Broadcaster routes protocol events to room members and synthesizes
// the join/leave notices. All registry and room state it touches is
// owned explicitly; there is no process-wide singleton.
type Broadcaster struct {
	Registry *Registry
	Rooms    core.RoomManager
	Policy   Policy
}

// OnJoin puts the session into the target room and announces it to
// every current member, the joiner included. Re-joining the same room
// under the same name is a no-op and announces nothing. A session
// already in another room is moved out of it silently first.
func (b *Broadcaster) OnJoin(sid core.SessionID, roomName domain.RoomName, username string) {
	session, ok := b.Registry.Get(sid)
	if !ok {
		log.Warn().Str("module", "app.broadcaster").Str("sid", string(sid)).Msg("join from unbound session")
		return
	}
	if err := domain.ValidateRoomName(roomName); err != nil {
		log.Warn().Str("module", "app.broadcaster").Str("sid", string(sid)).Err(err).Msg("join rejected")
		return
	}
	if err := domain.ValidateUsername(username); err != nil {
		log.Warn().Str("module", "app.broadcaster").Str("sid", string(sid)).Err(err).Msg("join rejected")
		return
	}

	if prev, _, joined := b.Registry.RoomOf(sid); joined {
		if prev == roomName && session.User().Username == username {
			return
		}
		b.removeFromRoom(sid, prev)
	}

	session.User().Username = username

	var room core.RoomService
	for {
		room = b.Rooms.GetOrCreate(roomName)
		if room.AddMember(sid, session) {
			break
		}
		// Lost the race with a reclaim; the closed room is already out
		// of the manager, so the retry gets a fresh one.
	}
	b.Registry.SetRoom(sid, roomName)
	log.Info().Str("module", "app.broadcaster").Str("sid", string(sid)).Str("room", string(roomName)).Str("username", username).Msg("join")

	b.announce(room, fmt.Sprintf("%s joined the chat.", username))
}

// OnUserMessage fans a chat line out to the sender's room, sender
// included. Messages from un-joined sessions and whitespace-only
// submissions are dropped without side effects.
func (b *Broadcaster) OnUserMessage(sid core.SessionID, text string) {
	roomName, session, ok := b.Registry.RoomOf(sid)
	if !ok {
		log.Debug().Str("module", "app.broadcaster").Str("sid", string(sid)).Msg("message from unjoined session")
		return
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	room, ok := b.Rooms.Get(roomName)
	if !ok {
		return
	}

	frame, err := domain.EncodeUserDelivery(session.User().Username, text)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Msg("encode user delivery")
		return
	}
	b.deliver(room, frame)
}

// OnLeave handles a client-initiated leave; the socket stays open and
// the session may join another room afterwards.
func (b *Broadcaster) OnLeave(sid core.SessionID) {
	b.depart(sid)
}

// OnDisconnect is the teardown path for a closed transport. Safe to
// call more than once; only the first call that still sees a room
// announces the departure.
func (b *Broadcaster) OnDisconnect(sid core.SessionID) {
	b.depart(sid)
}

func (b *Broadcaster) depart(sid core.SessionID) {
	prev, ok := b.Registry.ClearRoom(sid)
	if !ok {
		return
	}
	room, ok := b.Rooms.Get(prev)
	if !ok {
		return
	}

	username := ""
	if session, ok := b.Registry.Get(sid); ok {
		username = session.User().Username
	}

	room.RemoveMember(sid)
	b.Rooms.Reclaim(prev)
	log.Info().Str("module", "app.broadcaster").Str("sid", string(sid)).Str("room", string(prev)).Msg("depart")

	if room.MemberCount() == 0 {
		return
	}
	b.announce(room, fmt.Sprintf("%s left the chat.", username))
}

// removeFromRoom detaches a member without announcing; used when a
// session switches rooms in a single join.
func (b *Broadcaster) removeFromRoom(sid core.SessionID, name domain.RoomName) {
	if room, ok := b.Rooms.Get(name); ok {
		room.RemoveMember(sid)
		b.Rooms.Reclaim(name)
	}
	b.Registry.ClearRoom(sid)
}

func (b *Broadcaster) announce(room core.RoomService, text string) {
	frame, err := domain.EncodeSystemDelivery(text)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcaster").Msg("encode system delivery")
		return
	}
	b.deliver(room, frame)
}

func (b *Broadcaster) deliver(room core.RoomService, frame core.Frame) {
	res := room.Broadcast(frame)
	if b.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch b.Policy.OnBackpressure(room, slow) {
		case KickMember:
			b.kick(slow, room)
		case DropFrame, NoAction:
		}
	}
}

func (b *Broadcaster) kick(sid core.SessionID, room core.RoomService) {
	room.RemoveMember(sid)
	b.Registry.ClearRoom(sid)
	b.Rooms.Reclaim(room.Room().Name)
	b.Registry.Cancel(sid)
	log.Warn().Str("module", "app.broadcaster").Str("sid", string(sid)).Str("room", string(room.Room().Name)).Msg("kicked slow member")
}
