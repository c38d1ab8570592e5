package domain

import (
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
)

// Event names on the wire. Inbound and outbound chat traffic share
// EventMessage; the server side adds is_system and drops room.
const (
	EventJoin    = "join"
	EventMessage = "message"
	EventLeave   = "leave"
	EventPing    = "ping"
)

var (
	ErrMalformedEvent = errors.New("malformed event")
	ErrUnknownEvent   = errors.New("unknown event type")
)

var validate = validator.New()

// ChatEvent is the closed set of protocol events. Only the variants
// below exist; adapters must not invent payload shapes ad hoc.
type ChatEvent interface {
	chatEvent()
}

// Join binds the connection to a room under a username. Client to
// server only.
type Join struct {
	Username string `json:"username" validate:"required,max=36"`
	Room     string `json:"room" validate:"required,max=36"`
}

// UserMessage is a chat line submitted by a member. The server echoes
// it to every member of the room, sender included.
type UserMessage struct {
	Username string `json:"username" validate:"required,max=36"`
	Room     string `json:"room" validate:"required,max=36"`
	Text     string `json:"msg" validate:"required"`
}

// Leave detaches the session from its room without closing the socket.
type Leave struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// Ping is answered with a pong frame; carries nothing.
type Ping struct{}

// SystemMessage is synthesized by the server for join/leave notices.
// Never decoded from a client.
type SystemMessage struct {
	Room RoomName
	Text string
}

func (Join) chatEvent()          {}
func (UserMessage) chatEvent()   {}
func (Leave) chatEvent()         {}
func (Ping) chatEvent()          {}
func (SystemMessage) chatEvent() {}

// DecodeEvent parses one inbound frame into its ChatEvent variant,
// rejecting unknown types and payloads that fail validation. A client
// can never produce a SystemMessage this way.
func DecodeEvent(data []byte) (ChatEvent, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedEvent
	}

	switch env.Type {
	case EventJoin:
		var ev Join
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, ErrMalformedEvent
		}
		if err := validate.Struct(ev); err != nil {
			return nil, ErrMalformedEvent
		}
		return ev, nil
	case EventMessage:
		var ev UserMessage
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, ErrMalformedEvent
		}
		if err := validate.Struct(ev); err != nil {
			return nil, ErrMalformedEvent
		}
		return ev, nil
	case EventLeave:
		var ev Leave
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, ErrMalformedEvent
		}
		return ev, nil
	case EventPing:
		return Ping{}, nil
	default:
		return nil, ErrUnknownEvent
	}
}

// Delivery is the server-to-client shape of a chat line. It reuses the
// "message" event name but adds is_system and omits room; the room is
// implicit in who receives it. Existing clients depend on this
// asymmetry.
type Delivery struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Msg      string `json:"msg"`
	IsSystem bool   `json:"is_system"`
}

// EncodeUserDelivery renders a user message for fan-out.
func EncodeUserDelivery(username, text string) ([]byte, error) {
	return json.Marshal(Delivery{
		Type:     EventMessage,
		Username: username,
		Msg:      text,
		IsSystem: false,
	})
}

// EncodeSystemDelivery renders a join/leave notice. Username stays
// empty; clients key rendering off is_system alone.
func EncodeSystemDelivery(text string) ([]byte, error) {
	return json.Marshal(Delivery{
		Type:     EventMessage,
		Msg:      text,
		IsSystem: true,
	})
}
