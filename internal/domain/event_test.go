package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeJoin(t *testing.T) {
	req := require.New(t)

	ev, err := DecodeEvent([]byte(`{"type":"join","username":"alice","room":"lobby"}`))
	req.NoError(err)

	join, ok := ev.(Join)
	req.True(ok)
	req.Equal("alice", join.Username)
	req.Equal("lobby", join.Room)
}

func TestDecodeUserMessage(t *testing.T) {
	req := require.New(t)

	ev, err := DecodeEvent([]byte(`{"type":"message","username":"alice","msg":"hi","room":"lobby"}`))
	req.NoError(err)

	msg, ok := ev.(UserMessage)
	req.True(ok)
	req.Equal("alice", msg.Username)
	req.Equal("hi", msg.Text)
	req.Equal("lobby", msg.Room)
}

func TestDecodeLeaveAndPing(t *testing.T) {
	req := require.New(t)

	ev, err := DecodeEvent([]byte(`{"type":"leave","username":"alice","room":"lobby"}`))
	req.NoError(err)
	_, ok := ev.(Leave)
	req.True(ok)

	ev, err = DecodeEvent([]byte(`{"type":"ping"}`))
	req.NoError(err)
	_, ok = ev.(Ping)
	req.True(ok)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	req := require.New(t)

	cases := []string{
		`not json at all`,
		`{"type":"join","room":"lobby"}`,
		`{"type":"join","username":"","room":"lobby"}`,
		`{"type":"join","username":"alice"}`,
		`{"type":"message","username":"alice","room":"lobby"}`,
		`{"type":"join","username":"` + strings.Repeat("a", MaxUsernameLen+1) + `","room":"lobby"}`,
	}
	for _, c := range cases {
		_, err := DecodeEvent([]byte(c))
		req.ErrorIs(err, ErrMalformedEvent, "payload: %s", c)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	req := require.New(t)

	// A client can never inject a system message.
	_, err := DecodeEvent([]byte(`{"type":"system","msg":"fake notice"}`))
	req.ErrorIs(err, ErrUnknownEvent)

	_, err = DecodeEvent([]byte(`{"type":"offer","sdp":"..."}`))
	req.ErrorIs(err, ErrUnknownEvent)
}

func TestEncodeUserDelivery(t *testing.T) {
	req := require.New(t)

	b, err := EncodeUserDelivery("alice", "hi")
	req.NoError(err)

	var got map[string]any
	req.NoError(json.Unmarshal(b, &got))
	req.Equal("message", got["type"])
	req.Equal("alice", got["username"])
	req.Equal("hi", got["msg"])
	req.Equal(false, got["is_system"])
	// Room is implicit in the delivery target; the field must not leak.
	req.NotContains(got, "room")
}

func TestEncodeSystemDelivery(t *testing.T) {
	req := require.New(t)

	b, err := EncodeSystemDelivery("alice joined the chat.")
	req.NoError(err)

	var got Delivery
	req.NoError(json.Unmarshal(b, &got))
	req.Equal(EventMessage, got.Type)
	req.True(got.IsSystem)
	req.Equal("alice joined the chat.", got.Msg)
	req.Empty(got.Username)
}
