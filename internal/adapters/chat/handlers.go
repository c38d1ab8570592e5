package chat

import (
	"github.com/rs/zerolog/log"

	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

func (ctl *ChatWSController) handleJoin(sid core.SessionID, ev domain.Join) {
	log.Info().Str("module", "adapters.chat").Str("sid", string(sid)).Str("room", ev.Room).Str("username", ev.Username).Msg("join")
	ctl.Broadcaster.OnJoin(sid, domain.RoomName(ev.Room), ev.Username)
}

// handleMessage forwards one chat line. The session's own username and
// room are authoritative; whatever the payload claims is ignored.
func (ctl *ChatWSController) handleMessage(sid core.SessionID, ev domain.UserMessage) {
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "adapters.chat").Str("sid", string(sid)).Msg("rate limited")
		return
	}
	ctl.Broadcaster.OnUserMessage(sid, ev.Text)
}

// handleLeave detaches from the current room; the socket stays open.
func (ctl *ChatWSController) handleLeave(sid core.SessionID, c *WsChatConn) {
	log.Info().Str("module", "adapters.chat").Str("sid", string(sid)).Msg("leave")
	ctl.Broadcaster.OnLeave(sid)
	ctl.sendJSON(c, map[string]any{
		"type": "left",
	})
}

func (ctl *ChatWSController) handlePing(c *WsChatConn) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(c, resp)
}
