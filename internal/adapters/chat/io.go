package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

func (ctl *ChatWSController) writePump(ctx context.Context, c *WsChatConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()
	// Closing the socket here unblocks readPump on a silent peer when
	// this pump exits first (write error or canceled session).
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.chat").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "adapters.chat").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				log.Error().Err(err).Str("module", "adapters.chat").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.chat").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.Cfg.WriteTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *ChatWSController) readPump(ctx context.Context, sid core.SessionID, c *WsChatConn) {
	defer func() {
		log.Info().Str("module", "adapters.chat").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Broadcaster.OnDisconnect(sid)
		ctl.Broadcaster.Registry.Unbind(sid)
		ctl.limiter.Forget(sid)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.chat").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "adapters.chat").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(sid, c, data)
		}
	}
}

// handleFrame is the single dispatch point per connection: one decoded
// event, one handler, in arrival order.
func (ctl *ChatWSController) handleFrame(sid core.SessionID, c *WsChatConn, data []byte) {
	ev, err := domain.DecodeEvent(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.chat").Str("sid", string(sid)).Msg("dropped event")
		ctl.sendJSON(c, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}

	switch ev := ev.(type) {
	case domain.Join:
		ctl.handleJoin(sid, ev)
	case domain.UserMessage:
		ctl.handleMessage(sid, ev)
	case domain.Leave:
		ctl.handleLeave(sid, c)
	case domain.Ping:
		ctl.handlePing(c)
	}
}

func (ctl *ChatWSController) sendJSON(c *WsChatConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
