package chat

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tbarros/salachat/internal/app"
	"github.com/tbarros/salachat/internal/config"
	"github.com/tbarros/salachat/internal/core"
	"github.com/tbarros/salachat/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type ChatWSController struct {
	Broadcaster *app.Broadcaster
	Cfg         *config.Config
	limiter     *MessageRateLimiter
}

func NewChatWSController(cfg *config.Config, b *app.Broadcaster) *ChatWSController {
	return &ChatWSController{
		Broadcaster: b,
		Cfg:         cfg,
		limiter:     NewMessageRateLimiter(cfg.MsgRateLimit, cfg.MsgRateEvery),
	}
}

// WsChatConn is the outbound half of one client connection. Frames go
// through a buffered channel drained by writePump; a full buffer is a
// backpressure error, never a blocking send.
type WsChatConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsChatConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsChatConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and binds a fresh session. The
// session id is minted per connection: the browser cookie identifies
// the client across reloads, but two tabs are two sessions, and one
// closing must never tear down the other's membership. The session has
// no room and no username until the client sends its join event.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "adapters.chat").Str("sid", string(sid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.chat").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &WsChatConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	sess := core.NewSession(&domain.User{}, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Broadcaster.Registry.Bind(sid, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}
