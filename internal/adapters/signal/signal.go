// Package signal is the websocket signaling router: it owns the event
// channel to each client and translates inbound events into orchestrator and
// participant operations.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/app"
	"github.com/Vivek-4321/Socket-Server/internal/config"
	"github.com/Vivek-4321/Socket-Server/internal/core"
	"github.com/Vivek-4321/Socket-Server/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

type SignalWSController struct {
	Orch    *app.Orchestrator
	Cfg     *config.Config
	limiter *JoinRateLimiter
}

func NewSignalWSController(orch *app.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:    orch,
		Cfg:     cfg,
		limiter: NewJoinRateLimiter(cfg.JoinRate, cfg.JoinInterval),
	}
}

// WsSignalConn is the transport endpoint handed to the participant. Sends
// are non-blocking: a full buffer drops the frame instead of stalling the
// room on one slow client.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
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

// client is the per-connection protocol state: participant is nil while
// unjoined and set for the lifetime of one room membership.
type client struct {
	ctl  *SignalWSController
	sid  domain.ParticipantID
	conn *WsSignalConn
	addr string

	participant *app.Participant
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	sid := domain.NewParticipantID()
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	cl := &client{
		ctl:  ctl,
		sid:  sid,
		conn: conn,
		addr: ws.RemoteAddr().String(),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go cl.readPump(ctx, cancel)
}
