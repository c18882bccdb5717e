package viewer

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/rickgao/quotefeed/internal/export"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleReplay loads the bundle before upgrading so that a missing bundle is
// still a plain 404.
func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	date, stock := chi.URLParam(r, "date"), chi.URLParam(r, "stock")
	doc, err := export.ReadDocument(export.Path(s.cfg.Dir, date, stock, export.FormatJSON))
	if errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "no data for "+stock+" on "+date)
		return
	}
	if err != nil {
		s.logger.Error("failed to load bundle", "date", date, "stock", stock, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read data")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sess := newReplaySession(conn)
	defer sess.close()

	logger := s.logger.With("date", date, "stock", stock)
	logger.Info("replay started", "trades", len(doc.Trades))

	sent, err := s.replay(sess, doc.Trades)
	if err != nil {
		logger.Info("replay stopped", "sent", sent, "error", err)
		return
	}
	logger.Info("replay complete", "sent", sent)
}

// replay sends trades oldest first. Stored tapes are newest first.
func (s *Server) replay(sess *replaySession, trades []export.TradeDoc) (int, error) {
	limit := rate.Limit(s.cfg.ReplayRate)
	if s.cfg.ReplayRate <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, s.cfg.ReplayBurst)

	sent := 0
	for i := len(trades) - 1; i >= 0; i-- {
		if err := limiter.Wait(sess.ctx); err != nil {
			return sent, err
		}
		if err := sess.sendJSON(trades[i]); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// replaySession owns one upgraded connection. Its context ends when the peer
// goes away.
type replaySession struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex
	once    sync.Once
}

func newReplaySession(conn *websocket.Conn) *replaySession {
	ctx, cancel := context.WithCancel(context.Background())
	s := &replaySession{conn: conn, ctx: ctx, cancel: cancel}
	go s.readLoop()
	go s.heartbeatLoop()
	return s
}

func (s *replaySession) sendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop drains inbound frames so control frames are processed, and
// cancels the session once the peer closes.
func (s *replaySession) readLoop() {
	defer s.cancel()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *replaySession) heartbeatLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				s.cancel()
				return
			}
		}
	}
}

// close sends a normal-closure frame and releases the connection.
func (s *replaySession) close() {
	s.once.Do(func() {
		s.writeMu.Lock()
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay complete"),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()
		s.cancel()
		s.conn.Close()
	})
}
