package relay

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketSink streams each fragment as a text frame. Liveness uses ping control
// frames, which are out-of-band and never reach the message stream.
type WebSocketSink struct {
	conn      *websocket.Conn
	writeWait time.Duration
	committed bool
	closeSent bool

	pumping    atomic.Bool
	peerClosed chan struct{}
	peerOnce   sync.Once
}

// ErrorFrame is the JSON frame sent when a request fails before any fragment
type ErrorFrame struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func NewWebSocketSink(conn *websocket.Conn, writeWait time.Duration) *WebSocketSink {
	return &WebSocketSink{
		conn:       conn,
		writeWait:  writeWait,
		peerClosed: make(chan struct{}),
	}
}

// StartReadPump reads the connection in the background until it fails, answering pings
// and consuming pongs and the peer's close reply. onGone receives the terminating error.
// The pump must be started at most once and no other goroutine may read the connection.
func (s *WebSocketSink) StartReadPump(onGone func(error)) {
	s.pumping.Store(true)
	go func() {
		err := s.drain()
		if onGone != nil {
			onGone(err)
		}
	}()
}

func (s *WebSocketSink) drain() error {
	defer s.peerOnce.Do(func() { close(s.peerClosed) })
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return err
		}
	}
}

// Open is a no-op: the upgrade handshake already committed the transport.
func (s *WebSocketSink) Open() error {
	return nil
}

func (s *WebSocketSink) Write(p []byte) error {
	s.committed = true
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

func (s *WebSocketSink) Ping() error {
	if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait)); err != nil {
		return fmt.Errorf("failed to write ping: %w", err)
	}
	return nil
}

func (s *WebSocketSink) Committed() bool {
	return s.committed
}

func (s *WebSocketSink) Fail(status int, message string) {
	if s.committed {
		log.Warn().Int("status", status).Msg("Cannot send error frame - stream already started")
		return
	}
	s.committed = true

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err == nil {
		if err := s.conn.WriteJSON(ErrorFrame{Error: message, Status: status}); err != nil {
			log.Debug().Err(err).Msg("Failed to write error frame")
		}
	}
	s.sendClose(closeCode(status), message)
}

// Close sends a normal closure frame unless Fail already closed the stream.
func (s *WebSocketSink) Close() error {
	s.sendClose(websocket.CloseNormalClosure, "")
	return nil
}

func (s *WebSocketSink) sendClose(code int, text string) {
	if s.closeSent {
		return
	}
	s.closeSent = true

	msg := websocket.FormatCloseMessage(code, truncateCloseText(text))
	if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.writeWait)); err != nil {
		log.Debug().Err(err).Int("code", code).Msg("Failed to write close frame")
		return
	}
	s.awaitPeerClose()
}

// awaitPeerClose holds the socket open for up to writeWait so the peer's close reply and
// any unread pongs are consumed. Closing with unread data makes the kernel reset the
// connection and the peer never sees the close frame.
func (s *WebSocketSink) awaitPeerClose() {
	if !s.pumping.Load() {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.writeWait)); err != nil {
			return
		}
		_ = s.drain()
		return
	}

	timer := time.NewTimer(s.writeWait)
	defer timer.Stop()
	select {
	case <-s.peerClosed:
	case <-timer.C:
		log.Debug().Msg("Peer did not answer close frame in time")
	}
}

func closeCode(status int) int {
	switch {
	case status == http.StatusTooManyRequests:
		return websocket.CloseTryAgainLater
	case status >= 400 && status < 500:
		return websocket.ClosePolicyViolation
	default:
		return websocket.CloseInternalServerErr
	}
}

// Close frame payloads are limited to 125 bytes including the 2 byte code.
func truncateCloseText(text string) string {
	if len(text) > 123 {
		return text[:123]
	}
	return text
}
