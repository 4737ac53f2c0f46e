package relay

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mediconnect/assistant/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// ErrStreamingUnsupported is returned by Open when the response writer cannot flush
var ErrStreamingUnsupported = errors.New("streaming unsupported by response writer")

// HTTPSink streams a plain text body using chunked transfer encoding. The status line is
// sent together with the first body write, so Fail keeps working until then.
type HTTPSink struct {
	w          http.ResponseWriter
	rc         *http.ResponseController
	flusher    http.Flusher
	pingMarker []byte
	writeWait  time.Duration
	opened     bool
	committed  bool
	failed     bool
}

func NewHTTPSink(w http.ResponseWriter, pingMarker string, writeWait time.Duration) *HTTPSink {
	return &HTTPSink{
		w:          w,
		rc:         http.NewResponseController(w),
		pingMarker: []byte(pingMarker),
		writeWait:  writeWait,
	}
}

func (s *HTTPSink) Open() error {
	flusher, ok := s.w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}
	s.flusher = flusher

	h := s.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Transfer-Encoding", "chunked")
	h.Set("X-Accel-Buffering", "no")
	s.opened = true
	return nil
}

func (s *HTTPSink) Write(p []byte) error {
	if !s.opened {
		return fmt.Errorf("failed to write: sink not open")
	}
	s.setDeadline(time.Now().Add(s.writeWait))
	defer s.setDeadline(time.Time{})

	s.committed = true
	if _, err := s.w.Write(p); err != nil {
		return fmt.Errorf("failed to write body: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush body: %w", err)
	}
	return nil
}

// Ping writes the liveness marker. An empty marker only flushes, which still commits
// the status line.
func (s *HTTPSink) Ping() error {
	if len(s.pingMarker) == 0 {
		if !s.opened {
			return fmt.Errorf("failed to ping: sink not open")
		}
		s.setDeadline(time.Now().Add(s.writeWait))
		defer s.setDeadline(time.Time{})

		s.committed = true
		return s.rc.Flush()
	}
	return s.Write(s.pingMarker)
}

func (s *HTTPSink) Committed() bool {
	return s.committed
}

func (s *HTTPSink) Fail(status int, message string) {
	if s.committed {
		log.Warn().Int("status", status).Msg("Cannot send error status - response already committed")
		return
	}
	s.failed = true
	s.committed = true
	s.w.Header().Del("Transfer-Encoding")
	s.w.Header().Del("X-Accel-Buffering")
	httpext.JsonError(s.w, message, status)
}

// Close flushes anything pending. A stream that produced no output still ends as a
// successful, empty response.
func (s *HTTPSink) Close() error {
	if s.failed || s.flusher == nil {
		return nil
	}
	if !s.committed {
		s.committed = true
		s.w.WriteHeader(http.StatusOK)
	}
	s.flusher.Flush()
	return nil
}

// setDeadline bounds a single write; the zero time clears it again so idle gaps between
// fragments never trip the deadline.
func (s *HTTPSink) setDeadline(deadline time.Time) {
	if s.writeWait <= 0 {
		return
	}
	if err := s.rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Debug().Err(err).Msg("Failed to extend write deadline")
	}
}
