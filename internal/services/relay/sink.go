package relay

import (
	"sync"
)

// Sink is the client-facing transport of one assistant response.
//
// Open commits the transport to streaming. Until the first body byte is written
// (Committed returns false) the sink can still report a structured error through Fail;
// afterwards errors can only be communicated inside the body.
type Sink interface {
	Open() error
	Write(p []byte) error
	Ping() error
	Committed() bool
	Fail(status int, message string)
	Close() error
}

// TokenStream is a finite, non-restartable sequence of text fragments. Recv returns
// io.EOF once the provider signals completion.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// lockedSink serialises every write to the underlying sink so liveness pings and
// fragments never interleave.
type lockedSink struct {
	mu   sync.Mutex
	sink Sink
}

func (l *lockedSink) Write(p []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sink.Write(p)
}

func (l *lockedSink) Ping() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sink.Ping()
}

// failOrAppend reports err through the status line when nothing has been written yet,
// otherwise appends marker to the body. It returns true when the status line was used.
func (l *lockedSink) failOrAppend(status int, message, marker string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.sink.Committed() {
		l.sink.Fail(status, message)
		return true, nil
	}
	return false, l.sink.Write([]byte(marker))
}

func (l *lockedSink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sink.Close()
}

// onceStream makes Close safe to call from both the forwarding loop and the
// cancellation watcher.
type onceStream struct {
	TokenStream
	once sync.Once
	err  error
}

func (s *onceStream) Close() error {
	s.once.Do(func() {
		s.err = s.TokenStream.Close()
	})
	return s.err
}
