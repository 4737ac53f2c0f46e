package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mediconnect/assistant/internal/connections"
	"github.com/mediconnect/assistant/internal/metrics"
	"github.com/rs/zerolog/log"
)

// State is a step of a relay run: Idle → Opened → Streaming → {Completed | Failed} → Closed
type State int

const (
	Idle State = iota
	Opened
	Streaming
	Completed
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Opened:
		return "opened"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	// InterruptedMarker is appended to a body that already carries output when the
	// upstream stream breaks. Clients must treat a close without it as possibly partial too.
	InterruptedMarker = "\n\n[Error: the assistant response was interrupted. Please try again.]"

	unavailableMessage = "The assistant is temporarily unavailable. Please try again."
)

var (
	// ErrStreamInterrupted wraps upstream failures that happen after the transport opened
	ErrStreamInterrupted = errors.New("model stream interrupted")
	// ErrCallerGone means the caller disconnected or the request context ended
	ErrCallerGone = errors.New("caller disconnected")
)

// Options describe one relay run
type Options struct {
	Transport   string
	RequesterID string
}

// Outcome reports how a run ended. Result is Completed or Failed; Path lists every state
// the run went through and always ends with Closed.
type Outcome struct {
	StreamID  string
	Result    State
	Path      []State
	Fragments int
	Pings     int64
	InBand    bool
	Err       error
}

// Relay forwards token streams to client sinks while keeping the connection alive.
type Relay struct {
	manager *connections.Manager
}

func New(manager *connections.Manager) *Relay {
	return &Relay{manager: manager}
}

// Run consumes stream until it ends, writing every non-empty fragment to sink in arrival
// order. It never panics on upstream failure and always closes both stream and sink.
func (r *Relay) Run(ctx context.Context, stream TokenStream, sink Sink, opts Options) Outcome {
	run := &run{
		relay:    r,
		sink:     &lockedSink{sink: sink},
		stream:   &onceStream{TokenStream: stream},
		out:      Outcome{StreamID: uuid.New().String(), Path: []State{Idle}},
		opts:     opts,
		activity: make(chan struct{}, 1),
	}
	return run.execute(ctx)
}

type run struct {
	relay   *Relay
	sink    *lockedSink
	stream  *onceStream
	out     Outcome
	opts    Options
	pings   atomic.Int64
	gone    atomic.Bool
	release sync.Once

	// activity is signalled after every fragment write so pings only fill idle gaps
	activity chan struct{}
}

func (r *run) transition(s State) {
	r.out.Path = append(r.out.Path, s)
	log.Trace().Str("stream_id", r.out.StreamID).Str("state", s.String()).Msg("Relay state transition")
}

func (r *run) execute(parent context.Context) Outcome {
	timeouts := r.relay.manager.GetTimeouts()

	if err := r.sink.sink.Open(); err != nil {
		log.Error().Err(err).Str("stream_id", r.out.StreamID).Msg("Failed to open response transport")
		r.sink.sink.Fail(http.StatusInternalServerError, "Streaming is not supported for this connection")
		r.out.Err = err
		r.out.Result = Failed
		r.transition(Failed)
		r.finish()
		return r.out
	}
	r.transition(Opened)

	r.relay.manager.AddStream(connections.Stream{
		ID:          r.out.StreamID,
		Transport:   r.opts.Transport,
		RequesterID: r.opts.RequesterID,
		StartedAt:   time.Now(),
	})
	metrics.ActiveStreams.Inc()

	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	stopBackground := func() {
		cancel()
		wg.Wait()
	}
	defer stopBackground()

	wg.Add(2)
	go func() {
		defer wg.Done()
		r.keepAlive(ctx, cancel, timeouts.PingPeriod)
	}()
	go func() {
		defer wg.Done()
		// Closing the upstream unblocks a pending Recv once the scope ends.
		<-ctx.Done()
		_ = r.stream.Close()
	}()

	r.transition(Streaming)
	streamErr := r.forward(ctx)

	// The liveness timer must be gone before the terminal write so nothing follows it.
	stopBackground()

	switch {
	case streamErr == nil:
		r.out.Result = Completed
		r.transition(Completed)
	case r.gone.Load() || (parent.Err() != nil && !errors.Is(streamErr, ErrStreamInterrupted)):
		r.out.Err = fmt.Errorf("%w: %v", ErrCallerGone, streamErr)
		r.out.Result = Failed
		r.transition(Failed)
	default:
		r.out.Err = streamErr
		r.out.Result = Failed
		r.transition(Failed)
		r.reportFailure(streamErr)
	}

	r.finish()
	return r.out
}

// forward is the only place that waits on upstream I/O.
func (r *run) forward(ctx context.Context) error {
	for {
		fragment, err := r.stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", ErrCallerGone, err)
			}
			return fmt.Errorf("%w: %v", ErrStreamInterrupted, err)
		}
		if fragment == "" {
			continue
		}

		if err := r.sink.Write([]byte(fragment)); err != nil {
			r.gone.Store(true)
			return fmt.Errorf("%w: %v", ErrCallerGone, err)
		}
		r.out.Fragments++
		metrics.FragmentsTotal.Inc()

		select {
		case r.activity <- struct{}{}:
		default:
		}
	}
}

func (r *run) keepAlive(ctx context.Context, cancel context.CancelFunc, period time.Duration) {
	if period <= 0 {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.activity:
			ticker.Reset(period)
		case <-ticker.C:
			if err := r.sink.Ping(); err != nil {
				log.Debug().Err(err).Str("stream_id", r.out.StreamID).Msg("Failed to write liveness ping")
				r.gone.Store(true)
				cancel()
				return
			}
			r.pings.Add(1)
			metrics.PingsTotal.Inc()
		}
	}
}

func (r *run) reportFailure(err error) {
	usedStatus, writeErr := r.sink.failOrAppend(http.StatusBadGateway, unavailableMessage, InterruptedMarker)
	r.out.InBand = !usedStatus

	event := log.Error().Err(err).
		Str("stream_id", r.out.StreamID).
		Int("fragments", r.out.Fragments).
		Bool("in_band", r.out.InBand)
	if writeErr != nil {
		event = event.AnErr("write_error", writeErr)
	}
	event.Msg("Assistant stream failed")
}

// finish releases every resource exactly once regardless of the path taken.
func (r *run) finish() {
	r.release.Do(func() {
		_ = r.stream.Close()
		if err := r.sink.Close(); err != nil {
			log.Debug().Err(err).Str("stream_id", r.out.StreamID).Msg("Failed to close sink")
		}

		if r.relay.manager.HasStream(r.out.StreamID) {
			r.relay.manager.RemoveStream(r.out.StreamID)
			metrics.ActiveStreams.Dec()
		}

		r.out.Pings = r.pings.Load()
		r.transition(Closed)

		result := r.out.Result.String()
		if errors.Is(r.out.Err, ErrCallerGone) {
			result = "disconnected"
		}
		metrics.StreamsTotal.WithLabelValues(result).Inc()

		log.Info().
			Str("stream_id", r.out.StreamID).
			Str("transport", r.opts.Transport).
			Str("result", result).
			Int("fragments", r.out.Fragments).
			Int64("pings", r.out.Pings).
			Msg("Assistant stream closed")
	})
}
