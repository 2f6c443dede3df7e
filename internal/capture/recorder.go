// Package capture turns raw edge interrupts from a 433MHz receiver into a
// clean, averaged pulse sequence with a jitter quality metric.
package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/velocet/rfremote/internal/gpio"
	"github.com/velocet/rfremote/internal/pulse"
)

const (
	// DefaultEdgeCount is the default capture buffer size in edges.
	// Typically enough for ~15 frames; larger improves averaging accuracy
	// at the cost of memory.
	DefaultEdgeCount = 800

	// DefaultIdleTimeout is the inter-edge gap treated as end of capture.
	// Remotes repeat frames continuously while a button is held, so a
	// silent line this long means the button was released.
	DefaultIdleTimeout = 500 * time.Millisecond

	// minCaptureEdges is the floor below which a capture cannot possibly
	// contain a full frame.
	minCaptureEdges = 16
)

var (
	// ErrTimeout is returned when too few transitions arrived before the
	// idle timeout. Recoverable: retry the capture.
	ErrTimeout = errors.New("capture: too few transitions before idle timeout")

	// ErrInsufficientFrames is returned when frame detection left fewer
	// than two matching frames. Recoverable: retry, possibly repositioning
	// the remote.
	ErrInsufficientFrames = errors.New("capture: insufficient matching frames")
)

// Quality describes how well a capture averaged together.
type Quality struct {
	FrameLen        int     // edges per frame
	FramesUsed      int     // frames merged into the result
	FramesDiscarded int     // malformed frames dropped by segmentation
	StdDev          float64 // mean per-position standard deviation, µs; 0 is ideal
	SingleFrame     bool    // result came from one frame; StdDev is not meaningful
}

// WithEdgeCount sets the capture buffer size in edges.
func WithEdgeCount(n int) func(*Recorder) {
	return func(r *Recorder) {
		r.nedges = n
	}
}

// WithIdleTimeout sets the inter-edge gap that ends a capture session.
func WithIdleTimeout(d time.Duration) func(*Recorder) {
	return func(r *Recorder) {
		r.idle = d
	}
}

// WithLogger sets the logger for the recorder.
func WithLogger(logger *slog.Logger) func(*Recorder) {
	return func(r *Recorder) {
		r.logger = logger.With(slog.String("component", "capture"))
	}
}

// Recorder captures one remote-control transmission from an edge-watched
// input pin and reduces it to a representative pulse sequence.
type Recorder struct {
	pin    gpio.EdgePin
	nedges int
	idle   time.Duration
	logger *slog.Logger
}

// NewRecorder creates a Recorder with a discard logger.
func NewRecorder(pin gpio.EdgePin, options ...func(*Recorder)) *Recorder {
	r := Recorder{
		pin:    pin,
		nedges: DefaultEdgeCount,
		idle:   DefaultIdleTimeout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Capture runs one capture session: it arms the edge interrupt, blocks until
// the edge buffer fills or the line goes idle, then segments and averages
// the recorded transitions. The pin's interrupt and timer claim is released
// on every exit path.
func (r *Recorder) Capture(ctx context.Context) (pulse.Sequence, Quality, error) {
	r.logger.Info("awaiting radio data",
		slog.Int("edges", r.nedges),
		slog.Duration("idleTimeout", r.idle))

	diffs, err := r.record(ctx)
	if err != nil {
		return nil, Quality{}, err
	}

	seg, err := segment(diffs)
	if err != nil {
		return nil, Quality{}, err
	}

	seq, stdDev := average(seg.frames)

	q := Quality{
		FrameLen:        seg.frameLen,
		FramesUsed:      len(seg.frames),
		FramesDiscarded: seg.discarded,
		StdDev:          stdDev,
		SingleFrame:     len(seg.frames) == 1,
	}

	if err = seq.Validate(); err != nil {
		return nil, Quality{}, err
	}

	r.logger.Info("capture complete",
		slog.Int("frameLen", q.FrameLen),
		slog.Int("framesUsed", q.FramesUsed),
		slog.Int("framesDiscarded", q.FramesDiscarded),
		slog.Float64("quality", q.StdDev))

	return seq, q, nil
}

// record collects edge timestamps until the buffer fills or the line goes
// idle, and returns the inter-edge durations in µs. The edge callback is the
// sole writer of the timestamp buffer; it appends in constant time and
// signals progress through an atomic counter and a non-blocking notify.
func (r *Recorder) record(ctx context.Context) ([]uint32, error) {
	times := make([]int64, r.nedges)
	notify := make(chan struct{}, 1)

	var count atomic.Int32
	limit := int32(r.nedges)

	err := r.pin.Watch(func(timeMicros int64, _ bool) {
		n := count.Load()
		if n >= limit {
			return // buffer full: capture is complete at this length
		}
		times[n] = timeMicros
		count.Store(n + 1)

		select {
		case notify <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer r.pin.Unwatch()

	idle := time.NewTimer(r.idle)
	defer idle.Stop()

collect:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-notify:
			if count.Load() >= limit {
				break collect
			}
			idle.Reset(r.idle)

		case <-idle.C:
			break collect
		}
	}

	n := int(count.Load())
	if n < minCaptureEdges {
		return nil, ErrTimeout
	}

	r.logger.Debug("edge log recorded", slog.Int("edges", n))

	diffs := make([]uint32, n-1)
	for i := range diffs {
		diffs[i] = uint32(times[i+1] - times[i])
	}
	return diffs, nil
}
