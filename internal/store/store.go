// Package store holds named pulse sequences and persists them to the keyed
// JSON document shared between the capture and playback devices.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/velocet/rfremote/internal/capture"
	"github.com/velocet/rfremote/internal/pulse"
)

var (
	// ErrKeyNotFound is returned on lookup or deletion of an absent key.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrCorrupted is returned when a persisted sequence violates the
	// even-length, leading-mark invariant. The load is abandoned and the
	// in-memory mapping is left untouched.
	ErrCorrupted = errors.New("store: corrupted sequence data")

	// ErrNoCapturer is returned by Add on a store constructed without a
	// capture pipeline.
	ErrNoCapturer = errors.New("store: no capturer configured")
)

// Capturer produces one averaged pulse sequence per invocation. It is
// satisfied by *capture.Recorder.
type Capturer interface {
	Capture(ctx context.Context) (pulse.Sequence, capture.Quality, error)
}

// WithCapturer sets the capture pipeline run by Add.
func WithCapturer(c Capturer) func(*Store) {
	return func(s *Store) {
		s.capturer = c
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) func(*Store) {
	return func(s *Store) {
		s.logger = logger.With(slog.String("component", "store"))
	}
}

// Store maps caller-chosen keys to pulse sequences. All mutation is expected
// to happen from a single control task; the store does no locking of its own.
type Store struct {
	data     map[string]pulse.Sequence
	capturer Capturer
	logger   *slog.Logger
}

// New creates an empty store.
func New(options ...func(*Store)) *Store {
	s := Store{
		data:   make(map[string]pulse.Sequence),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Add captures one transmission and inserts (or overwrites) the entry at
// key. On any capture failure the store is left unmodified; an existing
// entry at key survives. The returned Quality describes the capture even
// when it succeeded with low confidence.
func (s *Store) Add(ctx context.Context, key string) (capture.Quality, error) {
	if s.capturer == nil {
		return capture.Quality{}, ErrNoCapturer
	}

	seq, quality, err := s.capturer.Capture(ctx)
	if err != nil {
		return capture.Quality{}, fmt.Errorf("capturing %q: %w", key, err)
	}

	s.data[key] = seq
	s.logger.Info("key stored",
		slog.String("key", key),
		slog.Int("pulses", len(seq)),
		slog.Float64("quality", quality.StdDev))

	return quality, nil
}

// Put inserts a sequence directly, validating the invariant first.
func (s *Store) Put(key string, seq pulse.Sequence) error {
	if err := seq.Validate(); err != nil {
		return err
	}
	s.data[key] = seq.Clone()
	return nil
}

// Get returns the sequence stored at key. Callers must not mutate it.
func (s *Store) Get(key string) (pulse.Sequence, error) {
	seq, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return seq, nil
}

// Delete removes the entry at key, failing explicitly when it is absent.
func (s *Store) Delete(key string) error {
	if _, ok := s.data[key]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	delete(s.data, key)
	return nil
}

// Keys returns all stored keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored sequences.
func (s *Store) Len() int {
	return len(s.data)
}

// Longest returns the stored sequence with the greatest total duration, or
// nil for an empty store. Playback latency estimation keys off it.
func (s *Store) Longest() pulse.Sequence {
	var longest pulse.Sequence
	var max uint64
	for _, seq := range s.data {
		if total := seq.TotalMicros(); longest == nil || total > max {
			longest, max = seq, total
		}
	}
	return longest
}

// Save writes the whole mapping to w as a keyed JSON document. There is no
// incremental update; the document is always rewritten in full.
func (s *Store) Save(w io.Writer) error {
	return encode(w, s.data)
}

// Load replaces the whole in-memory mapping with the document read from r.
// A document containing an invariant-violating sequence fails with
// ErrCorrupted and leaves the store unchanged.
func (s *Store) Load(r io.Reader) error {
	data, err := decode(r)
	if err != nil {
		return err
	}

	s.data = data
	s.logger.Debug("store loaded", slog.Int("keys", len(data)))
	return nil
}
