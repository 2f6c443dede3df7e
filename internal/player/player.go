// Package player reproduces stored pulse sequences as precisely-timed OOK
// modulation through a buffered hardware pulse sequencer.
package player

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/velocet/rfremote/internal/gpio"
	"github.com/velocet/rfremote/internal/pulse"
	"github.com/velocet/rfremote/internal/store"
)

// DefaultReps is the number of back-to-back repetitions transmitted per
// call. More repetitions resist interference at the cost of air time.
const DefaultReps = 5

// busyPollInterval paces the completion polling done by Send.
const busyPollInterval = 100 * time.Microsecond

// WithReps sets the repetition count for each transmission.
func WithReps(n int) func(*Player) {
	return func(p *Player) {
		p.reps = n
	}
}

// WithActiveLow inverts the idle/active polarity of the generated waveform.
// It must be configured before the first transmission and applies to every
// subsequent one; the caller must initialise the output pin's idle level to
// match.
func WithActiveLow() func(*Player) {
	return func(p *Player) {
		p.activeLow = true
	}
}

// WithLogger sets the logger for the player.
func WithLogger(logger *slog.Logger) func(*Player) {
	return func(p *Player) {
		p.logger = logger.With(slog.String("component", "player"))
	}
}

// Player looks up sequences in a store and plays them through an Emitter.
type Player struct {
	store   *store.Store
	emitter gpio.Emitter

	reps      int
	activeLow bool
	logger    *slog.Logger
}

// New creates a Player with the default repetition count and active-high
// polarity.
func New(st *store.Store, emitter gpio.Emitter, options ...func(*Player)) *Player {
	p := Player{
		store:   st,
		emitter: emitter,
		reps:    DefaultReps,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

// Transmit programs the emitter with the sequence stored at key, repeated
// back to back, and returns as soon as programming completes. The hardware
// plays the train asynchronously; no completion signal is delivered
// (fire and forget). Callers must not transmit again until the peripheral
// is free; space successive calls by at least Latency().
func (p *Player) Transmit(key string) error {
	seq, err := p.store.Get(key)
	if err != nil {
		return err
	}

	train := expand(seq, p.reps, p.activeLow)
	if err = p.emitter.Emit(train); err != nil {
		return fmt.Errorf("transmitting %q: %w", key, err)
	}

	p.logger.Debug("transmission started",
		slog.String("key", key),
		slog.Int("reps", p.reps),
		slog.Int("pulses", len(train)))
	return nil
}

// Send is the blocking variant of Transmit: it does not return until the
// hardware has finished playing the train. Useful on targets whose
// nonblocking peripheral lacks sufficient timing precision.
func (p *Player) Send(key string) error {
	if err := p.Transmit(key); err != nil {
		return err
	}

	for p.emitter.Busy() {
		time.Sleep(busyPollInterval)
	}
	return nil
}

// Latency returns a conservative minimum delay between successive Transmit
// calls, derived from the longest stored sequence. It does not account for
// switching latency in the receiving device, which is unknowable here.
func (p *Player) Latency() time.Duration {
	longest := p.store.Longest()
	if longest == nil {
		return 0
	}
	return Latency(longest, p.reps)
}

// Latency estimates the air time of one transmission of seq: repetitions
// plus two repetitions' worth of margin, rounded to whole milliseconds.
func Latency(seq pulse.Sequence, reps int) time.Duration {
	ms := uint64(reps+2) * seq.TotalMicros() / 1000
	return time.Duration(ms) * time.Millisecond
}

// expand concatenates reps repetitions of seq as (level, duration) pulses.
// Marks sit at even indices, so levels simply alternate from the active
// level; with active-low polarity the whole train is inverted.
func expand(seq pulse.Sequence, reps int, activeLow bool) []gpio.Pulse {
	train := make([]gpio.Pulse, 0, reps*len(seq))
	for r := 0; r < reps; r++ {
		for i, d := range seq {
			train = append(train, gpio.Pulse{
				High:   (i%2 == 0) != activeLow,
				Micros: d,
			})
		}
	}
	return train
}
