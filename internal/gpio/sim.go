package gpio

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/velocet/rfremote/internal/pulse"
)

// ErrWatchActive is returned when a second watcher is attached to a pin
// that is already being watched.
var ErrWatchActive = errors.New("gpio: pin is already being watched")

// ErrEmitterBusy is returned by SimEmitter when a pulse train is programmed
// while the previous one is still playing. Real peripherals leave this
// undefined; the simulator fails loudly instead.
var ErrEmitterBusy = errors.New("gpio: emitter is busy")

// WithJitter sets the uniform timing noise, in ±µs per edge, applied to the
// replayed waveform.
func WithJitter(micros uint32) func(*SimPin) {
	return func(p *SimPin) {
		p.jitter = int64(micros)
	}
}

// WithSeed seeds the jitter source for reproducible replays.
func WithSeed(seed int64) func(*SimPin) {
	return func(p *SimPin) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

// SimPin is an EdgePin that replays a reference frame a fixed number of
// times, delivering synthetic microsecond timestamps to the watcher. It
// stands in for a radio receiver pin on hosts without hardware.
type SimPin struct {
	frame  pulse.Sequence
	frames int
	jitter int64
	rng    *rand.Rand

	watching atomic.Bool
	stop     atomic.Bool
	done     chan struct{}
}

// NewSimPin creates a pin that will replay frame the given number of times.
// With frames == 0 the pin stays silent, which is how a receiver with no
// signal in range behaves.
func NewSimPin(frame pulse.Sequence, frames int, options ...func(*SimPin)) *SimPin {
	p := SimPin{
		frame:  frame.Clone(),
		frames: frames,
		rng:    rand.New(rand.NewSource(1)),
	}

	for _, option := range options {
		option(&p)
	}

	return &p
}

func (p *SimPin) Watch(fn EdgeFunc) error {
	if !p.watching.CompareAndSwap(false, true) {
		return ErrWatchActive
	}

	p.stop.Store(false)
	p.done = make(chan struct{})

	go p.replay(fn)
	return nil
}

func (p *SimPin) Unwatch() {
	if !p.watching.Load() {
		return
	}

	p.stop.Store(true)
	<-p.done
	p.watching.Store(false)
}

// Watched reports whether a watcher currently holds the pin.
func (p *SimPin) Watched() bool {
	return p.watching.Load()
}

// replay walks the frame timings frame-by-frame, accumulating a synthetic
// clock and firing the callback on each transition. Delivery is immediate:
// the simulated capture is over in host time long before any idle timeout.
func (p *SimPin) replay(fn EdgeFunc) {
	defer close(p.done)

	now := int64(1) // µs; an arbitrary non-zero epoch
	high := false

	for i := 0; i < p.frames; i++ {
		for _, d := range p.frame {
			if p.stop.Load() {
				return
			}

			high = !high
			fn(now, high)

			step := int64(d)
			if p.jitter > 0 {
				step += p.rng.Int63n(2*p.jitter+1) - p.jitter
			}
			if step < 1 {
				step = 1
			}
			now += step
		}
	}
}

// SimEmitter is an Emitter that records every programmed pulse train and
// simulates the peripheral's busy window in host time.
type SimEmitter struct {
	mu        sync.Mutex
	trains    [][]Pulse
	busyUntil time.Time
}

func NewSimEmitter() *SimEmitter {
	return &SimEmitter{}
}

func (e *SimEmitter) Emit(pulses []Pulse) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if time.Now().Before(e.busyUntil) {
		return ErrEmitterBusy
	}

	train := make([]Pulse, len(pulses))
	copy(train, pulses)
	e.trains = append(e.trains, train)

	var total int64
	for _, p := range pulses {
		total += int64(p.Micros)
	}
	e.busyUntil = time.Now().Add(time.Duration(total) * time.Microsecond)

	return nil
}

func (e *SimEmitter) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Now().Before(e.busyUntil)
}

// Emitted returns the number of pulse trains programmed so far.
func (e *SimEmitter) Emitted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.trains)
}

// Last returns the most recently programmed pulse train, or nil if nothing
// has been emitted.
func (e *SimEmitter) Last() []Pulse {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.trains) == 0 {
		return nil
	}
	return e.trains[len(e.trains)-1]
}
