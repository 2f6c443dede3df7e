package gpio

import (
	"sync/atomic"
	"time"
)

// PinEmitter is an Emitter that bit-bangs a pulse train on a plain OutputPin
// from a goroutine, for targets without a hardware pulse sequencer. Timing
// rides on the host sleep clock, so the ±1µs figure of a real peripheral
// does not apply; short marks can stretch under scheduler load.
//
// The train ends on its idle level, so the pin is left idle when playback
// completes.
type PinEmitter struct {
	pin  OutputPin
	busy atomic.Bool
}

func NewPinEmitter(pin OutputPin) *PinEmitter {
	return &PinEmitter{pin: pin}
}

func (e *PinEmitter) Emit(pulses []Pulse) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrEmitterBusy
	}

	train := make([]Pulse, len(pulses))
	copy(train, pulses)

	go func() {
		defer e.busy.Store(false)

		for _, p := range train {
			e.pin.Set(p.High)
			time.Sleep(time.Duration(p.Micros) * time.Microsecond)
		}
	}()

	return nil
}

func (e *PinEmitter) Busy() bool {
	return e.busy.Load()
}
