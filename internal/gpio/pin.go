// Package gpio defines the narrow hardware contracts the capture and
// playback engines depend on, together with host-side drivers: a serial
// attached edge source and simulated devices for tests and dry runs.
//
// Real targets satisfy these interfaces with their own pin and peripheral
// drivers; nothing in this package touches board-specific registers.
package gpio

// EdgeFunc is invoked on every logic transition of a watched pin with a
// microsecond-resolution timestamp and the level after the transition.
// It runs in interrupt (or interrupt-like goroutine) context: it must
// return quickly, must not block and must not allocate.
type EdgeFunc func(timeMicros int64, high bool)

// EdgePin is an input pin capable of registering an edge-triggered callback.
//
// Watch claims the pin's edge interrupt and its timestamp timer exclusively
// until Unwatch is called. Exactly one watcher may be active per pin;
// a second Watch before Unwatch fails.
type EdgePin interface {
	Watch(fn EdgeFunc) error

	// Unwatch disarms the edge interrupt and releases the timer resource.
	// It is safe to call when no watch is active.
	Unwatch()
}

// OutputPin is a pin that can be driven high or low. The caller is
// responsible for initialising the pin to the waveform's idle level before
// any transmission.
type OutputPin interface {
	Set(high bool)
}

// Pulse is one step of a transmission: hold the pin at Level for Micros
// microseconds.
type Pulse struct {
	High   bool
	Micros uint32
}

// Emitter is a buffered hardware pulse sequencer. Emit programs the
// peripheral with an ordered pulse train and returns once programming is
// complete; the hardware plays the train asynchronously with no completion
// signal. Expected timing error is within ±1µs.
//
// Overlapping transmissions are not supported: calling Emit while Busy
// reports true is undefined behaviour at this layer and must be avoided by
// the caller. A started transmission always plays to completion.
type Emitter interface {
	Emit(pulses []Pulse) error
	Busy() bool
}
