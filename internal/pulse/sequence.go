// Package pulse defines the on-off-keyed waveform representation shared by
// the capture and playback sides.
package pulse

import (
	"errors"
	"time"
)

var (
	// ErrEmpty is returned when a sequence contains no durations.
	ErrEmpty = errors.New("pulse: empty sequence")

	// ErrOddLength is returned when a sequence does not end on a space.
	ErrOddLength = errors.New("pulse: sequence length is odd")
)

// Sequence is an ordered list of pulse durations in microseconds. The first
// element is a mark (carrier on), even indices are marks, odd indices are
// spaces. A valid sequence has even length so transmission always returns
// the carrier to idle.
type Sequence []uint32

// Validate checks the even-length, non-empty invariant.
func (s Sequence) Validate() error {
	if len(s) == 0 {
		return ErrEmpty
	}
	if len(s)%2 != 0 {
		return ErrOddLength
	}
	return nil
}

// TotalMicros returns the summed duration of the sequence in microseconds.
func (s Sequence) TotalMicros() uint64 {
	var total uint64
	for _, d := range s {
		total += uint64(d)
	}
	return total
}

// Total returns the summed duration of the sequence.
func (s Sequence) Total() time.Duration {
	return time.Duration(s.TotalMicros()) * time.Microsecond
}

// Clone returns a copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}
