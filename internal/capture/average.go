package capture

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/velocet/rfremote/internal/pulse"
)

// average collapses equal-length frames into one representative sequence.
// Each position is the arithmetic mean of that position's durations across
// all frames, rounded to the nearest microsecond. The quality metric is the
// mean, across positions, of the per-position population standard deviation;
// with a single frame the spread cannot be estimated and 0 is reported (the
// caller flags the result as low confidence).
func average(frames [][]uint32) (pulse.Sequence, float64) {
	k := len(frames)
	l := len(frames[0])

	seq := make(pulse.Sequence, l)
	samples := make([]float64, k)

	var spread float64
	for i := 0; i < l; i++ {
		for j, frame := range frames {
			samples[j] = float64(frame[i])
		}

		seq[i] = uint32(math.Round(stat.Mean(samples, nil)))
		if k > 1 {
			spread += stat.PopStdDev(samples, nil)
		}
	}

	return seq, spread / float64(l)
}
