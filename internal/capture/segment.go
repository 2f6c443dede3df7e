package capture

// segmentation is the result of partitioning an edge log into repeated
// frames of one modal length.
type segmentation struct {
	frames    [][]uint32 // equal-length frames, each ending with the inter-frame gap
	frameLen  int
	discarded int // runs dropped for having the wrong length, plus any partial tail
}

// segment detects the repeated frame structure in a log of inter-edge
// durations. The transmitter repeats the full payload while a button is
// held, so the log is ideally K concatenations of one frame, each repetition
// ending with a gap much longer than any intra-frame pulse. The gap
// threshold is 80% of the longest observed duration, which tolerates
// receiver jitter on the gap itself.
//
// The log is split into runs, each terminated by a gap; runs whose length
// differs from the modal run length are attributed to start/stop transients
// or interference and discarded, as is a tail run truncated before its gap.
func segment(diffs []uint32) (*segmentation, error) {
	if len(diffs) == 0 {
		return nil, ErrInsufficientFrames
	}

	var longest uint32
	for _, d := range diffs {
		if d > longest {
			longest = d
		}
	}
	gap := longest * 8 / 10

	var runs [][]uint32
	partial := 0
	for i := 0; i < len(diffs); {
		start := i
		for i < len(diffs) && diffs[i] < gap {
			i++
		}
		if i == len(diffs) {
			partial = 1 // truncated before its gap
			break
		}
		i++ // include the terminating gap
		runs = append(runs, diffs[start:i])
	}

	frameLen := modalLength(runs)
	if frameLen == 0 {
		return nil, ErrInsufficientFrames
	}

	frames := make([][]uint32, 0, len(runs))
	for _, run := range runs {
		if len(run) == frameLen {
			frames = append(frames, run)
		}
	}

	if len(frames) < 2 {
		return nil, ErrInsufficientFrames
	}

	return &segmentation{
		frames:    frames,
		frameLen:  frameLen,
		discarded: len(runs) - len(frames) + partial,
	}, nil
}

// modalLength returns the most frequent run length. Odd lengths are never
// candidates: a frame is mark/space pairs ending on the gap space, so a run
// of odd length is malformed by construction. Ties break towards the longer
// frame, which retains more of the payload. Returns 0 when no even-length
// run exists.
func modalLength(runs [][]uint32) int {
	counts := make(map[int]int)
	for _, run := range runs {
		if len(run)%2 == 0 {
			counts[len(run)]++
		}
	}

	var best, bestCount int
	for length, count := range counts {
		if count > bestCount || (count == bestCount && length > best) {
			best, bestCount = length, count
		}
	}
	return best
}
