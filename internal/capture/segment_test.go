package capture

import (
	"errors"
	"testing"
)

// testFrame is a minimal frame: two mark/space pairs, a sync mark and the
// inter-frame gap.
var testFrame = []uint32{400, 1200, 1200, 400, 400, 12000}

func repeatFrame(frame []uint32, k int) []uint32 {
	out := make([]uint32, 0, k*len(frame))
	for i := 0; i < k; i++ {
		out = append(out, frame...)
	}
	return out
}

func TestSegment_ExactRepetitions(t *testing.T) {
	const k = 5
	seg, err := segment(repeatFrame(testFrame, k))
	if err != nil {
		t.Fatalf("segment() failed: %v", err)
	}

	if seg.frameLen != len(testFrame) {
		t.Errorf("frameLen = %d, want %d", seg.frameLen, len(testFrame))
	}
	if len(seg.frames) != k {
		t.Errorf("got %d frames, want %d", len(seg.frames), k)
	}
	if seg.discarded != 0 {
		t.Errorf("discarded = %d, want 0", seg.discarded)
	}

	for i, frame := range seg.frames {
		for j, d := range frame {
			if d != testFrame[j] {
				t.Fatalf("frame %d position %d = %d, want %d", i, j, d, testFrame[j])
			}
		}
	}
}

func TestSegment_Transients(t *testing.T) {
	// A capture that starts mid-frame and is truncated mid-frame: the
	// leading and trailing fragments must be discarded, the full frames
	// kept.
	log := append([]uint32{400, 400, 12000}, repeatFrame(testFrame, 4)...)
	log = append(log, 400, 1200, 1200)

	seg, err := segment(log)
	if err != nil {
		t.Fatalf("segment() failed: %v", err)
	}

	if len(seg.frames) != 4 {
		t.Errorf("got %d frames, want 4", len(seg.frames))
	}
	if seg.discarded != 2 {
		t.Errorf("discarded = %d, want 2 (leading fragment and truncated tail)", seg.discarded)
	}
}

func TestSegment_InterferenceRun(t *testing.T) {
	// A corrupted repetition with extra edges is dropped without
	// corrupting the rest of the capture.
	corrupted := []uint32{400, 1200, 300, 200, 1200, 400, 400, 12000}

	log := repeatFrame(testFrame, 3)
	log = append(log, corrupted...)
	log = append(log, repeatFrame(testFrame, 2)...)

	seg, err := segment(log)
	if err != nil {
		t.Fatalf("segment() failed: %v", err)
	}

	if len(seg.frames) != 5 {
		t.Errorf("got %d frames, want 5", len(seg.frames))
	}
	if seg.discarded != 1 {
		t.Errorf("discarded = %d, want 1", seg.discarded)
	}
}

func TestSegment_InsufficientFrames(t *testing.T) {
	testCases := []struct {
		name string
		log  []uint32
	}{
		{"empty", nil},
		{"single frame", repeatFrame(testFrame, 1)},
		{"gap only", []uint32{12000, 12000}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := segment(tc.log); !errors.Is(err, ErrInsufficientFrames) {
				t.Errorf("segment() = %v, want ErrInsufficientFrames", err)
			}
		})
	}
}

func TestModalLength(t *testing.T) {
	runs := [][]uint32{
		make([]uint32, 6),
		make([]uint32, 6),
		make([]uint32, 4),
		make([]uint32, 7), // odd lengths are never candidates
		make([]uint32, 7),
		make([]uint32, 7),
	}

	if got := modalLength(runs); got != 6 {
		t.Errorf("modalLength() = %d, want 6", got)
	}

	// On a tie the longer frame wins.
	runs = append(runs, make([]uint32, 4))
	if got := modalLength(runs); got != 6 {
		t.Errorf("modalLength() tie = %d, want 6", got)
	}
}
