package gpio

import (
	"errors"
	"sync"
	"testing"

	"github.com/velocet/rfremote/internal/pulse"
)

func TestSimPin_Replay(t *testing.T) {
	frame := pulse.Sequence{400, 1200, 400, 12000}
	pin := NewSimPin(frame, 3)

	var mu sync.Mutex
	var times []int64
	done := make(chan struct{})

	err := pin.Watch(func(timeMicros int64, _ bool) {
		mu.Lock()
		times = append(times, timeMicros)
		if len(times) == 3*len(frame) {
			close(done)
		}
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	<-done
	pin.Unwatch()

	if len(times) != 12 {
		t.Fatalf("got %d edges, want 12", len(times))
	}

	// Without jitter the inter-edge gaps are exactly the frame durations.
	for i := 1; i < len(times); i++ {
		want := int64(frame[(i-1)%len(frame)])
		if got := times[i] - times[i-1]; got != want {
			t.Errorf("edge %d spacing = %d, want %d", i, got, want)
		}
	}
}

func TestSimPin_ExclusiveWatch(t *testing.T) {
	pin := NewSimPin(pulse.Sequence{400, 12000}, 1000)

	if err := pin.Watch(func(int64, bool) {}); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	if err := pin.Watch(func(int64, bool) {}); !errors.Is(err, ErrWatchActive) {
		t.Errorf("second Watch() = %v, want ErrWatchActive", err)
	}

	pin.Unwatch()
	pin.Unwatch() // releasing twice is safe

	if err := pin.Watch(func(int64, bool) {}); err != nil {
		t.Errorf("Watch() after Unwatch() failed: %v", err)
	}
	pin.Unwatch()
}

func TestSimEmitter_BusyWindow(t *testing.T) {
	e := NewSimEmitter()

	if e.Busy() {
		t.Error("new emitter should be idle")
	}

	train := []Pulse{{High: true, Micros: 5000}, {High: false, Micros: 5000}}
	if err := e.Emit(train); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	if !e.Busy() {
		t.Error("emitter should be busy while the train plays")
	}
	if err := e.Emit(train); !errors.Is(err, ErrEmitterBusy) {
		t.Errorf("overlapping Emit() = %v, want ErrEmitterBusy", err)
	}
}

func TestParseEdgeLine(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		want    int64
		high    bool
		wantErr bool
	}{
		{"rising", "123456 1", 123456, true, false},
		{"falling", "123857 0", 123857, false, false},
		{"padded", "  42 1  ", 42, true, false},
		{"missing level", "123456", 0, false, true},
		{"bad level", "123456 2", 0, false, true},
		{"bad timestamp", "abc 1", 0, false, true},
		{"empty", "", 0, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, high, err := parseEdgeLine(tc.line)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected a parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseEdgeLine() failed: %v", err)
			}
			if got != tc.want || high != tc.high {
				t.Errorf("parseEdgeLine() = (%d, %t), want (%d, %t)", got, high, tc.want, tc.high)
			}
		})
	}
}
