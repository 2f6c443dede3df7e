package gpio

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// recordPin captures every level written to it.
type recordPin struct {
	mu     sync.Mutex
	levels []bool
}

func (p *recordPin) Set(high bool) {
	p.mu.Lock()
	p.levels = append(p.levels, high)
	p.mu.Unlock()
}

func (p *recordPin) recorded() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bool(nil), p.levels...)
}

func TestPinEmitter_PlaysTrain(t *testing.T) {
	pin := &recordPin{}
	e := NewPinEmitter(pin)

	if e.Busy() {
		t.Error("new emitter should be idle")
	}

	train := []Pulse{
		{High: true, Micros: 200},
		{High: false, Micros: 600},
		{High: true, Micros: 200},
		{High: false, Micros: 600},
	}
	if err := e.Emit(train); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	deadline := time.After(time.Second)
	for e.Busy() {
		select {
		case <-deadline:
			t.Fatal("emitter still busy after 1s")
		case <-time.After(time.Millisecond):
		}
	}

	levels := pin.recorded()
	if len(levels) != len(train) {
		t.Fatalf("pin saw %d writes, want %d", len(levels), len(train))
	}
	for i, p := range train {
		if levels[i] != p.High {
			t.Errorf("write %d = %t, want %t", i, levels[i], p.High)
		}
	}
	if levels[len(levels)-1] {
		t.Error("pin left high after playback, want idle low")
	}
}

func TestPinEmitter_RejectsOverlap(t *testing.T) {
	pin := &recordPin{}
	e := NewPinEmitter(pin)

	long := []Pulse{{High: true, Micros: 50000}, {High: false, Micros: 50000}}
	if err := e.Emit(long); err != nil {
		t.Fatalf("Emit() failed: %v", err)
	}

	if err := e.Emit(long); !errors.Is(err, ErrEmitterBusy) {
		t.Errorf("overlapping Emit() = %v, want ErrEmitterBusy", err)
	}
}
