package store

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/velocet/rfremote/internal/capture"
	"github.com/velocet/rfremote/internal/pulse"
)

// fakeCapturer returns a canned result, standing in for the capture
// pipeline.
type fakeCapturer struct {
	seq     pulse.Sequence
	quality capture.Quality
	err     error
}

func (f *fakeCapturer) Capture(context.Context) (pulse.Sequence, capture.Quality, error) {
	return f.seq, f.quality, f.err
}

func TestStore_Add(t *testing.T) {
	fc := &fakeCapturer{
		seq:     pulse.Sequence{400, 1200, 400, 12000},
		quality: capture.Quality{FrameLen: 4, FramesUsed: 6, StdDev: 2.5},
	}
	s := New(WithCapturer(fc))

	quality, err := s.Add(context.Background(), "on")
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if quality.StdDev != 2.5 {
		t.Errorf("quality.StdDev = %f, want 2.5", quality.StdDev)
	}

	seq, err := s.Get("on")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !reflect.DeepEqual(seq, fc.seq) {
		t.Errorf("Get() = %v, want %v", seq, fc.seq)
	}
}

func TestStore_AddFailureLeavesStoreUnmodified(t *testing.T) {
	fc := &fakeCapturer{seq: pulse.Sequence{400, 1200}}
	s := New(WithCapturer(fc))

	if _, err := s.Add(context.Background(), "on"); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	fc.err = capture.ErrInsufficientFrames
	if _, err := s.Add(context.Background(), "on"); !errors.Is(err, capture.ErrInsufficientFrames) {
		t.Fatalf("Add() = %v, want ErrInsufficientFrames", err)
	}

	// The earlier entry must survive the failed re-capture.
	seq, err := s.Get("on")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !reflect.DeepEqual(seq, pulse.Sequence{400, 1200}) {
		t.Errorf("Get() = %v, want the original entry", seq)
	}
}

func TestStore_AddWithoutCapturer(t *testing.T) {
	s := New()
	if _, err := s.Add(context.Background(), "on"); !errors.Is(err, ErrNoCapturer) {
		t.Errorf("Add() = %v, want ErrNoCapturer", err)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := New()
	if _, err := s.Get("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	if err := s.Put("on", pulse.Sequence{400, 1200}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if err := s.Delete("on"); err != nil {
		t.Errorf("Delete() failed: %v", err)
	}
	if _, err := s.Get("on"); !errors.Is(err, ErrKeyNotFound) {
		t.Error("entry still present after Delete()")
	}

	// Deleting an absent key fails explicitly.
	if err := s.Delete("on"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Delete() = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_Put(t *testing.T) {
	s := New()

	if err := s.Put("odd", pulse.Sequence{400, 1200, 400}); !errors.Is(err, pulse.ErrOddLength) {
		t.Errorf("Put() = %v, want ErrOddLength", err)
	}
	if err := s.Put("empty", nil); !errors.Is(err, pulse.ErrEmpty) {
		t.Errorf("Put() = %v, want ErrEmpty", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after rejected inserts, want 0", s.Len())
	}
}

func TestStore_Keys(t *testing.T) {
	s := New()
	for _, key := range []string{"c", "a", "b"} {
		if err := s.Put(key, pulse.Sequence{400, 1200}); err != nil {
			t.Fatalf("Put(%q) failed: %v", key, err)
		}
	}

	want := []string{"a", "b", "c"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestStore_Longest(t *testing.T) {
	s := New()
	if s.Longest() != nil {
		t.Error("Longest() on empty store should be nil")
	}

	s.Put("short", pulse.Sequence{400, 1200})
	s.Put("long", pulse.Sequence{400, 1200, 400, 12000})

	if got := s.Longest(); got.TotalMicros() != 14000 {
		t.Errorf("Longest().TotalMicros() = %d, want 14000", got.TotalMicros())
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := New()
	s.Put("on", pulse.Sequence{400, 1200, 400, 12000})
	s.Put("off", pulse.Sequence{1200, 400, 1200, 12000})

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	fresh := New()
	fresh.Put("stale", pulse.Sequence{100, 100})
	if err := fresh.Load(&buf); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Load replaces the whole mapping.
	want := []string{"off", "on"}
	if got := fresh.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}

	seq, err := fresh.Get("on")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !reflect.DeepEqual(seq, pulse.Sequence{400, 1200, 400, 12000}) {
		t.Errorf("Get() = %v, want the saved sequence", seq)
	}
}

func TestStore_LoadCorrupted(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"odd length", `{"on": [400, 1200, 400]}`},
		{"empty sequence", `{"on": []}`},
		{"not json", `{"on": [400,`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			s.Put("keep", pulse.Sequence{400, 1200})

			if err := s.Load(strings.NewReader(tc.doc)); !errors.Is(err, ErrCorrupted) {
				t.Fatalf("Load() = %v, want ErrCorrupted", err)
			}

			// A failed load must not partially populate the store.
			if _, err := s.Get("keep"); err != nil {
				t.Error("failed Load() clobbered the existing mapping")
			}
			if s.Len() != 1 {
				t.Errorf("Len() = %d, want 1", s.Len())
			}
		})
	}
}
