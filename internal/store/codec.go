package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/velocet/rfremote/internal/pulse"
)

func encode(w io.Writer, data map[string]pulse.Sequence) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	return nil
}

func decode(r io.Reader) (map[string]pulse.Sequence, error) {
	var raw map[string]pulse.Sequence
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}

	data := make(map[string]pulse.Sequence, len(raw))
	for key, seq := range raw {
		if err := seq.Validate(); err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrCorrupted, key, err)
		}
		data[key] = seq
	}
	return data, nil
}

// SaveFile rewrites the named store document in full.
func (s *Store) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating store file: %w", err)
	}

	if err = s.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile replaces the mapping with the named store document.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening store file: %w", err)
	}
	defer f.Close()

	return s.Load(f)
}
