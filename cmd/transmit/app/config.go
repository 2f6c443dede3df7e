package app

import (
	"errors"
	"flag"
)

// Config represents the transmit tool configuration.
type Config struct {
	StorePath string
	Key       string
	Reps      int
	ActiveLow bool
	Blocking  bool
	Count     int
	List      bool
	Show      bool
}

func NewConfig() *Config {
	return &Config{
		Count: 1,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	flag.StringVar(&c.StorePath, "store", "", "Path to the store document")
	flag.StringVar(&c.Key, "k", "", "Key to transmit")
	flag.IntVar(&c.Reps, "reps", 0, "Repetitions per transmission (default 5)")
	flag.BoolVar(&c.ActiveLow, "active-low", false, "Invert the waveform polarity")
	flag.BoolVar(&c.Blocking, "blocking", false, "Wait for the hardware to finish each transmission")
	flag.IntVar(&c.Count, "n", 1, "Number of transmissions, spaced by the estimated latency")
	flag.BoolVar(&c.List, "list", false, "List stored keys and exit")
	flag.BoolVar(&c.Show, "show", false, "Print the key's pulse durations and exit")
	flag.Parse()

	var err error
	if c.StorePath == "" {
		err = errors.New("store path is required")
	} else if c.Key == "" && !c.List {
		err = errors.New("key is required")
	} else if c.Reps < 0 || c.Count < 1 {
		err = errors.New("repetitions and count must be positive")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	return c, nil
}
