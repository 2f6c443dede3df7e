package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/velocet/rfremote/internal/gpio"
	"github.com/velocet/rfremote/internal/player"
	"github.com/velocet/rfremote/internal/store"
)

// Run loads the store document and either lists it, dumps one key, or plays
// one key through the pulse emitter. The emitter here is the simulator; a
// hardware target wires its own gpio.Emitter the same way.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	st := store.New(store.WithLogger(logger))
	if err := st.LoadFile(config.StorePath); err != nil {
		return err
	}

	if config.List {
		for _, key := range st.Keys() {
			seq, _ := st.Get(key)
			fmt.Printf("%-20s %4d pulses  %8s µs\n", key, len(seq), humanize.Comma(int64(seq.TotalMicros())))
		}
		return nil
	}

	if config.Show {
		seq, err := st.Get(config.Key)
		if err != nil {
			return err
		}
		for i, d := range seq {
			fmt.Printf("%3d %6d\n", i, d)
		}
		return nil
	}

	var playerOpts []func(*player.Player)
	playerOpts = append(playerOpts, player.WithLogger(logger))
	if config.Reps > 0 {
		playerOpts = append(playerOpts, player.WithReps(config.Reps))
	}
	if config.ActiveLow {
		playerOpts = append(playerOpts, player.WithActiveLow())
	}

	p := player.New(st, gpio.NewSimEmitter(), playerOpts...)
	latency := p.Latency()

	logger.Info("transmitting",
		slog.String("key", config.Key),
		slog.Int("count", config.Count),
		slog.Bool("blocking", config.Blocking),
		slog.Duration("latency", latency))

	for i := 0; i < config.Count; i++ {
		var err error
		if config.Blocking {
			err = p.Send(config.Key)
		} else {
			err = p.Transmit(config.Key)
		}
		if err != nil {
			return err
		}

		// Nonblocking transmissions must not overlap on the peripheral;
		// pace them by the conservative latency estimate.
		if !config.Blocking && i < config.Count-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(latency):
			}
		}
	}

	return nil
}
