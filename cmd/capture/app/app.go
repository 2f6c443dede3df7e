package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/velocet/rfremote/internal/capture"
	"github.com/velocet/rfremote/internal/gpio"
	"github.com/velocet/rfremote/internal/journal"
	"github.com/velocet/rfremote/internal/pulse"
	"github.com/velocet/rfremote/internal/store"
)

// simFrames is how many frame repetitions the simulated remote replays per
// capture, roughly what a one-second button press produces.
const simFrames = 15

// Run captures the given keys one after another and rewrites the store
// document. Capture failures on one key are reported and do not abort the
// remaining keys.
func Run(ctx context.Context, config *Config, keys []string, logger *slog.Logger) error {
	pin := createPin(&config.Device)

	var recorderOpts []func(*capture.Recorder)
	recorderOpts = append(recorderOpts, capture.WithLogger(logger))
	if config.Device.EdgeCount > 0 {
		recorderOpts = append(recorderOpts, capture.WithEdgeCount(config.Device.EdgeCount))
	}
	if config.Device.IdleTimeout > 0 {
		recorderOpts = append(recorderOpts, capture.WithIdleTimeout(time.Duration(config.Device.IdleTimeout)))
	}
	recorder := capture.NewRecorder(pin, recorderOpts...)

	st := store.New(store.WithCapturer(recorder), store.WithLogger(logger))
	if _, err := os.Stat(config.Storage.File); err == nil {
		if err = st.LoadFile(config.Storage.File); err != nil {
			return fmt.Errorf("loading existing store: %w", err)
		}
		logger.Info("existing store loaded",
			slog.String("file", config.Storage.File),
			slog.Int("keys", st.Len()))
	}

	var sessionID int64
	var jnl *journal.Journal
	if config.Storage.JournalEnable {
		var err error
		if jnl, sessionID, err = createJournal(ctx, config); err != nil {
			return err
		}
		defer jnl.Close()
	}

	captured := 0
	for _, key := range keys {
		logger.Info("press and hold the remote button", slog.String("key", key))

		quality, err := st.Add(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn(fmt.Sprintf("capture failed: %s, please try again", err.Error()), slog.String("key", key))
			continue
		}
		captured++

		if quality.SingleFrame {
			logger.Warn("single-frame capture, confidence is low", slog.String("key", key))
		}

		if jnl != nil {
			seq, _ := st.Get(key)
			if _, err = jnl.RecordCapture(ctx, sessionID, journal.Capture{
				Key:             key,
				FrameLen:        quality.FrameLen,
				FramesUsed:      quality.FramesUsed,
				FramesDiscarded: quality.FramesDiscarded,
				Quality:         quality.StdDev,
				TotalMicros:     int64(seq.TotalMicros()),
			}); err != nil {
				logger.Warn(fmt.Sprintf("journalling capture: %s", err.Error()), slog.String("key", key))
			}
		}
	}

	if captured == 0 {
		return fmt.Errorf("no keys captured")
	}

	if err := st.SaveFile(config.Storage.File); err != nil {
		return fmt.Errorf("saving store: %w", err)
	}

	logger.Info("store saved",
		slog.String("file", config.Storage.File),
		slog.Int("captured", captured),
		slog.Int("keys", st.Len()))
	return nil
}

func createPin(config *DeviceConfig) gpio.EdgePin {
	if config.Type == DeviceSerial {
		return gpio.NewSerialEdgePin(config.SerialPort, config.BaudRate)
	}
	return gpio.NewSimPin(demoFrame(), simFrames, gpio.WithJitter(20))
}

func createJournal(ctx context.Context, config *Config) (*journal.Journal, int64, error) {
	stat, err := os.Stat(config.Storage.JournalDir)
	if err != nil {
		return nil, 0, fmt.Errorf("journal directory '%s': %w", config.Storage.JournalDir, err)
	}
	if !stat.IsDir() {
		return nil, 0, fmt.Errorf("journal path '%s' is not a directory", config.Storage.JournalDir)
	}

	dbPath := filepath.Join(config.Storage.JournalDir,
		fmt.Sprintf("capture_journal_%s.sqlite", time.Now().UTC().Format("20060102_150405")))

	jnl := journal.New(dbPath)
	sessionID, err := jnl.CreateSession(ctx, string(config.Device.Type), config.Storage.File)
	if err != nil {
		jnl.Close()
		return nil, 0, fmt.Errorf("creating journal session: %w", err)
	}

	return jnl, sessionID, nil
}

// demoFrame synthesises a PT2262-style 24-bit frame for the simulated
// device: 400µs/1200µs bit pairs followed by a sync mark and a long gap.
func demoFrame() pulse.Sequence {
	const (
		short = 400
		long  = 1200
		gap   = 12400
	)

	code := uint32(0x9aa665)
	frame := make(pulse.Sequence, 0, 50)
	for bit := 23; bit >= 0; bit-- {
		if code>>uint(bit)&1 == 1 {
			frame = append(frame, long, short)
		} else {
			frame = append(frame, short, long)
		}
	}
	return append(frame, short, gap)
}
