package app

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/velocet/rfremote/internal/store"
)

func Run(config *Config, logger *slog.Logger) error {
	st := store.New(store.WithLogger(logger))
	if err := st.LoadFile(config.StorePath); err != nil {
		return err
	}

	seq, err := st.Get(config.Key)
	if err != nil {
		return err
	}

	renderer, err := NewWaveRenderer(RenderConfig{
		MicrosPerPixel: config.MicrosPerPixel,
		FontPath:       config.FontPath,
		NoAnnotations:  config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating wave renderer: %w", err)
	}

	logger.Info("rendering waveform",
		slog.String("key", config.Key),
		slog.Int("pulses", len(seq)),
		slog.String("destination", config.OutputFile),
		slog.String("format", string(config.Format)))

	img, err := renderer.Render(config.Key, seq)
	if err != nil {
		return fmt.Errorf("rendering waveform: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
