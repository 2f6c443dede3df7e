package app

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/velocet/rfremote/internal/pulse"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0
)

type annotatorConfig struct {
	FontPath string
	FontSize float64
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	fontBytes, err := os.ReadFile(config.FontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, key string, seq pulse.Sequence, waveArea image.Rectangle, scale float64) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawTimeScale(img, seq, waveArea, scale); err != nil {
		return fmt.Errorf("drawing time scale: %w", err)
	}
	if err := a.drawInfoBar(img, key, seq); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, seq pulse.Sequence, waveArea image.Rectangle, scale float64) error {
	total := float64(seq.TotalMicros())
	if total <= 0 {
		// All-zero durations: there is no time axis to draw.
		return nil
	}
	step := calculateNiceTimeStep(total, waveArea.Dx())

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := waveArea.Max.Y + tickMarkHeight + fontHeight

	for t := 0.0; t <= total; t += step {
		x := waveArea.Min.X + int(t/scale)

		// Tick mark below the waveform
		for y := waveArea.Max.Y; y < waveArea.Max.Y+tickMarkHeight; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatMicros(t)
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing time label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, key string, seq pulse.Sequence) error {
	info := fmt.Sprintf("%s: %d pulses, %s total", key, len(seq), formatMicros(float64(seq.TotalMicros())))

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - fontHeight/2

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(info, pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

// calculateNiceTimeStep picks a 1/2/5-series step in µs that keeps labels
// roughly pixelsPerLabel apart.
func calculateNiceTimeStep(totalMicros float64, widthPixels int) float64 {
	labels := float64(widthPixels) / pixelsPerLabel
	if labels < 1 {
		labels = 1
	}
	raw := totalMicros / labels
	if raw <= 0 {
		return 1
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	normalized := raw / magnitude

	switch {
	case normalized <= 1:
		return magnitude
	case normalized <= 2:
		return 2 * magnitude
	case normalized <= 5:
		return 5 * magnitude
	default:
		return 10 * magnitude
	}
}

// formatMicros renders a µs quantity with an SI-prefixed seconds unit,
// e.g. 400 → "400µs", 12600 → "12.6ms".
func formatMicros(micros float64) string {
	value, prefix := humanize.ComputeSI(micros / 1e6)
	return fmt.Sprintf("%.3g%ss", value, prefix)
}
