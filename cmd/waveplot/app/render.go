package app

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/velocet/rfremote/internal/pulse"
)

const (
	// Default horizontal size the automatic scale aims for, in pixels.
	defaultTargetWidth = 1200

	waveHeight = 120
	waveInset  = 20

	// Default border sizes in pixels
	defaultTopBorder    = 20
	defaultLeftBorder   = 40
	defaultBottomBorder = 60
	defaultRightBorder  = 40
)

// BorderConfig defines the sizes of white space around the waveform
type BorderConfig struct {
	Top    int
	Left   int
	Bottom int // Space for the time scale and information bar
	Right  int
}

// RenderConfig holds all configuration options for waveform visualization
type RenderConfig struct {
	MicrosPerPixel float64 // Horizontal scale; 0 selects one fitting defaultTargetWidth
	FontPath       string  // TTF font for annotations
	FontSize       float64 // Font size in points
	NoAnnotations  bool    // Skip the time scale and info bar
	BorderConfig   BorderConfig
}

// WaveRenderer draws a pulse sequence as a square-wave timing diagram.
type WaveRenderer struct {
	config RenderConfig
}

// NewWaveRenderer creates a new waveform renderer with the given configuration
func NewWaveRenderer(config RenderConfig) (*WaveRenderer, error) {
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &WaveRenderer{config: config}, nil
}

// Render creates an image of the waveform with optional annotations.
func (r *WaveRenderer) Render(key string, seq pulse.Sequence) (*image.RGBA, error) {
	total := float64(seq.TotalMicros())

	scale := r.config.MicrosPerPixel
	if scale == 0 {
		scale = total / defaultTargetWidth
	}

	waveWidth := int(math.Ceil(total / scale))
	fullWidth := waveWidth + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := waveHeight + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom

	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	waveArea := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+waveWidth,
		r.config.BorderConfig.Top+waveHeight,
	)

	r.renderWave(img, waveArea, seq, scale)

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(annotatorConfig{
			FontPath: r.config.FontPath,
			FontSize: r.config.FontSize,
			Borders:  r.config.BorderConfig,
		})
		if err != nil {
			return nil, err
		}
		defer ann.Close()

		if err = ann.annotate(img, key, seq, waveArea, scale); err != nil {
			return nil, err
		}
	}

	return img, nil
}

// renderWave draws the square wave: marks at the high level, spaces at the
// low level, with vertical strokes at each transition.
func (r *WaveRenderer) renderWave(img *image.RGBA, area image.Rectangle, seq pulse.Sequence, scale float64) {
	yHigh := area.Min.Y + waveInset
	yLow := area.Max.Y - waveInset

	x := float64(area.Min.X)
	prevX := area.Min.X
	for i, d := range seq {
		y := yLow
		if i%2 == 0 {
			y = yHigh
		}

		x += float64(d) / scale
		nextX := int(math.Round(x))
		if nextX > area.Max.X {
			nextX = area.Max.X
		}

		drawHLine(img, prevX, nextX, y)
		if i < len(seq)-1 {
			drawVLine(img, nextX, yHigh, yLow)
		}
		prevX = nextX
	}
}

func drawHLine(img *image.RGBA, x0, x1, y int) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, color.Black)
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, color.Black)
	}
}
