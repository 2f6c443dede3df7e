package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

// Config represents the waveplot tool configuration.
type Config struct {
	StorePath      string
	Key            string
	OutputFile     string
	Format         ImageFormat
	FontPath       string
	MicrosPerPixel float64
	NoAnnotations  bool
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat string
	flag.StringVar(&c.StorePath, "store", "", "Path to the store document")
	flag.StringVar(&c.Key, "k", "", "Key to plot")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TTF font for annotations (annotations are skipped without it)")
	flag.Float64Var(&c.MicrosPerPixel, "scale", 0, "Horizontal scale in µs per pixel (0 for automatic)")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable time scale and info bar annotations")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	var err error
	if c.StorePath == "" {
		err = errors.New("store path is required")
	} else if c.Key == "" {
		err = errors.New("key is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.MicrosPerPixel < 0 {
		err = errors.New("scale must be positive")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	if c.FontPath == "" {
		c.NoAnnotations = true
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
