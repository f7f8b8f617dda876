package dataset

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessConfig controls scanned-raster cleanup before OCR or labeling.
type PreprocessConfig struct {
	// Binarize applies a fixed-level threshold after grayscale conversion.
	Binarize bool `yaml:"binarize"`
	// Level is the binarization cutoff; pixels at or above it become white.
	Level uint8 `yaml:"level"`
}

// DefaultPreprocessConfig returns the cleanup settings that work well for
// typical 300 DPI scans.
func DefaultPreprocessConfig() PreprocessConfig {
	return PreprocessConfig{Binarize: false, Level: 180}
}

// Preprocess converts a raster to grayscale and optionally binarizes it.
// The input image is not modified.
func Preprocess(src image.Image, cfg PreprocessConfig) image.Image {
	gray := imaging.Grayscale(src)
	if cfg.Binarize {
		return segment.Threshold(gray, cfg.Level)
	}
	return gray
}

// PreprocessFile runs Preprocess on an image file and writes the result.
func PreprocessFile(inPath, outPath string, cfg PreprocessConfig) error {
	src, err := imaging.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening raster: %w", err)
	}
	if err := imaging.Save(Preprocess(src, cfg), outPath); err != nil {
		return fmt.Errorf("saving preprocessed raster: %w", err)
	}
	return nil
}
