package analyzer

import "github.com/anime-shed/erosion-inspector-go/pkg/models"

// ErosionClassifier turns raw image bytes into an erosion assessment
type ErosionClassifier interface {
	// Classify decodes data and classifies it. It returns a *DecodeError when
	// data is empty or not a supported raster format.
	Classify(data []byte) (models.ErosionResult, error)
}

// ImageDecoder handles decoding and resampling to the canonical grid
type ImageDecoder interface {
	Decode(data []byte) (*CanonicalImage, error)
}

// PixelScanner accumulates color statistics over a canonical image
type PixelScanner interface {
	Scan(img *CanonicalImage) PixelAccumulator
}
