package analyzer

import "github.com/nfnt/resize"

// ClassifierOptions configures how source images are brought to the canonical grid.
// Classification thresholds are fixed and not configurable.
type ClassifierOptions struct {
	// Interpolation is the resampling kernel. Results are reproducible only
	// for a fixed kernel.
	Interpolation resize.InterpolationFunction

	// MaxSourcePixels rejects sources whose decoded area exceeds it, before
	// the pixel data is allocated. Zero disables the check.
	MaxSourcePixels int
}

// DefaultOptions returns default classifier options
func DefaultOptions() ClassifierOptions {
	return ClassifierOptions{
		Interpolation:   resize.Bilinear,
		MaxSourcePixels: 64 * 1024 * 1024,
	}
}

// WithInterpolation returns options using a different resampling kernel
func (opts ClassifierOptions) WithInterpolation(interp resize.InterpolationFunction) ClassifierOptions {
	opts.Interpolation = interp
	return opts
}

// WithMaxSourcePixels returns options with a custom source size limit
func (opts ClassifierOptions) WithMaxSourcePixels(limit int) ClassifierOptions {
	opts.MaxSourcePixels = limit
	return opts
}
