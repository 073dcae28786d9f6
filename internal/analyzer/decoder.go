package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// imageDecoder implements ImageDecoder using the registered image codecs
type imageDecoder struct {
	interp    resize.InterpolationFunction
	maxPixels int
}

// NewImageDecoder creates a decoder that resamples to the canonical grid
func NewImageDecoder(options ClassifierOptions) ImageDecoder {
	return &imageDecoder{
		interp:    options.Interpolation,
		maxPixels: options.MaxSourcePixels,
	}
}

// Decode parses data and resamples it to CanonicalSize x CanonicalSize.
// Panics raised by a codec on malformed input are reported as a DecodeError.
func (d *imageDecoder) Decode(data []byte) (canonical *CanonicalImage, err error) {
	if len(data) == 0 {
		return nil, &DecodeError{Reason: "empty input", Cause: ErrEmptyImage}
	}

	defer func() {
		if r := recover(); r != nil {
			canonical = nil
			err = &DecodeError{Reason: "codec failure", Cause: fmt.Errorf("%v", r)}
		}
	}()

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: "unsupported or corrupt image", Cause: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid %s dimensions %dx%d", format, cfg.Width, cfg.Height)}
	}
	if d.maxPixels > 0 && cfg.Width*cfg.Height > d.maxPixels {
		return nil, &DecodeError{Reason: fmt.Sprintf("%s image too large: %dx%d", format, cfg.Width, cfg.Height)}
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Reason: fmt.Sprintf("corrupt %s image", format), Cause: err}
	}

	return d.resample(src), nil
}

// resample resizes src to the canonical grid and drops the alpha channel.
func (d *imageDecoder) resample(src image.Image) *CanonicalImage {
	resized := resize.Resize(CanonicalSize, CanonicalSize, src, d.interp)

	// Drawing into NRGBA yields straight (non-premultiplied) channel values.
	bounds := image.Rect(0, 0, CanonicalSize, CanonicalSize)
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, resized, resized.Bounds().Min, draw.Src)

	canonical := newCanonicalImage()
	for y := 0; y < CanonicalSize; y++ {
		row := nrgba.Pix[y*nrgba.Stride:]
		for x := 0; x < CanonicalSize; x++ {
			canonical.SetRGB(x, y, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return canonical
}
