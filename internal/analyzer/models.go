package analyzer

// CanonicalSize is the side length every source image is resampled to.
const CanonicalSize = 500

// totalPixels is constant because ratios are always taken over the canonical grid.
const totalPixels = CanonicalSize * CanonicalSize

// CanonicalImage is a CanonicalSize x CanonicalSize grid of 8-bit RGB triples,
// stored row-major with 3 bytes per pixel.
type CanonicalImage struct {
	Pix []uint8
}

// newCanonicalImage allocates a zeroed (black) canonical image.
func newCanonicalImage() *CanonicalImage {
	return &CanonicalImage{Pix: make([]uint8, totalPixels*3)}
}

// RGBAt returns the channels of the pixel at (x, y).
func (c *CanonicalImage) RGBAt(x, y int) (r, g, b uint8) {
	i := (y*CanonicalSize + x) * 3
	return c.Pix[i], c.Pix[i+1], c.Pix[i+2]
}

// SetRGB sets the pixel at (x, y).
func (c *CanonicalImage) SetRGB(x, y int, r, g, b uint8) {
	i := (y*CanonicalSize + x) * 3
	c.Pix[i], c.Pix[i+1], c.Pix[i+2] = r, g, b
}

// PixelAccumulator holds the counters filled by one scan pass.
type PixelAccumulator struct {
	VegetationPixelCount uint64
	DarkPixelCount       uint64
	SoilPixelCount       uint64
	SoilRedSum           uint64
	SoilGreenSum         uint64
	SoilBlueSum          uint64
}

// VegetationRatio is the share of canonical pixels classified as vegetation.
func (a PixelAccumulator) VegetationRatio() float64 {
	return float64(a.VegetationPixelCount) / float64(totalPixels)
}

// DarknessRatio is the share of canonical pixels below the shadow threshold.
func (a PixelAccumulator) DarknessRatio() float64 {
	return float64(a.DarkPixelCount) / float64(totalPixels)
}
