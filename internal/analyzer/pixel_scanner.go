package analyzer

const (
	// vegetationMinGreen is the green level a green-dominant pixel must exceed
	// to count as vegetation.
	vegetationMinGreen = 50
	// darkBrightnessThreshold is the mean channel value below which a pixel
	// counts as shadow or void.
	darkBrightnessThreshold = 60
)

// pixelScanner implements PixelScanner with a single sequential pass
type pixelScanner struct{}

// NewPixelScanner creates a new pixel scanner
func NewPixelScanner() PixelScanner {
	return &pixelScanner{}
}

// Scan visits every canonical pixel exactly once.
func (s *pixelScanner) Scan(img *CanonicalImage) PixelAccumulator {
	var acc PixelAccumulator

	pix := img.Pix
	for i := 0; i+2 < len(pix); i += 3 {
		r, g, b := uint64(pix[i]), uint64(pix[i+1]), uint64(pix[i+2])

		if isVegetation(r, g, b) {
			acc.VegetationPixelCount++
		} else {
			acc.SoilPixelCount++
			acc.SoilRedSum += r
			acc.SoilGreenSum += g
			acc.SoilBlueSum += b
		}

		// Evaluated for every pixel: a pixel can be both vegetation and dark.
		if isDark(r, g, b) {
			acc.DarkPixelCount++
		}
	}

	return acc
}

// isVegetation reports green dominance above the minimum green level.
func isVegetation(r, g, b uint64) bool {
	return g > r && g > b && g > vegetationMinGreen
}

// isDark compares the unrounded mean brightness (r+g+b)/3 against the threshold.
func isDark(r, g, b uint64) bool {
	return float64(r+g+b)/3 < darkBrightnessThreshold
}
