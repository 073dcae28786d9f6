package analyzer

import "github.com/anime-shed/erosion-inspector-go/pkg/models"

// ClassifySoil derives the soil color from the average color of the
// non-vegetation pixels. Rules are checked in order and the first match wins.
func ClassifySoil(acc PixelAccumulator) models.SoilAnalysis {
	// An all-vegetation image has no soil pixels; dividing by 1 instead
	// yields zero averages, which classifies as black soil.
	divisor := acc.SoilPixelCount
	if divisor == 0 {
		divisor = 1
	}
	avgR := float64(acc.SoilRedSum) / float64(divisor)
	avgG := float64(acc.SoilGreenSum) / float64(divisor)
	avgB := float64(acc.SoilBlueSum) / float64(divisor)

	if avgR < 50 && avgG < 50 && avgB < 50 {
		return models.SoilAnalysis{Type: models.SoilTypeBlackCotton, Color: models.SoilColorBlack}
	}
	if avgR > avgG*1.5 && avgR > avgB*1.5 {
		return models.SoilAnalysis{Type: models.SoilTypeLaterite, Color: models.SoilColorRed}
	}
	if avgR > 200 && avgG > 180 && avgB < 150 {
		return models.SoilAnalysis{Type: models.SoilTypeSandy, Color: models.SoilColorYellow}
	}
	return models.SoilAnalysis{Type: models.SoilTypeAlluvial, Color: models.SoilColorBrown}
}
