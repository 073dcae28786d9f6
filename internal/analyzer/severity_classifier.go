package analyzer

import (
	"fmt"
	"math"

	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

// Severity thresholds on the canonical pixel ratios.
const (
	vegetationCoverThreshold = 0.4
	gullyDarknessThreshold   = 0.12
	rillDarknessThreshold    = 0.03
	sheetConfidence          = 0.6
)

// Severity is the severity decision for one image.
type Severity struct {
	Prediction string
	Confidence float64
	Reasoning  []string
}

// ClassifySeverity maps the vegetation and darkness ratios to a severity bucket.
// Rules are checked in order and the first match wins; confidence never exceeds 1.
func ClassifySeverity(vegetationRatio, darknessRatio float64) Severity {
	var s Severity

	if vegetationRatio > vegetationCoverThreshold {
		s = Severity{
			Prediction: models.PredictionNone,
			Confidence: 0.8 + vegetationRatio*0.2,
			Reasoning: []string{
				fmt.Sprintf("High vegetation coverage detected (%s%%) - protects soil", percent(vegetationRatio)),
			},
		}
	} else if darknessRatio > gullyDarknessThreshold {
		s = Severity{
			Prediction: models.PredictionSevere,
			Confidence: 0.7 + darknessRatio*0.3,
			Reasoning: []string{
				fmt.Sprintf("Significant deep shadows/voids detected (%s%%) - indicates gullies", percent(darknessRatio)),
			},
		}
	} else if darknessRatio > rillDarknessThreshold {
		s = Severity{
			Prediction: models.PredictionModerate,
			Confidence: 0.6 + darknessRatio*0.2,
			Reasoning: []string{
				fmt.Sprintf("Visible drainage patterns or irregularities (%s%% dark areas)", percent(darknessRatio)),
			},
		}
	} else {
		s = Severity{
			Prediction: models.PredictionSlight,
			Confidence: sheetConfidence,
			Reasoning:  []string{"Minimal vegetation with mostly uniform soil surface texture"},
		}
	}

	s.Confidence = math.Min(s.Confidence, 1.0)
	return s
}

// percent formats a ratio as a percentage with one decimal place.
func percent(ratio float64) string {
	return fmt.Sprintf("%.1f", ratio*100)
}
