package analyzer

import "github.com/anime-shed/erosion-inspector-go/pkg/models"

// coreAnalyzer implements ErosionClassifier and orchestrates all stages.
// It holds no per-call state, so one instance may serve concurrent calls.
type coreAnalyzer struct {
	decoder ImageDecoder
	scanner PixelScanner
}

// NewErosionClassifier creates a classifier with default options
func NewErosionClassifier() ErosionClassifier {
	return NewErosionClassifierWithOptions(DefaultOptions())
}

// NewErosionClassifierWithOptions creates a classifier with custom resampling options
func NewErosionClassifierWithOptions(options ClassifierOptions) ErosionClassifier {
	return &coreAnalyzer{
		decoder: NewImageDecoder(options),
		scanner: NewPixelScanner(),
	}
}

// Classify runs decode, scan, soil and severity classification on data.
func (ca *coreAnalyzer) Classify(data []byte) (models.ErosionResult, error) {
	canonical, err := ca.decoder.Decode(data)
	if err != nil {
		return models.ErosionResult{}, err
	}

	acc := ca.scanner.Scan(canonical)
	return assembleResult(acc), nil
}

// assembleResult derives both classifications from acc and packages them.
func assembleResult(acc PixelAccumulator) models.ErosionResult {
	vegetation := acc.VegetationRatio()
	darkness := acc.DarknessRatio()

	soil := ClassifySoil(acc)
	severity := ClassifySeverity(vegetation, darkness)

	reasoning := make([]string, len(severity.Reasoning))
	copy(reasoning, severity.Reasoning)

	return models.ErosionResult{
		Prediction:   severity.Prediction,
		Confidence:   severity.Confidence,
		SoilAnalysis: soil,
		Metrics: models.ErosionMetrics{
			Vegetation: vegetation,
			// Edge and line detection are not implemented; kept at zero.
			EdgeDensity: 0,
			LineCount:   0,
			Darkness:    darkness,
		},
		Reasoning: reasoning,
	}
}
