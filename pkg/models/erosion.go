package models

// Severity buckets, ordered from least to most severe.
const (
	PredictionNone     = "None"
	PredictionSlight   = "Slight (Sheet)"
	PredictionModerate = "Moderate (Rill)"
	PredictionSevere   = "Severe (Gully)"
)

// Soil color labels and the soil types they map to.
const (
	SoilColorBlack  = "Black"
	SoilColorRed    = "Red"
	SoilColorYellow = "Yellow"
	SoilColorBrown  = "Brown"

	SoilTypeBlackCotton = "Black Cotton Soil (Clay)"
	SoilTypeLaterite    = "Laterite / Red Soil"
	SoilTypeSandy       = "Sandy / Desert Soil"
	SoilTypeAlluvial    = "Alluvial / Loamy"
)

// Predictions lists every severity bucket in ascending order of severity.
var Predictions = []string{
	PredictionNone,
	PredictionSlight,
	PredictionModerate,
	PredictionSevere,
}

// SoilAnalysis describes the dominant soil color of the non-vegetated area
type SoilAnalysis struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// ErosionMetrics holds the ratios the severity decision was based on.
type ErosionMetrics struct {
	Vegetation float64 `json:"vegetation"`
	// EdgeDensity is reserved; edge detection is not implemented and it is always 0.
	EdgeDensity float64 `json:"edge_density"`
	// LineCount is reserved; line detection is not implemented and it is always 0.
	LineCount int     `json:"line_count"`
	Darkness  float64 `json:"darkness"`
}

// ErosionResult is the outcome of classifying a single photograph.
type ErosionResult struct {
	Prediction   string         `json:"prediction"`
	Confidence   float64        `json:"confidence"`
	SoilAnalysis SoilAnalysis   `json:"soil_analysis"`
	Metrics      ErosionMetrics `json:"metrics"`
	Reasoning    []string       `json:"reasoning"`
}
