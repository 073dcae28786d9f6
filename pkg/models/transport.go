package models

// AnalyzeURLRequest asks for a classification of an image hosted elsewhere
type AnalyzeURLRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// UpdateStatusRequest moves a report to a new review status
type UpdateStatusRequest struct {
	Status ReportStatus `json:"status" binding:"required"`
}

// BatchItem is the per-image outcome of a batch classification.
// Exactly one of Result and Error is set.
type BatchItem struct {
	Index    int            `json:"index"`
	Filename string         `json:"filename,omitempty"`
	Result   *ErosionResult `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// BatchResponse wraps the results of a batch classification
type BatchResponse struct {
	Items []BatchItem `json:"items"`
}

// ReportListResponse wraps a report listing.
type ReportListResponse struct {
	Reports []Report `json:"reports"`
	Count   int      `json:"count"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
