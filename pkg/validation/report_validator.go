package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/anime-shed/erosion-inspector-go/internal/errors"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

const (
	MaxDescriptionLength = 2000

	// Replayed offline submissions may be old, but never from the future
	// beyond a small clock skew.
	maxClockSkew = 5 * time.Minute
)

// ValidateReportInput checks a report submission before anything is stored.
func ValidateReportInput(input models.SubmitReportInput, now time.Time) error {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return apperrors.NewValidationError("description is required", nil)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength), nil)
	}

	if (input.Latitude == nil) != (input.Longitude == nil) {
		return apperrors.NewValidationError("latitude and longitude must be given together", nil)
	}
	if input.Latitude != nil {
		if !inRange(*input.Latitude, -90, 90) {
			return apperrors.NewValidationError("latitude must be between -90 and 90", nil)
		}
		if !inRange(*input.Longitude, -180, 180) {
			return apperrors.NewValidationError("longitude must be between -180 and 180", nil)
		}
	}

	if input.Timestamp != nil && input.Timestamp.After(now.Add(maxClockSkew)) {
		return apperrors.NewValidationError("timestamp is in the future", nil)
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// ParseOptionalFloat parses a form value; an empty value yields nil.
func ParseOptionalFloat(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("%s must be a number", field), err)
	}
	return &v, nil
}

// ParseOptionalTimestamp accepts RFC 3339 or Unix milliseconds, the two
// forms offline clients send. An empty value yields nil.
func ParseOptionalTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.NewValidationError("timestamp must be RFC 3339 or Unix milliseconds", err)
	}
	return &t, nil
}

// ParseStatus validates a status coming from a request.
func ParseStatus(raw string) (models.ReportStatus, error) {
	status := models.ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown status %q", raw), nil)
	}
	return status, nil
}
