package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_StatusCodes(t *testing.T) {
	testCases := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), ErrorTypeValidation, http.StatusBadRequest},
		{"network", NewNetworkError("down", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{"processing", NewProcessingError("failed", nil), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"decode", NewDecodeError("corrupt", nil), ErrorTypeDecode, http.StatusUnprocessableEntity},
		{"unsupported media", NewUnsupportedMediaError("text", nil), ErrorTypeUnsupportedMedia, http.StatusUnsupportedMediaType},
		{"timeout", NewTimeoutError("slow", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"unauthorized", NewUnauthorizedError("token", nil), ErrorTypeUnauthorized, http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("role", nil), ErrorTypeForbidden, http.StatusForbidden},
		{"not found", NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("state", nil), ErrorTypeConflict, http.StatusConflict},
		{"internal", NewInternalError("oops", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Type != tc.wantType {
				t.Errorf("Expected type %s, got %s", tc.wantType, tc.err.Type)
			}
			if GetStatusCode(tc.err) != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, GetStatusCode(tc.err))
			}
		})
	}
}

func TestAppError_Wrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	appErr := NewNetworkError("fetch failed", cause)
	wrapped := fmt.Errorf("classify url: %w", appErr)

	if !IsType(wrapped, ErrorTypeNetwork) {
		t.Error("Expected IsType to see through fmt.Errorf wrapping")
	}
	if GetStatusCode(wrapped) != http.StatusBadGateway {
		t.Errorf("Expected 502 through wrapping, got %d", GetStatusCode(wrapped))
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("Expected the original cause to be reachable")
	}
	if appErr.Error() != "network: fetch failed (caused by: connection refused)" {
		t.Errorf("Unexpected message: %s", appErr.Error())
	}
}

func TestGetStatusCode_PlainError(t *testing.T) {
	if GetStatusCode(stderrors.New("plain")) != http.StatusInternalServerError {
		t.Error("Expected plain errors to map to 500")
	}
	if IsType(stderrors.New("plain"), ErrorTypeValidation) {
		t.Error("Expected plain errors not to match any type")
	}
}
