package api

import (
	"net/http"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name: "error with details",
			apiError: &APIError{
				Code:    400,
				Message: "Bad Request",
				Details: "Invalid JSON format",
			},
			want: "Bad Request: Invalid JSON format",
		},
		{
			name: "error without details",
			apiError: &APIError{
				Code:    404,
				Message: "Not Found",
			},
			want: "Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.want {
				t.Errorf("APIError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBadRequestError(t *testing.T) {
	err := BadRequestError("Invalid input", "Field 'name' is required")

	if err.Code != http.StatusBadRequest {
		t.Errorf("BadRequestError().Code = %v, want %v", err.Code, http.StatusBadRequest)
	}
	if err.Message != "Invalid input" {
		t.Errorf("BadRequestError().Message = %v, want %v", err.Message, "Invalid input")
	}
	if err.Details != "Field 'name' is required" {
		t.Errorf("BadRequestError().Details = %v, want %v", err.Details, "Field 'name' is required")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("project", "hello")

	if err.Code != http.StatusNotFound {
		t.Errorf("NotFoundError().Code = %v, want %v", err.Code, http.StatusNotFound)
	}
	if err.Message != "project not found" {
		t.Errorf("NotFoundError().Message = %v, want %v", err.Message, "project not found")
	}
	if err.Details != "hello" {
		t.Errorf("NotFoundError().Details = %v, want 'hello'", err.Details)
	}
}

func TestValidationError(t *testing.T) {
	fieldErrors := map[string]string{
		"Name":        "failed on required",
		"IdleMinutes": "failed on max",
	}
	err := ValidationError("Validation failed", fieldErrors)

	if err.Code != http.StatusBadRequest {
		t.Errorf("ValidationError().Code = %v, want %v", err.Code, http.StatusBadRequest)
	}
	if err.Message != "Validation failed" {
		t.Errorf("ValidationError().Message = %v, want %v", err.Message, "Validation failed")
	}
	if len(err.FieldError) != 2 {
		t.Errorf("ValidationError().FieldError length = %v, want 2", len(err.FieldError))
	}
	if err.FieldError["Name"] != "failed on required" {
		t.Errorf("ValidationError().FieldError['Name'] = %v, want 'failed on required'", err.FieldError["Name"])
	}
}

func TestInternalError(t *testing.T) {
	err := InternalError("Docker connection failed", "connection timeout")

	if err.Code != http.StatusInternalServerError {
		t.Errorf("InternalError().Code = %v, want %v", err.Code, http.StatusInternalServerError)
	}
	if err.Message != "Docker connection failed" {
		t.Errorf("InternalError().Message = %v, want %v", err.Message, "Docker connection failed")
	}
}

func TestConflictError(t *testing.T) {
	err := ConflictError("project already exists", "hello")

	if err.Code != http.StatusConflict {
		t.Errorf("ConflictError().Code = %v, want %v", err.Code, http.StatusConflict)
	}
}

func TestGetHTTPMessage(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusBadRequest, "Bad request"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusNotFound, "Resource not found"},
		{http.StatusConflict, "Conflict"},
		{http.StatusTeapot, http.StatusText(http.StatusTeapot)},
	}

	for _, tt := range tests {
		if got := getHTTPMessage(tt.code); got != tt.want {
			t.Errorf("getHTTPMessage(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
