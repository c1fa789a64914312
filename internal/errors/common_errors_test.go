package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "invalid state error type", errType: ErrTypeInvalidState, expected: "INVALID_STATE"},
		{name: "io error type", errType: ErrTypeIO, expected: "IO"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeNotFound,
				Message: "input file not found",
			},
			wantMessage: "[NOT_FOUND] input file not found",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "malformed row",
				Cause:   fmt.Errorf("wrong number of fields"),
			},
			wantMessage: "[PARSING] malformed row: wrong number of fields",
		},
		{
			name: "io error with cause",
			appError: &AppError{
				Type:    ErrTypeIO,
				Message: "write statistics",
				Cause:   errors.New("disk full"),
			},
			wantMessage: "[IO] write statistics: disk full",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeValidation,
			},
			wantMessage: "[VALIDATION] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")

	withCause := NewIOError("write failed", cause)
	assert.Same(t, cause, withCause.Unwrap())
	assert.True(t, errors.Is(withCause, cause))

	withoutCause := NewNotFoundError("input")
	assert.Nil(t, withoutCause.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	appErr := &AppError{Type: ErrTypeParsing, Message: "bad row"}

	result := appErr.WithContext("line", 3)

	assert.Same(t, appErr, result)
	require.Contains(t, result.Context, "line")
	assert.Equal(t, 3, result.Context["line"])

	result.WithContext("path", "data.csv")
	assert.Len(t, result.Context, 2)
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       *AppError
		wantType  ErrorType
		wantMsg   string
		wantCause error
	}{
		{
			name:     "not found",
			err:      NewNotFoundError("input file data.csv"),
			wantType: ErrTypeNotFound,
			wantMsg:  "input file data.csv not found",
		},
		{
			name:      "parsing",
			err:       NewParsingError("invalid header", cause),
			wantType:  ErrTypeParsing,
			wantMsg:   "invalid header",
			wantCause: cause,
		},
		{
			name:     "invalid state",
			err:      NewInvalidStateError("no dataset loaded"),
			wantType: ErrTypeInvalidState,
			wantMsg:  "no dataset loaded",
		},
		{
			name:      "io",
			err:       NewIOError("create output directory", cause),
			wantType:  ErrTypeIO,
			wantMsg:   "create output directory",
			wantCause: cause,
		},
		{
			name:     "validation",
			err:      NewAppValidationError("workers must be positive"),
			wantType: ErrTypeValidation,
			wantMsg:  "workers must be positive",
		},
		{
			name:      "config",
			err:       NewConfigError("load config file", cause),
			wantType:  ErrTypeConfig,
			wantMsg:   "load config file",
			wantCause: cause,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantMsg, tt.err.Message)
			assert.Equal(t, tt.wantCause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestIsType(t *testing.T) {
	parseErr := NewParsingError("bad", os.ErrInvalid)
	wrapped := fmt.Errorf("load table: %w", parseErr)

	assert.True(t, IsType(parseErr, ErrTypeParsing))
	assert.True(t, IsType(wrapped, ErrTypeParsing))
	assert.False(t, IsType(wrapped, ErrTypeIO))
	assert.False(t, IsType(errors.New("plain"), ErrTypeParsing))
	assert.False(t, IsType(nil, ErrTypeParsing))

	assert.Equal(t, ErrTypeParsing, TypeOf(wrapped))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
}
