package errors

import (
	stderrors "errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Chapter errors
	CodeChapterUnknown     Code = "CHAPTER_UNKNOWN"
	CodeChapterNotUnlocked Code = "CHAPTER_NOT_UNLOCKED"

	// Ledger errors
	CodeLedgerIntegrity Code = "LEDGER_INTEGRITY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Identity errors
	CodeTokenInvalid Code = "TOKEN_INVALID"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeChapterUnknown:
		return http.StatusBadRequest
	case CodeChapterNotUnlocked:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTokenInvalid:
		return http.StatusUnauthorized
	case CodeLedgerIntegrity:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
// Returns nil if the error is not a domain error or has no metadata.
func GetMetadata(err error) map[string]string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Metadata
	}
	return nil
}
