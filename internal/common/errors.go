// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Cache errors.
	ErrNotFound = errors.New("not found")

	// Spreadsheet errors.
	ErrSheetsUnavailable = errors.New("sheets service unavailable")
	ErrRowNotFound       = errors.New("sheet row not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
