package model

import "errors"

// Common errors returned by the model package.
var (
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTheme is returned when a theme is not light, dark or system.
	ErrInvalidTheme = errors.New("invalid theme")
)
