// Package services defines the navigator's application logic: loading
// resource files, searching resources and console pages, and resolving deep
// links. This file centralizes service-level error values so that handlers
// can map them to HTTP status codes consistently.
package services

import "errors"

var (
	// ErrInvalidKind is returned when a search names an unknown entity kind.
	ErrInvalidKind = errors.New("kind must be one of: resources, pages, both")

	// ErrLimitTooLarge is returned when a search asks for more than MaxLimit
	// hits.
	ErrLimitTooLarge = errors.New("limit exceeds maximum")

	// ErrNoIndex indicates that no resource file has been loaded yet.
	ErrNoIndex = errors.New("no resource index loaded")

	// ErrUnknownType is returned when a resource type has no console URL
	// template. It is a normal outcome: nothing should be opened.
	ErrUnknownType = errors.New("unknown resource type")
)
