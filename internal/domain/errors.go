package domain

import "errors"

var (
	// ErrTagNotFound is returned when no tag matches the requested slug or id.
	ErrTagNotFound = errors.New("tag not found")

	// ErrPermissionDenied is returned when the actor may not see a resource.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidSort is returned for sort fields the listing API does not support.
	ErrInvalidSort = errors.New("invalid sort field")

	// ErrUnauthorized is returned when an access token does not match a user.
	ErrUnauthorized = errors.New("unauthorized")
)
