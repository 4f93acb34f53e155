package service

import "errors"

var (
	// ErrPersonaNotFound is returned for unknown catalog persona IDs
	ErrPersonaNotFound = errors.New("persona not found")

	// ErrMissingGuide is returned when a demo run has no guide questions
	ErrMissingGuide = errors.New("interview guide has no questions")

	// ErrNoObjectives is returned when a demo run has no project objectives
	ErrNoObjectives = errors.New("at least one project objective is required")

	// ErrRateLimited is returned when a demo run is rejected before starting
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrDemoNotFound is returned when a persisted demo cannot be located
	ErrDemoNotFound = errors.New("demo not found")
)
