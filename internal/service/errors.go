package service

import "errors"

// Common service errors. The API layer maps these to HTTP status codes.
var (
	// ErrLearnerNotFound indicates no learner is registered under the id.
	// API layer should map this to HTTP 404 Not Found.
	ErrLearnerNotFound = errors.New("learner not found")

	// ErrServiceClosed is returned once Close has been called.
	ErrServiceClosed = errors.New("learner service closed")
)
