package generation

import "errors"

// Common errors returned by generators.
var (
	// ErrNotConfigured is returned when no API key is configured.
	ErrNotConfigured = errors.New("generation service not configured")

	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from language model")

	// ErrGenerationFailed is returned when generation fails for any general reason.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidInput is returned when a request is missing required input.
	ErrInvalidInput = errors.New("invalid generation input")
)
