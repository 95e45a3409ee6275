package gemini

import "errors"

// ErrEmptyPrompt is returned when a prompt would be built from empty input.
var ErrEmptyPrompt = errors.New("prompt input cannot be empty")
