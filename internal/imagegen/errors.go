package imagegen

import "errors"

// Error definitions for the imagegen package.
var (
	// ErrGeneration is returned when the upstream provider fails, times out,
	// or returns something that is not an image.
	ErrGeneration = errors.New("image generation failed")

	// ErrEmptyPrompt is returned when asked to generate from a blank prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidConfig is returned when a provider cannot be constructed.
	ErrInvalidConfig = errors.New("invalid image generation configuration")

	// ErrInvalidDataURI is returned when an image payload cannot be decoded.
	ErrInvalidDataURI = errors.New("invalid image data")
)
