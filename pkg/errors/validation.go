package errors

import (
	"strings"
	"unicode"
)

// MaxResolutionDim is the largest accepted target dimension in pixels.
// Anything above this is almost certainly a unit mistake in the input.
const MaxResolutionDim = 16384

// ValidateResolution validates a target resolution.
// Both dimensions must be strictly positive and within MaxResolutionDim.
func ValidateResolution(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidResolution, "resolution must be positive, got %dx%d", width, height)
	}
	if width > MaxResolutionDim || height > MaxResolutionDim {
		return New(ErrCodeInvalidResolution, "resolution %dx%d exceeds maximum %d", width, height, MaxResolutionDim)
	}
	return nil
}

// ValidateDescriptorPath validates a descriptor file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//
// Unlike repository paths, descriptor paths may be absolute: the CLI reads
// files the user points it at.
func ValidateDescriptorPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "descriptor path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "descriptor path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "descriptor path contains invalid characters")
		}
	}

	return nil
}

// ValidateSliceID validates a slice identifier from a descriptor.
// IDs are used in cache keys and diagnostics, so control characters and
// whitespace-only values are rejected.
func ValidateSliceID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "slice id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "slice id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "slice id contains invalid control characters")
		}
	}
	return nil
}
