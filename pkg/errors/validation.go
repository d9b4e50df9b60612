package errors

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
)

// ValidatePath validates a local file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateInputOutput validates both paths and rejects an output path that
// would overwrite the input.
func ValidateInputOutput(input, output string) error {
	if err := ValidatePath(input); err != nil {
		return err
	}
	if err := ValidatePath(output); err != nil {
		return err
	}
	if filepath.Clean(input) == filepath.Clean(output) {
		return New(ErrCodeInvalidPath, "input and output must be different files, so that the input is unchanged")
	}
	return nil
}

// ParseCount parses a non-negative integer parameter such as a width or a
// block size. Signs, spaces and decimal points are rejected.
func ParseCount(name, s string) (int, error) {
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, New(ErrCodeInvalidParameter, "%s must be a non-negative integer, got %q", name, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidParameter, err, "%s is out of range", name)
	}
	return n, nil
}

// ParseFloat parses a finite floating-point parameter.
func ParseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, New(ErrCodeInvalidParameter, "%s must be a number, got %q", name, s)
	}
	return v, nil
}

// ParseFloatRange parses a floating-point parameter and checks that it lies
// in the closed interval [lo, hi].
func ParseFloatRange(name, s string, lo, hi float64) (float64, error) {
	v, err := ParseFloat(name, s)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, New(ErrCodeInvalidParameter, "%s must be between %g and %g, got %g", name, lo, hi, v)
	}
	return v, nil
}
