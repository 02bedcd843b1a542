// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed reports bytes that are not valid DER: wrong tag, bad or
	// non-minimal length, truncation, trailing data, or a non-canonical
	// primitive encoding.
	ErrMalformed = errors.New("der: malformed encoding")
	// ErrInvalidValue reports well-formed DER that carries a value the
	// structure does not allow, such as a duplicated optional field.
	ErrInvalidValue = errors.New("der: invalid value")
)

// Malformedf returns an error wrapping [ErrMalformed].
func Malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Invalidf returns an error wrapping [ErrInvalidValue].
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}

// IsDecodeError reports whether err is one of the two decoding error kinds.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrMalformed) || errors.Is(err, ErrInvalidValue)
}
