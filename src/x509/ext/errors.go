// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"errors"
	"fmt"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

var (
	// ErrUnknownAttribute is returned for an attribute name the extension
	// does not define.
	ErrUnknownAttribute = errors.New("x509ext: unknown attribute")
	// ErrAttributeValue is returned when Set receives a value of the wrong
	// type or one the extension cannot hold.
	ErrAttributeValue = errors.New("x509ext: invalid attribute value")
	// ErrDuplicateExtension is returned when a container holds the same
	// extension twice. It also matches der.ErrInvalidValue.
	ErrDuplicateExtension = fmt.Errorf("x509ext: duplicate extension: %w", der.ErrInvalidValue)
)

func unknownAttribute(ext, name string) error {
	return fmt.Errorf("%w: %s has no attribute %q", ErrUnknownAttribute, ext, name)
}

func attributeValue(name string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrAttributeValue, name, fmt.Sprintf(format, args...))
}
