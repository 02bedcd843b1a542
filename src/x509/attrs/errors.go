// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import "errors"

var (
	// ErrNotYetValid is returned by validity checks before the start of the period.
	ErrNotYetValid = errors.New("x509attrs: not yet valid")
	// ErrExpired is returned by validity checks after the end of the period.
	ErrExpired = errors.New("x509attrs: expired")
)
