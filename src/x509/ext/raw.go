// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"encoding/asn1"
	"encoding/hex"
	"slices"
)

// RawExtension is an extension kept as opaque bytes, either because no
// decoder is registered for its OID or because its decoder rejected it.
type RawExtension struct {
	extension
	name string
	// failed marks a registered extension whose value did not decode.
	failed bool
}

// NewRawExtension wraps an arbitrary extension value.
func NewRawExtension(id asn1.ObjectIdentifier, critical bool, value []byte) *RawExtension {
	return newRawExtension("", id, critical, value, false)
}

func newRawExtension(name string, id asn1.ObjectIdentifier, critical bool, value []byte, failed bool) *RawExtension {
	e := &RawExtension{extension: extension{id: slices.Clone(id), critical: critical}, name: name, failed: failed}
	e.keep(value)
	return e
}

// Name returns the registered name, or the dotted OID.
func (e *RawExtension) Name() string {
	if e.name != "" {
		return e.name
	}
	return e.id.String()
}

// Failed reports whether a registered decoder rejected the value.
func (e *RawExtension) Failed() bool { return e.failed }

func (e *RawExtension) String() string {
	return header(e) + "Extension unknown: DER encoded OCTET string =\n" + hex.Dump(e.value)
}
