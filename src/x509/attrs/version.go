// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"fmt"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// Version is the certificate or CRL format version, stored as its encoded
// integer (v1 is 0).
type Version int

const (
	V1 Version = 0
	V2 Version = 1
	V3 Version = 2
)

func (v Version) String() string { return fmt.Sprintf("v%d", int(v)+1) }

func (v Version) valid() bool { return v >= V1 && v <= V3 }

// Encode writes the version as [0] EXPLICIT INTEGER.
func (v Version) Encode(b *der.Builder) {
	if !v.valid() {
		b.SetError(der.Invalidf("version %d", int(v)))
		return
	}
	b.AddExplicit(0, func(b *der.Builder) { b.AddInt64(int64(v)) })
}

// EncodeDefault writes the version unless it is the DEFAULT v1.
func (v Version) EncodeDefault(b *der.Builder) {
	if v == V1 {
		return
	}
	v.Encode(b)
}

// DecodeVersion decodes a [0] EXPLICIT version field.
func DecodeVersion(v der.Value) (Version, error) {
	if !v.IsContext(0) || !v.Constructed {
		return 0, der.Malformedf("version: expected [0] EXPLICIT, found %s", v)
	}
	r, _ := v.Reader()
	iv, err := r.Next()
	if err != nil {
		return 0, err
	}
	if err := r.Finish(); err != nil {
		return 0, err
	}
	n, err := iv.Int64()
	if err != nil {
		return 0, err
	}
	ver := Version(n)
	if n < 0 || !ver.valid() {
		return 0, der.Invalidf("version %d", n)
	}
	return ver, nil
}
