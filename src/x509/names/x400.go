// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"bytes"
	"encoding/hex"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// X400Address is an x400Address. The ORAddress is kept as opaque content
// octets of its SEQUENCE.
type X400Address struct{ content []byte }

// NewX400Address wraps the DER content of an ORAddress SEQUENCE.
func NewX400Address(content []byte) X400Address { return X400Address{content: bytes.Clone(content)} }

// Content returns a copy of the ORAddress content octets.
func (n X400Address) Content() []byte { return bytes.Clone(n.content) }

func (X400Address) generalName() {}

// Type returns [TypeX400].
func (X400Address) Type() NameType { return TypeX400 }

// Encode writes the ORAddress SEQUENCE.
func (n X400Address) Encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) { b.AddRaw(n.content) })
}

// Equal compares the encodings.
func (n X400Address) Equal(other GeneralName) bool {
	o, ok := other.(X400Address)
	return ok && bytes.Equal(n.content, o.content)
}

func (n X400Address) Key() string { return "x400:" + hex.EncodeToString(n.content) }

// Constrains only supports exact matches.
func (n X400Address) Constrains(other GeneralName) (Constraint, error) { return exactOnly(n, other) }

// SubtreeDepth is not defined for X.400 addresses.
func (X400Address) SubtreeDepth() (int, error) { return 0, ErrUnsupported }

func (n X400Address) String() string { return "X400:#" + hex.EncodeToString(n.content) }
