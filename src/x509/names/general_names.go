// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// GeneralNames is an ordered SEQUENCE OF GeneralName. Order is significant
// for encoding.
type GeneralNames []GeneralName

// Encode writes the SEQUENCE.
func (g GeneralNames) Encode(b *der.Builder) {
	b.AddSequence(g.encodeContent)
}

func (g GeneralNames) encodeContent(b *der.Builder) {
	for _, n := range g {
		EncodeGeneralName(b, n)
	}
}

// EncodeImplicit writes the names under an IMPLICIT context tag, as used by
// fields typed [n] GeneralNames.
func (g GeneralNames) EncodeImplicit(b *der.Builder, tag uint8) {
	b.AddConstructed(der.ClassContextSpecific, tag, g.encodeContent)
}

// DecodeGeneralNames decodes a GeneralNames SEQUENCE. An IMPLICIT tagged
// field should be re-tagged with Implicit(der.TagSequence) first. The
// sequence must not be empty.
func DecodeGeneralNames(v der.Value) (GeneralNames, error) {
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, der.Invalidf("GeneralNames must contain at least one name")
	}
	var g GeneralNames
	for !r.Empty() {
		nv, err := r.Next()
		if err != nil {
			return nil, err
		}
		n, err := DecodeGeneralName(nv)
		if err != nil {
			return nil, err
		}
		g = append(g, n)
	}
	return g, nil
}

// Equal compares element by element, in order.
func (g GeneralNames) Equal(o GeneralNames) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if !g[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether some element equals n.
func (g GeneralNames) Contains(n GeneralName) bool {
	for _, m := range g {
		if m.Equal(n) {
			return true
		}
	}
	return false
}

// OfType returns the elements of one variant, in order.
func (g GeneralNames) OfType(t NameType) GeneralNames {
	var out GeneralNames
	for _, n := range g {
		if n.Type() == t {
			out = append(out, n)
		}
	}
	return out
}

func (g GeneralNames) String() string {
	parts := make([]string, len(g))
	for i, n := range g {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
