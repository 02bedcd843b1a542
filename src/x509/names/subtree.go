// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names

import (
	"fmt"
	"strings"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// GeneralSubtree is a name constraint base with its distance bounds.
// Maximum is -1 when absent.
type GeneralSubtree struct {
	Name    GeneralName
	Minimum int
	Maximum int
}

// NewGeneralSubtree returns a subtree with the default bounds (0, absent).
func NewGeneralSubtree(name GeneralName) GeneralSubtree {
	return GeneralSubtree{Name: name, Maximum: -1}
}

// Encode writes the GeneralSubtree SEQUENCE. The minimum is omitted when it
// equals its DEFAULT of zero.
func (s GeneralSubtree) Encode(b *der.Builder) {
	if s.Minimum < 0 {
		b.SetError(der.Invalidf("GeneralSubtree minimum %d is negative", s.Minimum))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		EncodeGeneralName(b, s.Name)
		if s.Minimum != 0 {
			b.AddImplicit(0, func(b *der.Builder) { b.AddInt64(int64(s.Minimum)) })
		}
		if s.Maximum >= 0 {
			b.AddImplicit(1, func(b *der.Builder) { b.AddInt64(int64(s.Maximum)) })
		}
	})
}

// DecodeGeneralSubtree decodes a GeneralSubtree. The base is read in name
// constraint form.
func DecodeGeneralSubtree(v der.Value) (GeneralSubtree, error) {
	r, err := v.Sequence()
	if err != nil {
		return GeneralSubtree{}, err
	}
	nv, err := r.Next()
	if err != nil {
		return GeneralSubtree{}, err
	}
	name, err := DecodeGeneralNameConstraint(nv)
	if err != nil {
		return GeneralSubtree{}, err
	}
	s := NewGeneralSubtree(name)

	if mv, ok, err := r.NextIf(der.ClassContextSpecific, 0); err != nil {
		return GeneralSubtree{}, err
	} else if ok {
		if s.Minimum, err = mv.Implicit(der.TagInteger).Int(); err != nil {
			return GeneralSubtree{}, err
		}
	}
	if mv, ok, err := r.NextIf(der.ClassContextSpecific, 1); err != nil {
		return GeneralSubtree{}, err
	} else if ok {
		if s.Maximum, err = mv.Implicit(der.TagInteger).Int(); err != nil {
			return GeneralSubtree{}, err
		}
	}
	if err := r.Finish(); err != nil {
		return GeneralSubtree{}, err
	}
	if s.Minimum < 0 || (s.Maximum >= 0 && s.Maximum < s.Minimum) {
		return GeneralSubtree{}, der.Invalidf("GeneralSubtree bounds %d..%d", s.Minimum, s.Maximum)
	}
	return s, nil
}

// Equal compares name and bounds.
func (s GeneralSubtree) Equal(o GeneralSubtree) bool {
	if s.Name == nil || o.Name == nil {
		return s.Name == nil && o.Name == nil && s.Minimum == o.Minimum && s.Maximum == o.Maximum
	}
	return s.Name.Equal(o.Name) && s.Minimum == o.Minimum && s.Maximum == o.Maximum
}

func (s GeneralSubtree) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v", s.Name)
	if s.Minimum != 0 {
		fmt.Fprintf(&sb, " min=%d", s.Minimum)
	}
	if s.Maximum >= 0 {
		fmt.Fprintf(&sb, " max=%d", s.Maximum)
	}
	return sb.String()
}

// GeneralSubtrees is a SEQUENCE OF GeneralSubtree.
type GeneralSubtrees []GeneralSubtree

// EncodeImplicit writes the subtrees as the content of a constructed field tagged
// IMPLICIT [tag].
func (g GeneralSubtrees) EncodeImplicit(b *der.Builder, tag uint8) {
	b.AddConstructed(der.ClassContextSpecific, tag, func(b *der.Builder) {
		for _, s := range g {
			s.Encode(b)
		}
	})
}

// DecodeGeneralSubtrees decodes the members of a GeneralSubtrees SEQUENCE.
// The sequence must not be empty.
func DecodeGeneralSubtrees(v der.Value) (GeneralSubtrees, error) {
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, der.Invalidf("GeneralSubtrees must contain at least one subtree")
	}
	var out GeneralSubtrees
	for !r.Empty() {
		sv, err := r.Next()
		if err != nil {
			return nil, err
		}
		s, err := DecodeGeneralSubtree(sv)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Equal compares element by element, in order.
func (g GeneralSubtrees) Equal(o GeneralSubtrees) bool {
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

func (g GeneralSubtrees) String() string {
	parts := make([]string, len(g))
	for i, s := range g {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, "; ") + "]"
}
