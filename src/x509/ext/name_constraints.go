// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"errors"
	"slices"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
)

// NameConstraints attribute names.
const (
	AttrPermittedSubtrees = "permitted_subtrees"
	AttrExcludedSubtrees  = "excluded_subtrees"
)

// NameConstraints restricts the names subordinate certificates may assert.
// A nil subtree list is absent.
type NameConstraints struct {
	extension
	permitted x509names.GeneralSubtrees
	excluded  x509names.GeneralSubtrees
}

// NewNameConstraints builds the extension. RFC 5280 requires it to be
// critical; at least one list must be non-empty.
func NewNameConstraints(critical bool, permitted, excluded x509names.GeneralSubtrees) (*NameConstraints, error) {
	e := &NameConstraints{
		extension: extension{id: slices.Clone(OIDNameConstraints), critical: critical},
		permitted: slices.Clone(permitted),
		excluded:  slices.Clone(excluded),
	}
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

// ParseNameConstraints decodes an extnValue.
func ParseNameConstraints(critical bool, value []byte) (*NameConstraints, error) {
	v, err := decodeValue(NameNameConstraints, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &NameConstraints{extension: extension{id: slices.Clone(OIDNameConstraints), critical: critical}}
	if f, ok, err := r.NextIf(der.ClassContextSpecific, 0); err != nil {
		return nil, err
	} else if ok {
		if e.permitted, err = x509names.DecodeGeneralSubtrees(f.Implicit(der.TagSequence)); err != nil {
			return nil, err
		}
	}
	if f, ok, err := r.NextIf(der.ClassContextSpecific, 1); err != nil {
		return nil, err
	} else if ok {
		if e.excluded, err = x509names.DecodeGeneralSubtrees(f.Implicit(der.TagSequence)); err != nil {
			return nil, err
		}
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	if e.permitted == nil && e.excluded == nil {
		return nil, der.Invalidf("NameConstraints: no subtrees")
	}
	e.keep(value)
	return e, nil
}

func (e *NameConstraints) encodeValue(b *der.Builder) {
	if len(e.permitted) == 0 && len(e.excluded) == 0 {
		b.SetError(der.Invalidf("NameConstraints: no subtrees"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		if len(e.permitted) > 0 {
			e.permitted.EncodeImplicit(b, 0)
		}
		if len(e.excluded) > 0 {
			e.excluded.EncodeImplicit(b, 1)
		}
	})
}

func (e *NameConstraints) rederive() error { return e.derive(e.encodeValue) }

func (e *NameConstraints) Name() string { return NameNameConstraints }

// Permitted returns the permitted subtrees, or nil.
func (e *NameConstraints) Permitted() x509names.GeneralSubtrees { return slices.Clone(e.permitted) }

// Excluded returns the excluded subtrees, or nil.
func (e *NameConstraints) Excluded() x509names.GeneralSubtrees { return slices.Clone(e.excluded) }

// within reports whether name lies in the subtree rooted at base. Pairs of
// names that only support exact matching are outside unless equal.
func within(name, base x509names.GeneralName) (bool, error) {
	c, err := name.Constrains(base)
	switch {
	case errors.Is(err, x509names.ErrUnsupported):
		return false, nil
	case err != nil:
		return false, err
	}
	return c == x509names.Match || c == x509names.Narrows, nil
}

// Permits checks name against the constraints. A name inside an excluded
// subtree is refused. When permitted subtrees of the same name type exist,
// the name must fall inside one of them.
func (e *NameConstraints) Permits(name x509names.GeneralName) (bool, error) {
	for _, s := range e.excluded {
		in, err := within(name, s.Name)
		if err != nil {
			return false, err
		}
		if in {
			return false, nil
		}
	}
	sameType := false
	for _, s := range e.permitted {
		if s.Name.Type() != name.Type() {
			continue
		}
		sameType = true
		in, err := within(name, s.Name)
		if err != nil {
			return false, err
		}
		if in {
			return true, nil
		}
	}
	return !sameType, nil
}

func subtreesField(name string, dst func(e *NameConstraints) *x509names.GeneralSubtrees) field[NameConstraints] {
	return field[NameConstraints]{
		get: func(e *NameConstraints) any { return slices.Clone(*dst(e)) },
		set: func(e *NameConstraints, v any) error {
			s, err := as[x509names.GeneralSubtrees](name, v)
			if err != nil {
				return err
			}
			*dst(e) = slices.Clone(s)
			return nil
		},
		del: func(e *NameConstraints) error { *dst(e) = nil; return nil },
	}
}

var nameConstraintsFields = newFields(NameNameConstraints, []string{AttrPermittedSubtrees, AttrExcludedSubtrees}, map[string]field[NameConstraints]{
	AttrPermittedSubtrees: subtreesField(AttrPermittedSubtrees, func(e *NameConstraints) *x509names.GeneralSubtrees { return &e.permitted }),
	AttrExcludedSubtrees:  subtreesField(AttrExcludedSubtrees, func(e *NameConstraints) *x509names.GeneralSubtrees { return &e.excluded }),
})

func (e *NameConstraints) Get(name string) (any, error) { return nameConstraintsFields.get(e, name) }
func (e *NameConstraints) Set(name string, v any) error {
	return nameConstraintsFields.set(e, name, v, e.rederive)
}
func (e *NameConstraints) Delete(name string) error {
	return nameConstraintsFields.delete(e, name, e.rederive)
}
func (e *NameConstraints) AttributeNames() []string { return nameConstraintsFields.attributeNames() }

func (e *NameConstraints) String() string {
	s := header(e) + "NameConstraints: [\n"
	if len(e.permitted) > 0 {
		s += "  Permitted:" + e.permitted.String() + "\n"
	}
	if len(e.excluded) > 0 {
		s += "  Excluded:" + e.excluded.String() + "\n"
	}
	return s + "]\n"
}
