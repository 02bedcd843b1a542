// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"fmt"
	"slices"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// BasicConstraints attribute names.
const (
	AttrIsCA    = "is_ca"
	AttrPathLen = "path_len"
)

// BasicConstraints identifies CA certificates and bounds the certification
// path below them.
//
// PathLen is -1 for an end entity and [Unlimited] for a CA without a limit.
type BasicConstraints struct {
	extension
	ca      bool
	pathLen int
}

// NewBasicConstraints builds the extension. A negative pathLen on a CA means
// no limit. pathLen is ignored when ca is false.
func NewBasicConstraints(critical, ca bool, pathLen int) (*BasicConstraints, error) {
	e := &BasicConstraints{extension: extension{id: slices.Clone(OIDBasicConstraints), critical: critical}}
	e.setCA(ca, pathLen)
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *BasicConstraints) setCA(ca bool, pathLen int) {
	switch {
	case !ca:
		e.ca, e.pathLen = false, -1
	case pathLen < 0:
		e.ca, e.pathLen = true, Unlimited
	default:
		e.ca, e.pathLen = true, pathLen
	}
}

// ParseBasicConstraints decodes an extnValue. An INTEGER first element (a
// path length without the cA flag) is rejected rather than read as an end
// entity.
func ParseBasicConstraints(critical bool, value []byte) (*BasicConstraints, error) {
	v, err := decodeValue(NameBasicConstraints, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &BasicConstraints{extension: extension{id: slices.Clone(OIDBasicConstraints), critical: critical}, pathLen: -1}
	if !r.Empty() {
		first, err := r.Peek()
		if err != nil {
			return nil, err
		}
		switch {
		case first.Is(der.TagBoolean):
			_, _ = r.Next()
			if e.ca, err = first.Boolean(); err != nil {
				return nil, err
			}
		case first.Is(der.TagInteger):
			return nil, der.Invalidf("pathLenConstraint without cA")
		default:
			return nil, der.Malformedf("BasicConstraints: unexpected %s", first)
		}
	}
	if e.ca {
		e.pathLen = Unlimited
		if lv, ok, err := r.NextIf(der.ClassUniversal, der.TagInteger); err != nil {
			return nil, err
		} else if ok {
			n, err := lv.Int64()
			if err != nil {
				return nil, err
			}
			// An explicit MaxInt32 is kept as given and reads as Unlimited.
			if n < 0 || n > Unlimited {
				return nil, der.Invalidf("pathLenConstraint %d", n)
			}
			e.pathLen = int(n)
		}
	}
	if err := r.Finish(); err != nil {
		return nil, err
	}
	e.keep(value)
	return e, nil
}

func (e *BasicConstraints) encodeValue(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		if !e.ca {
			return
		}
		b.AddBoolean(true)
		if e.pathLen >= 0 && e.pathLen != Unlimited {
			b.AddInt64(int64(e.pathLen))
		}
	})
}

func (e *BasicConstraints) Name() string { return NameBasicConstraints }

// IsCA reports the cA flag.
func (e *BasicConstraints) IsCA() bool { return e.ca }

// PathLen returns -1 for an end entity, [Unlimited] for an unbounded CA.
func (e *BasicConstraints) PathLen() int { return e.pathLen }

var basicConstraintsFields = newFields(NameBasicConstraints, []string{AttrIsCA, AttrPathLen}, map[string]field[BasicConstraints]{
	AttrIsCA: {
		get: func(e *BasicConstraints) any { return e.ca },
		set: func(e *BasicConstraints, v any) error {
			ca, err := as[bool](AttrIsCA, v)
			if err != nil {
				return err
			}
			if ca != e.ca {
				e.setCA(ca, -1)
			}
			return nil
		},
		del: func(e *BasicConstraints) error { e.setCA(false, -1); return nil },
	},
	AttrPathLen: {
		get: func(e *BasicConstraints) any { return e.pathLen },
		set: func(e *BasicConstraints, v any) error {
			n, err := as[int](AttrPathLen, v)
			if err != nil {
				return err
			}
			if !e.ca {
				return attributeValue(AttrPathLen, "not a CA")
			}
			e.setCA(true, n)
			return nil
		},
		del: func(e *BasicConstraints) error {
			if e.ca {
				e.pathLen = Unlimited
			}
			return nil
		},
	},
})

func (e *BasicConstraints) rederive() error { return e.derive(e.encodeValue) }

func (e *BasicConstraints) Get(name string) (any, error) { return basicConstraintsFields.get(e, name) }
func (e *BasicConstraints) Set(name string, v any) error {
	return basicConstraintsFields.set(e, name, v, e.rederive)
}
func (e *BasicConstraints) Delete(name string) error {
	return basicConstraintsFields.delete(e, name, e.rederive)
}
func (e *BasicConstraints) AttributeNames() []string { return basicConstraintsFields.attributeNames() }

func (e *BasicConstraints) String() string {
	s := header(e) + "BasicConstraints:[\n  CA:" + fmt.Sprint(e.ca) + "\n"
	switch {
	case !e.ca:
		s += "  PathLen: undefined\n"
	case e.pathLen == Unlimited:
		s += "  PathLen: no limit\n"
	default:
		s += fmt.Sprintf("  PathLen:%d\n", e.pathLen)
	}
	return s + "]\n"
}
