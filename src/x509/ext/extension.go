// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"bytes"
	"encoding/asn1"
	"fmt"
	"math"
	"slices"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// Unlimited is the path length and skip count meaning "no limit".
const Unlimited = math.MaxInt32

// Extension is a decoded or constructed certificate or CRL extension.
type Extension interface {
	// ID returns the extension OID.
	ID() asn1.ObjectIdentifier
	// Name returns the registered name, or the dotted OID for unknown
	// extensions.
	Name() string
	// Critical reports the criticality flag.
	Critical() bool
	// Value returns a copy of the DER encoded extnValue payload.
	Value() []byte
	// Encode writes the complete Extension SEQUENCE.
	Encode(b *der.Builder)
	String() string
}

// Attributes is the named-field protocol implemented by typed extensions.
type Attributes interface {
	Get(name string) (any, error)
	Set(name string, value any) error
	Delete(name string) error
	AttributeNames() []string
}

// Marshal returns the DER encoding of the Extension SEQUENCE.
func Marshal(ext Extension) ([]byte, error) { return der.Marshal(ext.Encode) }

// extension carries the fields shared by every extension type.
type extension struct {
	id       asn1.ObjectIdentifier
	critical bool
	value    []byte
}

func (e *extension) ID() asn1.ObjectIdentifier { return slices.Clone(e.id) }

func (e *extension) Critical() bool { return e.critical }

func (e *extension) Value() []byte { return bytes.Clone(e.value) }

func (e *extension) Encode(b *der.Builder) { encodeExtension(b, e.id, e.critical, e.value) }

// derive replaces the cached value with the output of f.
func (e *extension) derive(f func(b *der.Builder)) error {
	v, err := der.Marshal(f)
	if err != nil {
		return err
	}
	e.value = v
	return nil
}

// keep records parsed bytes as the cached value.
func (e *extension) keep(value []byte) { e.value = bytes.Clone(value) }

func encodeExtension(b *der.Builder, id asn1.ObjectIdentifier, critical bool, value []byte) {
	b.AddSequence(func(b *der.Builder) {
		b.AddOID(id)
		if critical {
			b.AddBoolean(true)
		}
		b.AddOctetString(value)
	})
}

// header formats the common prefix of String.
func header(ext Extension) string {
	crit := "false"
	if ext.Critical() {
		crit = "true"
	}
	return fmt.Sprintf("ObjectId: %s Criticality=%s\n", ext.ID(), crit)
}

// decodeValue decodes value as a single DER element.
func decodeValue(name string, value []byte) (der.Value, error) {
	v, err := der.Decode(value)
	if err != nil {
		return der.Value{}, fmt.Errorf("x509ext: %s: %w", name, err)
	}
	return v, nil
}

// field is one named attribute of an extension of type T.
type field[T any] struct {
	get func(e *T) any
	set func(e *T, v any) error
	// del resets the field to its absent state. Nil means the field cannot
	// be deleted independently.
	del func(e *T) error
}

// fields is the dispatch table behind an Attributes implementation.
type fields[T any] struct {
	ext   string
	names []string
	m     map[string]field[T]
}

func newFields[T any](ext string, names []string, m map[string]field[T]) fields[T] {
	return fields[T]{ext: ext, names: names, m: m}
}

func (f fields[T]) lookup(name string) (field[T], error) {
	fd, ok := f.m[name]
	if !ok {
		return field[T]{}, unknownAttribute(f.ext, name)
	}
	return fd, nil
}

func (f fields[T]) get(e *T, name string) (any, error) {
	fd, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	return fd.get(e), nil
}

// set applies v and re-derives the value, restoring e on any failure.
func (f fields[T]) set(e *T, name string, v any, rederive func() error) error {
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	saved := *e
	if err := fd.set(e, v); err != nil {
		*e = saved
		return err
	}
	if err := rederive(); err != nil {
		*e = saved
		return fmt.Errorf("%w: %s: %v", ErrAttributeValue, name, err)
	}
	return nil
}

func (f fields[T]) delete(e *T, name string, rederive func() error) error {
	fd, err := f.lookup(name)
	if err != nil {
		return err
	}
	if fd.del == nil {
		return attributeValue(name, "cannot be deleted")
	}
	saved := *e
	if err := fd.del(e); err != nil {
		*e = saved
		return err
	}
	if err := rederive(); err != nil {
		*e = saved
		return fmt.Errorf("%w: %s: %v", ErrAttributeValue, name, err)
	}
	return nil
}

func (f fields[T]) attributeNames() []string { return slices.Clone(f.names) }

// as converts an attribute value to V.
func as[V any](name string, v any) (V, error) {
	out, ok := v.(V)
	if !ok {
		var zero V
		return zero, attributeValue(name, "expected %T, got %T", zero, v)
	}
	return out, nil
}
