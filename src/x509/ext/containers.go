// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// extensionSet is an insertion-ordered collection keyed by extension name.
type extensionSet struct {
	keys []string
	m    map[string]Extension
}

func (s *extensionSet) init() {
	if s.m == nil {
		s.m = make(map[string]Extension)
	}
}

// add inserts ext, rejecting a nil extension and a second extension with
// the same key.
func (s *extensionSet) add(ext Extension) error {
	if ext == nil {
		return fmt.Errorf("%w: nil extension", ErrAttributeValue)
	}
	s.init()
	key := ext.Name()
	if _, ok := s.m[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateExtension, key)
	}
	s.keys = append(s.keys, key)
	s.m[key] = ext
	return nil
}

// Get returns the extension stored under name, or under a dotted OID for
// extensions without a registered name.
func (s *extensionSet) Get(name string) (Extension, bool) {
	ext, ok := s.m[name]
	return ext, ok
}

// Set stores ext under its name, replacing any extension already there while
// keeping its position. A nil ext is ignored.
func (s *extensionSet) Set(ext Extension) {
	if ext == nil {
		return
	}
	s.init()
	key := ext.Name()
	if _, ok := s.m[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.m[key] = ext
}

// Add stores ext under its name. It fails with ErrDuplicateExtension if the
// name is taken.
func (s *extensionSet) Add(ext Extension) error { return s.add(ext) }

// Delete removes the extension stored under name and reports whether it was
// present.
func (s *extensionSet) Delete(name string) bool {
	if _, ok := s.m[name]; !ok {
		return false
	}
	delete(s.m, name)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == name })
	return true
}

// All returns the extensions in insertion order.
func (s *extensionSet) All() []Extension {
	out := make([]Extension, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.m[k]
	}
	return out
}

// Len returns the number of extensions.
func (s *extensionSet) Len() int { return len(s.keys) }

// HasUnsupportedCriticalExtension reports whether a critical extension has no
// decoder that understood it.
func (s *extensionSet) HasUnsupportedCriticalExtension() bool {
	for _, ext := range s.m {
		if _, raw := ext.(*RawExtension); raw && ext.Critical() {
			return true
		}
	}
	return false
}

func (s *extensionSet) equal(o *extensionSet) bool {
	if len(s.m) != len(o.m) {
		return false
	}
	for k, ext := range s.m {
		other, ok := o.m[k]
		if !ok {
			return false
		}
		a, errA := Marshal(ext)
		b, errB := Marshal(other)
		if errA != nil || errB != nil || !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}

// encode writes the Extensions SEQUENCE, wrapped in [tag] EXPLICIT when
// explicit is set.
func (s *extensionSet) encode(b *der.Builder, tag uint8, explicit bool) {
	if len(s.keys) == 0 {
		b.SetError(der.Invalidf("Extensions must contain at least one extension"))
		return
	}
	body := func(b *der.Builder) {
		b.AddSequence(func(b *der.Builder) {
			for _, k := range s.keys {
				s.m[k].Encode(b)
			}
		})
	}
	if explicit {
		b.AddExplicit(tag, body)
		return
	}
	body(b)
}

// unwrap peeks at the leading identifier octet and strips a [tag] EXPLICIT
// wrapper when present.
func unwrap(b []byte, tag uint8) (der.Value, error) {
	v, err := der.Decode(b)
	if err != nil {
		return der.Value{}, err
	}
	if len(b) > 0 && b[0] == 0xa0|tag {
		r, _ := v.Reader()
		inner, err := r.Next()
		if err != nil {
			return der.Value{}, err
		}
		if err := r.Finish(); err != nil {
			return der.Value{}, err
		}
		return inner, nil
	}
	return v, nil
}

// decodeInto reads an Extensions SEQUENCE. lenient keeps non-critical
// extensions whose registered decoder fails as raw entries.
func (s *extensionSet) decodeInto(v der.Value, lenient bool) error {
	r, err := v.Sequence()
	if err != nil {
		return err
	}
	if r.Empty() {
		return der.Invalidf("Extensions must contain at least one extension")
	}
	for !r.Empty() {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		ext, err := DecodeExtension(ev)
		if err != nil {
			if !lenient {
				return err
			}
			id, critical, value, rerr := decodeRecord(ev)
			if rerr != nil || critical {
				return err
			}
			ext = newRawExtension(NameOf(id), id, critical, value, true)
		}
		if err := s.add(ext); err != nil {
			return err
		}
	}
	return nil
}

// CRLExtensions holds the extensions of a CRL or of one CRL entry.
type CRLExtensions struct{ extensionSet }

// NewCRLExtensions returns an empty container.
func NewCRLExtensions() *CRLExtensions { return &CRLExtensions{} }

// ParseCRLExtensions decodes an Extensions SEQUENCE, optionally wrapped in
// the [0] EXPLICIT tag of TBSCertList.
func ParseCRLExtensions(b []byte) (*CRLExtensions, error) {
	v, err := unwrap(b, 0)
	if err != nil {
		return nil, err
	}
	return DecodeCRLExtensions(v)
}

// DecodeCRLExtensions decodes an unwrapped Extensions SEQUENCE.
func DecodeCRLExtensions(v der.Value) (*CRLExtensions, error) {
	c := NewCRLExtensions()
	if err := c.decodeInto(v, false); err != nil {
		return nil, err
	}
	return c, nil
}

// Equal reports whether both containers hold the same extensions, in any
// order.
func (c *CRLExtensions) Equal(o *CRLExtensions) bool { return c.equal(&o.extensionSet) }

// Encode writes the extensions. explicit adds the [0] EXPLICIT wrapper used
// by the crlExtensions field; entry extensions are written bare.
func (c *CRLExtensions) Encode(b *der.Builder, explicit bool) { c.encode(b, 0, explicit) }

// Marshal returns the DER encoding, see Encode.
func (c *CRLExtensions) Marshal(explicit bool) ([]byte, error) {
	return der.Marshal(func(b *der.Builder) { c.Encode(b, explicit) })
}

// CertificateExtensions holds the extensions of a certificate.
type CertificateExtensions struct {
	extensionSet
}

// NewCertificateExtensions returns an empty container.
func NewCertificateExtensions() *CertificateExtensions { return &CertificateExtensions{} }

// ParseCertificateExtensions decodes an Extensions SEQUENCE, optionally
// wrapped in the [3] EXPLICIT tag of TBSCertificate. A non-critical
// extension whose decoder fails is kept raw and reported by Unparseable; a
// critical one aborts decoding.
func ParseCertificateExtensions(b []byte) (*CertificateExtensions, error) {
	v, err := unwrap(b, 3)
	if err != nil {
		return nil, err
	}
	return DecodeCertificateExtensions(v)
}

// DecodeCertificateExtensions decodes an unwrapped Extensions SEQUENCE.
func DecodeCertificateExtensions(v der.Value) (*CertificateExtensions, error) {
	c := NewCertificateExtensions()
	if err := c.decodeInto(v, true); err != nil {
		return nil, err
	}
	return c, nil
}

// Unparseable returns the registered extensions whose values failed to
// decode, in order.
func (c *CertificateExtensions) Unparseable() []*RawExtension {
	var out []*RawExtension
	for _, k := range c.keys {
		if raw, ok := c.m[k].(*RawExtension); ok && raw.Failed() {
			out = append(out, raw)
		}
	}
	return out
}

// Equal reports whether both containers hold the same extensions, in any
// order.
func (c *CertificateExtensions) Equal(o *CertificateExtensions) bool {
	return c.equal(&o.extensionSet)
}

// Encode writes the extensions, with the [3] EXPLICIT wrapper when explicit
// is set.
func (c *CertificateExtensions) Encode(b *der.Builder, explicit bool) { c.encode(b, 3, explicit) }

// Marshal returns the DER encoding, see Encode.
func (c *CertificateExtensions) Marshal(explicit bool) ([]byte, error) {
	return der.Marshal(func(b *der.Builder) { c.Encode(b, explicit) })
}
