// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509ext

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509attrs "github.com/H0llyW00dzZ/x509-der-codec/src/x509/attrs"
)

// PrivateKeyUsagePeriod attribute names.
const (
	AttrNotBefore = "not_before"
	AttrNotAfter  = "not_after"
)

// PrivateKeyUsagePeriod bounds the use of the private key. A zero time is an
// absent bound; at least one bound is present.
type PrivateKeyUsagePeriod struct {
	extension
	notBefore time.Time
	notAfter  time.Time
}

// NewPrivateKeyUsagePeriod builds the extension. Pass a zero time to omit a
// bound. Bounds keep sub-second precision for Valid; the encoding carries
// whole seconds.
func NewPrivateKeyUsagePeriod(critical bool, notBefore, notAfter time.Time) (*PrivateKeyUsagePeriod, error) {
	e := &PrivateKeyUsagePeriod{extension: extension{id: slices.Clone(OIDPrivateKeyUsagePeriod), critical: critical}}
	e.notBefore, e.notAfter = inUTC(notBefore), inUTC(notAfter)
	if err := e.derive(e.encodeValue); err != nil {
		return nil, err
	}
	return e, nil
}

func inUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// ParsePrivateKeyUsagePeriod decodes an extnValue.
func ParsePrivateKeyUsagePeriod(critical bool, value []byte) (*PrivateKeyUsagePeriod, error) {
	v, err := decodeValue(NamePrivateKeyUsage, value)
	if err != nil {
		return nil, err
	}
	r, err := v.Sequence()
	if err != nil {
		return nil, err
	}
	e := &PrivateKeyUsagePeriod{extension: extension{id: slices.Clone(OIDPrivateKeyUsagePeriod), critical: critical}}
	var seen [2]bool
	for !r.Empty() {
		f, err := r.Next()
		if err != nil {
			return nil, err
		}
		if f.Class != der.ClassContextSpecific || f.Tag > 1 || f.Constructed {
			return nil, der.Malformedf("PrivateKeyUsagePeriod: unexpected %s", f)
		}
		if seen[f.Tag] {
			return nil, der.Invalidf("PrivateKeyUsagePeriod: duplicate [%d]", f.Tag)
		}
		seen[f.Tag] = true
		t, err := f.Implicit(der.TagGeneralizedTime).GeneralizedTime()
		if err != nil {
			return nil, err
		}
		if f.Tag == 0 {
			e.notBefore = t
		} else {
			e.notAfter = t
		}
	}
	if !seen[0] && !seen[1] {
		return nil, der.Invalidf("PrivateKeyUsagePeriod: no bounds")
	}
	e.keep(value)
	return e, nil
}

func (e *PrivateKeyUsagePeriod) encodeValue(b *der.Builder) {
	if e.notBefore.IsZero() && e.notAfter.IsZero() {
		b.SetError(der.Invalidf("PrivateKeyUsagePeriod: no bounds"))
		return
	}
	b.AddSequence(func(b *der.Builder) {
		if !e.notBefore.IsZero() {
			b.AddImplicit(0, func(b *der.Builder) { b.AddGeneralizedTime(e.notBefore) })
		}
		if !e.notAfter.IsZero() {
			b.AddImplicit(1, func(b *der.Builder) { b.AddGeneralizedTime(e.notAfter) })
		}
	})
}

func (e *PrivateKeyUsagePeriod) Name() string { return NamePrivateKeyUsage }

// NotBefore returns the lower bound, or the zero time.
func (e *PrivateKeyUsagePeriod) NotBefore() time.Time { return e.notBefore }

// NotAfter returns the upper bound, or the zero time.
func (e *PrivateKeyUsagePeriod) NotAfter() time.Time { return e.notAfter }

// Valid checks now against the present bounds. The bounds themselves are valid.
func (e *PrivateKeyUsagePeriod) Valid(now time.Time) error {
	if !e.notBefore.IsZero() && now.Before(e.notBefore) {
		return fmt.Errorf("%w: private key usable from %s", x509attrs.ErrNotYetValid, e.notBefore.Format(time.RFC3339))
	}
	if !e.notAfter.IsZero() && now.After(e.notAfter) {
		return fmt.Errorf("%w: private key usable until %s", x509attrs.ErrExpired, e.notAfter.Format(time.RFC3339))
	}
	return nil
}

func timeField(name string, dst func(e *PrivateKeyUsagePeriod) *time.Time) field[PrivateKeyUsagePeriod] {
	return field[PrivateKeyUsagePeriod]{
		get: func(e *PrivateKeyUsagePeriod) any { return *dst(e) },
		set: func(e *PrivateKeyUsagePeriod, v any) error {
			t, err := as[time.Time](name, v)
			if err != nil {
				return err
			}
			*dst(e) = inUTC(t)
			return nil
		},
		del: func(e *PrivateKeyUsagePeriod) error { *dst(e) = time.Time{}; return nil },
	}
}

var privateKeyUsageFields = newFields(NamePrivateKeyUsage, []string{AttrNotBefore, AttrNotAfter}, map[string]field[PrivateKeyUsagePeriod]{
	AttrNotBefore: timeField(AttrNotBefore, func(e *PrivateKeyUsagePeriod) *time.Time { return &e.notBefore }),
	AttrNotAfter:  timeField(AttrNotAfter, func(e *PrivateKeyUsagePeriod) *time.Time { return &e.notAfter }),
})

func (e *PrivateKeyUsagePeriod) rederive() error { return e.derive(e.encodeValue) }

func (e *PrivateKeyUsagePeriod) Get(name string) (any, error) {
	return privateKeyUsageFields.get(e, name)
}
func (e *PrivateKeyUsagePeriod) Set(name string, v any) error {
	return privateKeyUsageFields.set(e, name, v, e.rederive)
}
func (e *PrivateKeyUsagePeriod) Delete(name string) error {
	return privateKeyUsageFields.delete(e, name, e.rederive)
}
func (e *PrivateKeyUsagePeriod) AttributeNames() []string {
	return privateKeyUsageFields.attributeNames()
}

func (e *PrivateKeyUsagePeriod) String() string {
	var parts []string
	if !e.notBefore.IsZero() {
		parts = append(parts, "From: "+e.notBefore.Format(time.RFC3339))
	}
	if !e.notAfter.IsZero() {
		parts = append(parts, "To: "+e.notAfter.Format(time.RFC3339))
	}
	return header(e) + "PrivateKeyUsage: [\n" + strings.Join(parts, ", ") + "]\n"
}
