// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509attrs

import (
	"fmt"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
)

// Validity is a certificate validity period. Both bounds are inclusive.
type Validity struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// NewValidity converts both bounds to UTC. Sub-second precision is kept
// for Valid and dropped by Encode.
func NewValidity(notBefore, notAfter time.Time) Validity {
	return Validity{
		NotBefore: notBefore.UTC(),
		NotAfter:  notAfter.UTC(),
	}
}

// Encode writes the Validity SEQUENCE with whole seconds. Each bound
// independently uses UTCTime before 2050 and GeneralizedTime from 2050 on.
func (v Validity) Encode(b *der.Builder) {
	b.AddSequence(func(b *der.Builder) {
		b.AddTime(v.NotBefore)
		b.AddTime(v.NotAfter)
	})
}

// DecodeValidity decodes a Validity SEQUENCE.
func DecodeValidity(v der.Value) (Validity, error) {
	r, err := v.Sequence()
	if err != nil {
		return Validity{}, err
	}
	var out Validity
	for _, dst := range []*time.Time{&out.NotBefore, &out.NotAfter} {
		tv, err := r.Next()
		if err != nil {
			return Validity{}, err
		}
		if *dst, err = tv.Time(); err != nil {
			return Validity{}, err
		}
	}
	if err := r.Finish(); err != nil {
		return Validity{}, err
	}
	return out, nil
}

// Valid checks that now lies within the period. The bounds themselves are valid.
func (v Validity) Valid(now time.Time) error {
	if now.Before(v.NotBefore) {
		return fmt.Errorf("%w: now %s, not before %s", ErrNotYetValid, now.UTC().Format(time.RFC3339), v.NotBefore.Format(time.RFC3339))
	}
	if now.After(v.NotAfter) {
		return fmt.Errorf("%w: now %s, not after %s", ErrExpired, now.UTC().Format(time.RFC3339), v.NotAfter.Format(time.RFC3339))
	}
	return nil
}

func (v Validity) String() string {
	return fmt.Sprintf("[From: %s, To: %s]", v.NotBefore.Format(time.RFC3339), v.NotAfter.Format(time.RFC3339))
}
