// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package der implements the Distinguished Encoding Rules subset of ASN.1 that
// X.509 certificates and CRLs are written in.
//
// Decoding works on [Value], a single tag-length-value record whose constructed
// content is walked lazily through a [Reader]. Encoding goes through [Builder],
// a thin layer over [cryptobyte.Builder] that emits minimal definite lengths and
// canonical primitive encodings. Only DER is accepted: indefinite lengths,
// non-minimal lengths and integers, high tag numbers and trailing bytes are all
// reported as [ErrMalformed].
//
// IMPLICIT tagging is expressed by re-tagging a decoded value before reading it
// as its underlying universal type:
//
//	serial, err := v.Implicit(der.TagInteger).BigInt()
//
// and on the encoding side by [Builder.AddImplicit].
//
// Times follow the PKIX profile: [Builder.AddTime] emits UTCTime for instants in
// 1950 through 2049 and GeneralizedTime otherwise.
//
// [cryptobyte.Builder]: https://pkg.go.dev/golang.org/x/crypto/cryptobyte#Builder
package der
