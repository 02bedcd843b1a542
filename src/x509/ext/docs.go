// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509ext implements the certificate and CRL extensions defined by
// RFC 5280, along with a few widely deployed private ones, and the containers
// that hold them.
//
// Every extension type is built one of two ways. A NewX constructor takes the
// typed fields and derives the DER value immediately. A ParseX function takes
// the criticality flag and the raw extnValue bytes, decodes them eagerly, and
// keeps those bytes unchanged so re-encoding is byte exact.
//
// Typed extensions also implement [Attributes], a small get/set/delete
// protocol keyed by attribute name. Set and Delete re-derive the encoded
// value before they return and restore the previous state on failure, so an
// extension never carries stale bytes.
//
// Decoding dispatches on the extension OID through a registry that other
// packages may extend at runtime with [Register] or [RegisterRaw]. OIDs with
// no handler decode as [*RawExtension].
//
// Extension values are not safe for concurrent mutation. The registry is.
//
// Example:
//
//	exts, err := x509ext.ParseCRLExtensions(tbs.Extensions.Marshal())
//	if err != nil {
//		return err
//	}
//	if exts.HasUnsupportedCriticalExtension() {
//		return errors.New("unsupported critical extension")
//	}
//	if ext, ok := exts.Get(x509ext.NameCRLNumber); ok {
//		fmt.Println(ext.(*x509ext.CRLNumber).Number())
//	}
package x509ext
