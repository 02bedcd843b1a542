// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509attrs implements the mandatory fields of a certificate body:
// version, serial number, validity period, algorithm identifier, subject and
// issuer names, and the subject public key wrapper, together with the key
// identifier derived from that key.
//
// [DecodeTBSCertificate] and [DecodeTBSCertList] split a to-be-signed
// structure into these fields and hand back the extensions field undecoded, so
// the extension codec can process it.
package x509attrs
