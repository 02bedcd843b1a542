// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509names implements the GeneralName family of [RFC 5280] and the
// X.500 distinguished names it embeds.
//
// Every variant satisfies the sealed [GeneralName] interface. The interface
// carries the operations a name-constraints engine needs: equality with a
// matching hash key, the [Constraint] relation between two names, and the
// subtree depth used for path bookkeeping.
//
// Constrains is receiver relative. For names a and b:
//
//	a.Constrains(b) == Narrows // a lies within the subtree rooted at b
//	a.Constrains(b) == Widens  // b lies within the subtree rooted at a
//
// so a leaf name is tested against a permitted or excluded base with
// leaf.Constrains(base).
//
// Variants without a naming hierarchy (other names, X.400 addresses, EDI party
// names and registered identifiers) only support exact matching; comparing two
// different names of such a variant returns [ErrUnsupported].
//
// [RFC 5280]: https://www.rfc-editor.org/rfc/rfc5280#section-4.2.1.6
package x509names
