// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package oidmap provides a concurrency-safe registry binding object
// identifiers to names and handlers.
//
// The extension codec uses a [Registry] of decoder factories and the general
// name codec uses one of other-name value decoders. Lookups are hash-keyed by
// the dotted form of the identifier and take a read lock only, so certificates
// may be decoded from many goroutines while new mappings are registered.
// Registration rejects duplicates in both directions.
package oidmap
