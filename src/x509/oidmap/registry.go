// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package oidmap

import (
	"encoding/asn1"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrDuplicate is returned when a name or identifier is already registered.
	ErrDuplicate = errors.New("oidmap: already registered")
	// ErrInvalid is returned for an empty name or an identifier with fewer than two arcs.
	ErrInvalid = errors.New("oidmap: invalid registration")
)

// Entry is one registered mapping.
type Entry[T any] struct {
	Name    string
	OID     asn1.ObjectIdentifier
	Handler T
}

// Registry maps object identifiers to named handlers of type T.
//
// The zero value is not usable; create one with [New].
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Registry[T any] struct {
	mu     sync.RWMutex
	byOID  map[string]Entry[T]
	byName map[string]string
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{
		byOID:  make(map[string]Entry[T]),
		byName: make(map[string]string),
	}
}

// Register binds name and oid to h. It fails with [ErrDuplicate] if either the
// name or the identifier is already bound.
func (r *Registry[T]) Register(name string, oid asn1.ObjectIdentifier, h T) error {
	if strings.TrimSpace(name) == "" || len(oid) < 2 {
		return fmt.Errorf("%w: name %q, oid %v", ErrInvalid, name, oid)
	}
	key := oid.String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byOID[key]; ok {
		return fmt.Errorf("%w: %s is bound to %s", ErrDuplicate, key, prev.Name)
	}
	if prev, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %s is bound to %s", ErrDuplicate, name, prev)
	}
	r.byOID[key] = Entry[T]{Name: name, OID: slices.Clone(oid), Handler: h}
	r.byName[name] = key
	return nil
}

// MustRegister is like [Registry.Register] but panics on error. It is meant for
// package initialization of built-in mappings.
func (r *Registry[T]) MustRegister(name string, oid asn1.ObjectIdentifier, h T) {
	if err := r.Register(name, oid, h); err != nil {
		panic(err)
	}
}

// Lookup returns the entry bound to oid.
func (r *Registry[T]) Lookup(oid asn1.ObjectIdentifier) (Entry[T], bool) {
	return r.lookupKey(oid.String())
}

func (r *Registry[T]) lookupKey(key string) (Entry[T], bool) {
	r.mu.RLock()
	e, ok := r.byOID[key]
	r.mu.RUnlock()
	return e, ok
}

// LookupName returns the entry registered under name.
func (r *Registry[T]) LookupName(name string) (Entry[T], bool) {
	r.mu.RLock()
	key, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return Entry[T]{}, false
	}
	return r.lookupKey(key)
}

// NameOf returns the registered name of oid, or its dotted form when unknown.
func (r *Registry[T]) NameOf(oid asn1.ObjectIdentifier) string {
	key := oid.String()
	if e, ok := r.lookupKey(key); ok {
		return e.Name
	}
	return key
}

// OIDOf returns the identifier registered under name.
func (r *Registry[T]) OIDOf(name string) (asn1.ObjectIdentifier, bool) {
	e, ok := r.LookupName(name)
	if !ok {
		return nil, false
	}
	return e.OID, true
}

// Entries returns a snapshot of every mapping, sorted by name.
func (r *Registry[T]) Entries() []Entry[T] {
	r.mu.RLock()
	out := make([]Entry[T], 0, len(r.byOID))
	for _, e := range r.byOID {
		out = append(out, e)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Entry[T]) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Len returns the number of mappings.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOID)
}
