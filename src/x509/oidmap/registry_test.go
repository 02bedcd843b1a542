// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package oidmap_test

import (
	"encoding/asn1"
	"fmt"
	"sync"
	"testing"

	"github.com/H0llyW00dzZ/x509-der-codec/src/x509/oidmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	oidBasicConstraints = asn1.ObjectIdentifier{2, 5, 29, 19}
	oidKeyUsage         = asn1.ObjectIdentifier{2, 5, 29, 15}
)

func TestRegistry(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Lookup in both directions",
			testFunc: func(t *testing.T) {
				r := oidmap.New[int]()
				require.NoError(t, r.Register("BasicConstraints", oidBasicConstraints, 19))

				e, ok := r.Lookup(asn1.ObjectIdentifier{2, 5, 29, 19})
				require.True(t, ok)
				assert.Equal(t, "BasicConstraints", e.Name)
				assert.Equal(t, 19, e.Handler)

				oid, ok := r.OIDOf("BasicConstraints")
				require.True(t, ok)
				assert.True(t, oid.Equal(oidBasicConstraints))

				e, ok = r.LookupName("BasicConstraints")
				require.True(t, ok)
				assert.Equal(t, 19, e.Handler)
			},
		},
		{
			name: "Unknown identifiers",
			testFunc: func(t *testing.T) {
				r := oidmap.New[string]()
				_, ok := r.Lookup(oidKeyUsage)
				assert.False(t, ok)
				_, ok = r.OIDOf("KeyUsage")
				assert.False(t, ok)
				assert.Equal(t, "2.5.29.15", r.NameOf(oidKeyUsage))
			},
		},
		{
			name: "Duplicates rejected",
			testFunc: func(t *testing.T) {
				r := oidmap.New[int]()
				require.NoError(t, r.Register("KeyUsage", oidKeyUsage, 1))

				err := r.Register("Other", oidKeyUsage, 2)
				assert.ErrorIs(t, err, oidmap.ErrDuplicate)

				err = r.Register("KeyUsage", oidBasicConstraints, 3)
				assert.ErrorIs(t, err, oidmap.ErrDuplicate)

				e, _ := r.Lookup(oidKeyUsage)
				assert.Equal(t, 1, e.Handler, "first registration wins")
				assert.Equal(t, 1, r.Len())
			},
		},
		{
			name: "Invalid registrations",
			testFunc: func(t *testing.T) {
				r := oidmap.New[int]()
				assert.ErrorIs(t, r.Register(" ", oidKeyUsage, 0), oidmap.ErrInvalid)
				assert.ErrorIs(t, r.Register("Short", asn1.ObjectIdentifier{2}, 0), oidmap.ErrInvalid)
				assert.Panics(t, func() { r.MustRegister("", nil, 0) })
			},
		},
		{
			name: "Stored identifier is not aliased",
			testFunc: func(t *testing.T) {
				r := oidmap.New[int]()
				oid := asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 20, 2, 3}
				require.NoError(t, r.Register("UPN", oid, 0))
				oid[len(oid)-1] = 99

				_, ok := r.LookupName("UPN")
				require.True(t, ok)
				assert.Equal(t, "UPN", r.NameOf(asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 20, 2, 3}))
			},
		},
		{
			name: "Entries sorted by name",
			testFunc: func(t *testing.T) {
				r := oidmap.New[int]()
				r.MustRegister("b", asn1.ObjectIdentifier{1, 2}, 0)
				r.MustRegister("a", asn1.ObjectIdentifier{1, 3}, 0)
				r.MustRegister("c", asn1.ObjectIdentifier{1, 1}, 0)

				var names []string
				for _, e := range r.Entries() {
					names = append(names, e.Name)
				}
				assert.Equal(t, []string{"a", "b", "c"}, names)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := oidmap.New[int]()
	r.MustRegister("KeyUsage", oidKeyUsage, 15)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, r.Register(fmt.Sprintf("custom-%d", i), asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, i + 1}, i))
		}(i)
		go func() {
			defer wg.Done()
			for range 500 {
				e, ok := r.Lookup(oidKeyUsage)
				assert.True(t, ok)
				assert.Equal(t, 15, e.Handler)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 17, r.Len())
}
