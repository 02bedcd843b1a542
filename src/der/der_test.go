// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package der_test

import (
	"bytes"
	encoding_asn1 "encoding/asn1"
	"encoding/hex"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func build(t *testing.T, f func(b *der.Builder)) string {
	t.Helper()
	out, err := der.Marshal(f)
	require.NoError(t, err)
	return hex.EncodeToString(out)
}

func TestDecodeFraming(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, v der.Value)
	}{
		{
			name:  "NULL",
			input: "0500",
			check: func(t *testing.T, v der.Value) {
				assert.True(t, v.Is(der.TagNull))
				assert.NoError(t, v.Null())
			},
		},
		{
			name:  "Long form length",
			input: "0481c8" + hex.EncodeToString(bytes.Repeat([]byte{0xAB}, 200)),
			check: func(t *testing.T, v der.Value) {
				p, err := v.OctetString()
				require.NoError(t, err)
				assert.Len(t, p, 200)
			},
		},
		{
			name:  "Context specific constructed",
			input: "a003020101",
			check: func(t *testing.T, v der.Value) {
				assert.True(t, v.IsContext(0))
				assert.True(t, v.Constructed)
				children, err := v.Children()
				require.NoError(t, err)
				require.Len(t, children, 1)
				n, err := children[0].Int64()
				require.NoError(t, err)
				assert.Equal(t, int64(1), n)
			},
		},
		{name: "Empty input", input: "", wantErr: true},
		{name: "Indefinite length", input: "30800000", wantErr: true},
		{name: "High tag number", input: "1f2100", wantErr: true},
		{name: "Non-minimal long form", input: "048100", wantErr: true},
		{name: "Leading zero length octet", input: "04820005" + "0102030405", wantErr: true},
		{name: "Truncated content", input: "0403aabb", wantErr: true},
		{name: "Truncated length", input: "0482", wantErr: true},
		{name: "Trailing data", input: "050000", wantErr: true},
		{name: "Length too large", input: "0485010000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := der.Decode(mustHex(t, tt.input))
			if tt.wantErr {
				assert.ErrorIs(t, err, der.ErrMalformed)
				return
			}
			require.NoError(t, err)
			tt.check(t, v)
			assert.Equal(t, tt.input, hex.EncodeToString(v.Marshal()))
		})
	}
}

func TestIntegers(t *testing.T) {
	tests := []struct {
		value int64
		want  string
	}{
		{0, "020100"},
		{127, "02017f"},
		{128, "02020080"},
		{256, "02020100"},
		{-1, "0201ff"},
		{-128, "020180"},
		{-129, "0202ff7f"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, build(t, func(b *der.Builder) { b.AddInt64(tt.value) }))

			v, err := der.Decode(mustHex(t, tt.want))
			require.NoError(t, err)
			n, err := v.Int64()
			require.NoError(t, err)
			assert.Equal(t, tt.value, n)

			bn, err := v.BigInt()
			require.NoError(t, err)
			assert.Equal(t, tt.value, bn.Int64())
		})
	}

	t.Run("Redundant leading octets rejected", func(t *testing.T) {
		for _, in := range []string{"02020001", "0202ff80", "0200"} {
			v, err := der.Decode(mustHex(t, in))
			require.NoError(t, err)
			_, err = v.Int64()
			assert.ErrorIs(t, err, der.ErrMalformed, in)
			_, err = v.BigInt()
			assert.ErrorIs(t, err, der.ErrMalformed, in)
		}
	})

	t.Run("Big integer", func(t *testing.T) {
		n, ok := new(big.Int).SetString("00ffeeddccbbaa99887766554433221100", 16)
		require.True(t, ok)
		enc := build(t, func(b *der.Builder) { b.AddBigInt(n) })
		assert.Equal(t, "021100ffeeddccbbaa99887766554433221100", enc)
	})

	t.Run("Nil big integer", func(t *testing.T) {
		_, err := der.Marshal(func(b *der.Builder) { b.AddBigInt(nil) })
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})
}

func TestBoolean(t *testing.T) {
	assert.Equal(t, "0101ff", build(t, func(b *der.Builder) { b.AddBoolean(true) }))
	assert.Equal(t, "010100", build(t, func(b *der.Builder) { b.AddBoolean(false) }))

	for in, want := range map[string]bool{"0101ff": true, "010101": true, "010100": false} {
		v, err := der.Decode(mustHex(t, in))
		require.NoError(t, err)
		got, err := v.Boolean()
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	v, err := der.Decode(mustHex(t, "0102ffff"))
	require.NoError(t, err)
	_, err = v.Boolean()
	assert.ErrorIs(t, err, der.ErrMalformed)
}

func TestBitStrings(t *testing.T) {
	tests := []struct {
		name      string
		bits      []bool
		truncated bool
		want      string
	}{
		{name: "Named bits 0 and 2", bits: []bool{true, false, true, false, false, false, false, false, false}, truncated: true, want: "030205a0"},
		{name: "Ninth bit", bits: []bool{false, false, false, false, false, false, false, false, true}, truncated: true, want: "0303070080"},
		{name: "All clear", bits: []bool{false, false, false}, truncated: true, want: "030100"},
		{name: "Unaligned keeps length", bits: []bool{true, false, false}, want: "03020580"},
		{name: "Aligned", bits: []bool{true, true, true, true, true, true, true, true}, want: "030200ff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, func(b *der.Builder) {
				if tt.truncated {
					b.AddTruncatedBools(tt.bits)
					return
				}
				b.AddBools(tt.bits)
			})
			assert.Equal(t, tt.want, got)

			v, err := der.Decode(mustHex(t, got))
			require.NoError(t, err)
			decoded, err := v.Bools()
			require.NoError(t, err)
			if !tt.truncated {
				assert.Equal(t, tt.bits, decoded)
			}
		})
	}

	t.Run("Non-zero padding rejected", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "03020781"))
		require.NoError(t, err)
		_, err = v.BitString()
		assert.ErrorIs(t, err, der.ErrMalformed)

		_, err = der.Marshal(func(b *der.Builder) { b.AddBitString([]byte{0x81}, 7) })
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})
}

func TestObjectIdentifiers(t *testing.T) {
	tests := []struct {
		oid  encoding_asn1.ObjectIdentifier
		want string
	}{
		{encoding_asn1.ObjectIdentifier{2, 5, 29, 19}, "0603551d13"},
		{encoding_asn1.ObjectIdentifier{1, 2, 840, 113549}, "06062a864886f70d"},
		{encoding_asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}, "06096086480186f8420101"},
	}
	for _, tt := range tests {
		t.Run(tt.oid.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, build(t, func(b *der.Builder) { b.AddOID(tt.oid) }))
			v, err := der.Decode(mustHex(t, tt.want))
			require.NoError(t, err)
			oid, err := v.OID()
			require.NoError(t, err)
			assert.True(t, tt.oid.Equal(oid))
		})
	}

	t.Run("Non-minimal arc rejected", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "060355801d"))
		require.NoError(t, err)
		_, err = v.OID()
		assert.ErrorIs(t, err, der.ErrMalformed)
	})

	t.Run("Invalid OID refused on encode", func(t *testing.T) {
		_, err := der.Marshal(func(b *der.Builder) { b.AddOID(encoding_asn1.ObjectIdentifier{3, 1}) })
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})
}

func TestTimes(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"Last UTCTime second", time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC), "170d3439313233313233353935395a"},
		{"First GeneralizedTime instant", time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC), "180f32303530303130313030303030305a"},
		{"First UTCTime year", time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), "170d3530303130313030303030305a"},
		{"Before 1950", time.Date(1949, 12, 31, 0, 0, 0, 0, time.UTC), "180f31393439313233313030303030305a"},
		{"Sub-second truncated", time.Date(2024, 2, 29, 12, 0, 0, 999, time.UTC), "170d3234303232393132303030305a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, func(b *der.Builder) { b.AddTime(tt.at) })
			assert.Equal(t, tt.want, got)

			v, err := der.Decode(mustHex(t, got))
			require.NoError(t, err)
			decoded, err := v.Time()
			require.NoError(t, err)
			assert.True(t, tt.at.Truncate(time.Second).Equal(decoded))
		})
	}

	t.Run("UTCTime outside its range", func(t *testing.T) {
		_, err := der.Marshal(func(b *der.Builder) { b.AddUTCTime(time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)) })
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})

	t.Run("Mismatched form", func(t *testing.T) {
		// GeneralizedTime digits under a UTCTime tag.
		v, err := der.Decode(mustHex(t, "170f32303530303130313030303030305a"))
		require.NoError(t, err)
		_, err = v.Time()
		assert.ErrorIs(t, err, der.ErrMalformed)
	})

	t.Run("GeneralizedTime inside the UTCTime range", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "180f32303230303130313030303030305a"))
		require.NoError(t, err)
		_, err = v.Time()
		assert.ErrorIs(t, err, der.ErrMalformed)

		// The explicit accessor still reads it.
		got, err := v.GeneralizedTime()
		require.NoError(t, err)
		assert.Equal(t, 2020, got.Year())
	})

	t.Run("Not a time", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "0500"))
		require.NoError(t, err)
		_, err = v.Time()
		assert.ErrorIs(t, err, der.ErrMalformed)
	})
}

func TestImplicitTagging(t *testing.T) {
	got := build(t, func(b *der.Builder) { b.AddImplicit(2, func(b *der.Builder) { b.AddInt64(1) }) })
	assert.Equal(t, "820101", got)

	v, err := der.Decode(mustHex(t, got))
	require.NoError(t, err)
	_, err = v.Int64()
	assert.ErrorIs(t, err, der.ErrMalformed, "context tag must be reset first")

	n, err := v.Implicit(der.TagInteger).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	seq := build(t, func(b *der.Builder) {
		b.AddImplicit(1, func(b *der.Builder) {
			b.AddSequence(func(b *der.Builder) { b.AddNull() })
		})
	})
	assert.Equal(t, "a1020500", seq)

	v, err = der.Decode(mustHex(t, seq))
	require.NoError(t, err)
	r, err := v.Implicit(der.TagSequence).Sequence()
	require.NoError(t, err)
	inner, err := r.Next()
	require.NoError(t, err)
	assert.NoError(t, inner.Null())
	assert.NoError(t, r.Finish())

	explicit := build(t, func(b *der.Builder) { b.AddExplicit(0, func(b *der.Builder) { b.AddInt64(2) }) })
	assert.Equal(t, "a003020102", explicit)
}

func TestSetOfSorting(t *testing.T) {
	got := build(t, func(b *der.Builder) {
		b.AddSetOf(func(b *der.Builder) {
			b.AddInt64(2)
			b.AddOctetString([]byte{0x01})
			b.AddInt64(1)
		})
	})
	assert.Equal(t, "3109020101020102040101", got)

	ordered := build(t, func(b *der.Builder) {
		b.AddSet(func(b *der.Builder) {
			b.AddInt64(2)
			b.AddInt64(1)
		})
	})
	assert.Equal(t, "3106020102020101", ordered)
}

func TestStrings(t *testing.T) {
	tests := []struct {
		name string
		tag  uint8
		text string
		want string
	}{
		{"BMPString", der.TagBMPString, "AB", "1e0400410042"},
		{"UniversalString", der.TagUniversalString, "A", "1c0400000041"},
		{"T61String", der.TagT61String, "é", "1401e9"},
		{"PrintableString", der.TagPrintableString, "Example CA", "130a4578616d706c65204341"},
		{"UTF8String", der.TagUTF8String, "ü", "0c02c3bc"},
		{"IA5String", der.TagIA5String, "a@b", "1603614062"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, func(b *der.Builder) { b.AddString(tt.tag, tt.text) })
			assert.Equal(t, tt.want, got)

			v, err := der.Decode(mustHex(t, got))
			require.NoError(t, err)
			text, err := v.Text()
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
		})
	}

	t.Run("Invalid alphabet", func(t *testing.T) {
		_, err := der.Marshal(func(b *der.Builder) { b.AddPrintableString("a@b") })
		assert.ErrorIs(t, err, der.ErrInvalidValue)
		_, err = der.Marshal(func(b *der.Builder) { b.AddIA5String("ü") })
		assert.ErrorIs(t, err, der.ErrInvalidValue)

		v, err := der.Decode(mustHex(t, "1e03004100"))
		require.NoError(t, err)
		_, err = v.Text()
		assert.ErrorIs(t, err, der.ErrMalformed)
	})
}

func TestReader(t *testing.T) {
	r := der.NewReader(mustHex(t, "800101a1020500020105"))

	v, ok, err := r.NextIf(der.ClassContextSpecific, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{0x01}, v.Content)

	_, ok, err = r.NextIf(der.ClassContextSpecific, 2)
	require.NoError(t, err)
	assert.False(t, ok, "[1] must not match [2]")

	peeked, err := r.Peek()
	require.NoError(t, err)
	assert.True(t, peeked.IsContext(1))

	v, ok, err = r.NextIf(der.ClassContextSpecific, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, v.Constructed)

	assert.ErrorIs(t, r.Finish(), der.ErrMalformed)
	last, err := r.Next()
	require.NoError(t, err)
	n, err := last.Int()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoError(t, r.Finish())

	_, ok, err = r.NextIf(der.ClassUniversal, der.TagInteger)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestMarshalConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			for range 100 {
				out, err := der.Marshal(func(b *der.Builder) {
					b.AddSequence(func(b *der.Builder) {
						b.AddInt64(n)
						b.AddOctetString(bytes.Repeat([]byte{byte(n)}, int(n)))
					})
				})
				assert.NoError(t, err)
				v, err := der.Decode(out)
				assert.NoError(t, err)
				r, err := v.Sequence()
				assert.NoError(t, err)
				first, _ := r.Next()
				got, _ := first.Int64()
				assert.Equal(t, n, got)
			}
		}(int64(i))
	}
	wg.Wait()
}
