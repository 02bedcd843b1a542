// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509names_test

import (
	"encoding/asn1"
	"encoding/hex"
	"testing"

	"github.com/H0llyW00dzZ/x509-der-codec/src/der"
	x509names "github.com/H0llyW00dzZ/x509-der-codec/src/x509/names"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestGeneralNameRoundTrip(t *testing.T) {
	upn, err := x509names.NewUPN("u@x")
	require.NoError(t, err)
	edi, err := x509names.NewEDIPartyName("", "EDI Party")
	require.NoError(t, err)
	dn, err := x509names.ParseX500Name("CN=Test")
	require.NoError(t, err)
	uri, err := x509names.NewURIName("https://example.com")
	require.NoError(t, err)
	ip, err := x509names.ParseIPAddressName("192.0.2.1")
	require.NoError(t, err)
	email, err := x509names.NewRFC822Name("a@b.c")
	require.NoError(t, err)

	tests := []struct {
		name string
		gn   x509names.GeneralName
		want string
	}{
		{"otherName UPN", upn, "a013060a2b060104018237140203a0050c03754078"},
		{"rfc822Name", email, "8105614062" + "2e63"},
		{"dNSName", x509names.DNSName("example.com"), "820b6578616d706c652e636f6d"},
		{"x400Address", x509names.NewX400Address([]byte{0x05, 0x00}), "a3020500"},
		{"directoryName", dn, "a411300f310d300b0603550403130454657374"},
		{"ediPartyName", edi, "a50da10b1309454449205061727479"},
		{"uniformResourceIdentifier", uri, "8613" + hex.EncodeToString([]byte("https://example.com"))},
		{"iPAddress", ip, "8704c0000201"},
		{"registeredID", x509names.OIDName(asn1.ObjectIdentifier{1, 2, 3}), "88022a03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := x509names.MarshalGeneralName(tt.gn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(enc))

			decoded, err := x509names.ParseGeneralName(enc)
			require.NoError(t, err)
			assert.Equal(t, tt.gn.Type(), decoded.Type())
			assert.True(t, tt.gn.Equal(decoded), "decoded %s != %s", decoded, tt.gn)
			assert.Equal(t, tt.gn.Key(), decoded.Key())

			again, err := x509names.MarshalGeneralName(decoded)
			require.NoError(t, err)
			assert.Equal(t, enc, again)
		})
	}
}

func TestDecodeGeneralNameErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Universal tag", "1603616263"},
		{"Tag beyond registeredID", "8900"},
		{"Primitive directoryName", "8400"},
		{"Constructed dNSName", "a2021600"},
		{"Bad IP length", "8703010203"},
		{"Email ending with at", "81026140"},
		{"URI without scheme", "860b6578616d706c652e636f6d"},
		{"otherName without explicit wrapper", "a00706022a030c0175"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x509names.ParseGeneralName(mustHex(t, tt.input))
			require.Error(t, err)
			assert.True(t, der.IsDecodeError(err), "got %v", err)
		})
	}
}

func TestURINameConstraintDecoding(t *testing.T) {
	// [6] ".example.com" is only legal as a subtree base.
	enc := "860c" + hex.EncodeToString([]byte(".example.com"))
	v, err := der.Decode(mustHex(t, enc))
	require.NoError(t, err)

	_, err = x509names.DecodeGeneralName(v)
	assert.ErrorIs(t, err, x509names.ErrInvalidName)

	n, err := x509names.DecodeGeneralNameConstraint(v)
	require.NoError(t, err)
	uri := n.(x509names.URIName)
	assert.True(t, uri.IsDomain())
	assert.Equal(t, ".example.com", uri.Host())

	full := "8613" + hex.EncodeToString([]byte("https://example.com"))
	v, err = der.Decode(mustHex(t, full))
	require.NoError(t, err)
	_, err = x509names.DecodeGeneralNameConstraint(v)
	assert.ErrorIs(t, err, x509names.ErrInvalidName)
}

func TestOtherNameRegistry(t *testing.T) {
	mailbox, err := x509names.NewSmtpUTF8Mailbox("用户@example.com")
	require.NoError(t, err)
	text, ok := mailbox.Text()
	assert.True(t, ok)
	assert.Equal(t, "用户@example.com", text)
	assert.Equal(t, "othername:SmtpUTF8Mailbox:用户@example.com", mailbox.String())

	// UPN values must be UTF8String.
	_, err = x509names.NewOtherName(x509names.OIDUserPrincipalName, der.Value{Tag: der.TagIA5String, Content: []byte("u")})
	assert.ErrorIs(t, err, der.ErrMalformed)

	custom := asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 7}
	unknown, err := x509names.NewOtherName(custom, der.Value{Tag: der.TagInteger, Content: []byte{0x07}})
	require.NoError(t, err)
	_, ok = unknown.Text()
	assert.False(t, ok)
	assert.Equal(t, "othername:1.3.6.1.4.1.99999.7:#020107", unknown.String())

	require.NoError(t, x509names.RegisterOtherName("TestInteger", custom, func(v der.Value) (string, error) {
		n, err := v.Int()
		return hex.EncodeToString([]byte{byte(n)}), err
	}))
	assert.Error(t, x509names.RegisterOtherName("TestInteger", custom, nil))

	known, err := x509names.NewOtherName(custom, der.Value{Tag: der.TagInteger, Content: []byte{0x07}})
	require.NoError(t, err)
	assert.Equal(t, "othername:TestInteger:07", known.String())
	assert.True(t, known.Equal(unknown), "equality is by encoding, not by decoder")
}

func TestExactMatchOnlyVariants(t *testing.T) {
	a, _ := x509names.NewUPN("a@x")
	b, _ := x509names.NewUPN("b@x")
	e1, _ := x509names.NewEDIPartyName("as", "p1")
	e2, _ := x509names.NewEDIPartyName("as", "p2")

	tests := []struct {
		name string
		x, y x509names.GeneralName
	}{
		{"otherName", a, b},
		{"ediPartyName", e1, e2},
		{"registeredID", x509names.OIDName{1, 2, 3}, x509names.OIDName{1, 2, 4}},
		{"x400Address", x509names.NewX400Address([]byte{1}), x509names.NewX400Address([]byte{2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.x.Constrains(tt.x)
			require.NoError(t, err)
			assert.Equal(t, x509names.Match, c)

			_, err = tt.x.Constrains(tt.y)
			assert.ErrorIs(t, err, x509names.ErrUnsupported)

			c, err = tt.x.Constrains(x509names.DNSName("example.com"))
			require.NoError(t, err)
			assert.Equal(t, x509names.DiffType, c)

			_, err = tt.x.SubtreeDepth()
			assert.ErrorIs(t, err, x509names.ErrUnsupported)
		})
	}
}

func TestGeneralNames(t *testing.T) {
	email, _ := x509names.NewRFC822Name("ops@example.com")
	names := x509names.GeneralNames{x509names.DNSName("b.example"), email, x509names.DNSName("a.example")}

	enc, err := der.Marshal(names.Encode)
	require.NoError(t, err)
	v, err := der.Decode(enc)
	require.NoError(t, err)
	decoded, err := x509names.DecodeGeneralNames(v)
	require.NoError(t, err)

	assert.True(t, names.Equal(decoded))
	assert.False(t, names.Equal(x509names.GeneralNames{names[2], names[1], names[0]}), "order matters")
	assert.True(t, decoded.Contains(x509names.DNSName("A.EXAMPLE")))
	assert.Len(t, decoded.OfType(x509names.TypeDNS), 2)
	assert.Equal(t, "DNS:b.example, email:ops@example.com, DNS:a.example", decoded.String())

	empty, err := der.Decode([]byte{0x30, 0x00})
	require.NoError(t, err)
	_, err = x509names.DecodeGeneralNames(empty)
	assert.ErrorIs(t, err, der.ErrInvalidValue)
}

func TestGeneralSubtrees(t *testing.T) {
	ip, err := x509names.ParseIPAddressName("10.0.0.0/8")
	require.NoError(t, err)
	subtrees := x509names.GeneralSubtrees{
		x509names.NewGeneralSubtree(x509names.DNSName("example.com")),
		{Name: ip, Minimum: 1, Maximum: 4},
	}

	enc, err := der.Marshal(func(b *der.Builder) { subtrees.EncodeImplicit(b, 0) })
	require.NoError(t, err)
	assert.Equal(t, "a021"+"300d820b6578616d706c652e636f6d"+"301087080a000000ff000000800101810104", hex.EncodeToString(enc))

	v, err := der.Decode(enc)
	require.NoError(t, err)
	decoded, err := x509names.DecodeGeneralSubtrees(v.Implicit(der.TagSequence))
	require.NoError(t, err)
	assert.True(t, subtrees.Equal(decoded))
	assert.Equal(t, -1, decoded[0].Maximum)
	assert.Equal(t, "[DNS:example.com; IP:10.0.0.0/8 min=1 max=4]", decoded.String())

	t.Run("Inverted bounds", func(t *testing.T) {
		v, err := der.Decode(mustHex(t, "3009820161"+"800103"+"810101"))
		require.NoError(t, err)
		_, err = x509names.DecodeGeneralSubtree(v)
		assert.ErrorIs(t, err, der.ErrInvalidValue)
	})
}
