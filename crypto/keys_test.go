package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressEncodeDecodeRoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr := MustNewAddress(UserPrefix, raw)

	encoded := addr.String()
	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, addr.Bytes(), decoded.Bytes())
	require.Equal(t, UserPrefix, decoded.Prefix())
}

func TestNewAddressRejectsWrongLength(t *testing.T) {
	_, err := NewAddress(UserPrefix, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeAddressRejectsGarbage(t *testing.T) {
	_, err := DecodeAddress("not-a-bech32-string")
	require.Error(t, err)
}

func TestPublicKeyAddressUsesUserPrefix(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	addr := key.PubKey().Address()
	require.Equal(t, UserPrefix, addr.Prefix())
}

func TestPrivateKeyBytesRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	restored, err := PrivateKeyFromBytes(key.Bytes())
	require.NoError(t, err)
	require.Equal(t, key.PubKey().Address().String(), restored.PubKey().Address().String())
}
