package bridge

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/stretchr/testify/require"
)

func TestParseForeignAddress(t *testing.T) {
	want := ForeignAddress{0x14, 0x2d, 0x6d, 0xb7, 0x35, 0xcd, 0xb5, 0x0b, 0xfc, 0x6e,
		0xc6, 0x5f, 0x94, 0x83, 0x03, 0x20, 0xc6, 0xc7, 0xa2, 0x45}

	t.Run("hex", func(t *testing.T) {
		a, err := ParseForeignAddress("0x142d6db735cdb50bfc6ec65f94830320c6c7a245")
		require.NoError(t, err)
		require.Equal(t, want, a)
		require.Equal(t, "0x142d6db735cdb50bfc6ec65f94830320c6c7a245", a.String())

		_, err = ParseForeignAddress("0x142d6d")
		require.Error(t, err)

		_, err = ParseForeignAddress("0xzz")
		require.Error(t, err)
	})

	t.Run("base58check", func(t *testing.T) {
		payload := append([]byte{0x41}, want[:]...)
		s := base58.Encode(append(payload, hash.Checksum(payload)...))

		a, err := ParseForeignAddress(s)
		require.NoError(t, err)
		require.Equal(t, want, a)

		broken := append(payload, 0, 0, 0, 0)
		_, err = ParseForeignAddress(base58.Encode(broken))
		require.Error(t, err)

		_, err = ParseForeignAddress(base58.Encode(payload))
		require.Error(t, err)

		_, err = ParseForeignAddress("0OIl")
		require.Error(t, err)
	})
}
