package bridge

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
)

// ForeignAddress is a 160-bit account address on the destination chain.
type ForeignAddress [bridgeconst.ForeignAddressSize]byte

// base58check form: version byte, address, 4-byte checksum.
const base58CheckLen = 1 + bridgeconst.ForeignAddressSize + 4

// ParseForeignAddress decodes destination chain address given either as
// 0x-prefixed hex string or as base58check string (version byte followed by
// 20-byte address and double SHA-256 checksum).
func ParseForeignAddress(s string) (ForeignAddress, error) {
	var a ForeignAddress

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return a, fmt.Errorf("decode hex: %w", err)
		}

		if len(b) != len(a) {
			return a, fmt.Errorf("invalid address length %d", len(b))
		}

		copy(a[:], b)
		return a, nil
	}

	b, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("decode base58: %w", err)
	}

	if len(b) != base58CheckLen {
		return a, fmt.Errorf("invalid base58check length %d", len(b))
	}

	payload := b[:len(b)-4]
	if !bytes.Equal(hash.Checksum(payload), b[len(b)-4:]) {
		return a, fmt.Errorf("checksum mismatch")
	}

	copy(a[:], payload[1:])
	return a, nil
}

// String returns 0x-prefixed hex form of the address.
func (a ForeignAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}
