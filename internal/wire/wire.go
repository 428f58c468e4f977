/*
Package wire implements fixed-width big-endian integer fields used by the
bridge message and event layouts.

The package is compiled both by the NeoGo compiler (as a part of the bridge
contract) and by the regular Go toolchain, so it sticks to the language subset
supported by NeoVM: no standard library imports, integer arithmetic only.
*/
package wire

// Uint decodes n-byte big-endian unsigned integer located at the offset off
// of b. Caller is responsible for the bounds: len(b) >= off+n.
func Uint(b []byte, off, n int) int {
	x := 0
	for i := off; i < off+n; i++ {
		x = x*256 + int(b[i])
	}
	return x
}

// PutUint encodes non-negative x into n-byte big-endian form. Higher bits of
// x which do not fit into n bytes are dropped.
func PutUint(x, n int) []byte {
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i] = byte(x % 256)
		x = x / 256
	}
	return b
}

// Zeros returns n zero bytes.
func Zeros(n int) []byte {
	return make([]byte, n)
}
