package common

import "github.com/nspcc-dev/neo-go/pkg/interop"

// Authorized reports whether sender may instruct fund releases on behalf of
// the configured oracle. The current policy is a one-of-one match, so it is
// a plain equality check.
func Authorized(sender, oracle interop.Hash160) bool {
	if len(oracle) != interop.Hash160Len {
		return false
	}

	return sender.Equals(oracle)
}
