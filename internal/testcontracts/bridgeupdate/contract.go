// Package bridgeupdate is a next version of the bridge contract reduced to the
// state getters. It's used to check that contract update keeps the state.
package bridgeupdate

import (
	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const updatedFromKey = "updatedFrom"

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if !isUpdate {
		panic("update only")
	}

	args := data.([]any)
	storage.Put(storage.GetContext(), updatedFromKey, args[len(args)-1].(int))
}

func Oracle() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), bridgeconst.OracleKey).(interop.Hash160)
}

func MinReserve() int {
	val := storage.Get(storage.GetReadOnlyContext(), bridgeconst.MinReserveKey)
	if val == nil {
		return 0
	}
	return val.(int)
}

func IsProcessed(requestID []byte) bool {
	key := append([]byte(bridgeconst.RequestPrefix), requestID...)
	return storage.Get(storage.GetReadOnlyContext(), key) != nil
}

// UpdatedFrom returns version passed by the previous contract on update.
func UpdatedFrom() int {
	return storage.Get(storage.GetReadOnlyContext(), updatedFromKey).(int)
}
