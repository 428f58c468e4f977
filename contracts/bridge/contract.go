/*
Contract storage model.

# Summary
Key-value storage format:
  - 'oracle' -> interop.Hash160
    account which is allowed to unlock GAS
  - 'minReserve' -> int
    amount of GAS which is never unlocked (missing means 0)
  - 'req' + [8]byte -> []byte{1}
    IDs of the fulfilled unlock requests
*/
package bridge

import (
	"github.com/nspcc-dev/gas-bridge/common"
	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	"github.com/nspcc-dev/gas-bridge/internal/wire"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// _deploy sets up the oracle account and the minimal custody reserve.
// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	args := data.(struct {
		oracle     interop.Hash160
		minReserve int
	})

	if len(args.oracle) != interop.Hash160Len {
		panic(bridgeconst.ErrInvalidOracle)
	}

	if args.minReserve < 0 {
		panic(bridgeconst.ErrNegativeReserve)
	}

	ctx := storage.GetContext()

	storage.Put(ctx, bridgeconst.OracleKey, args.oracle)
	if args.minReserve > 0 {
		storage.Put(ctx, bridgeconst.MinReserveKey, args.minReserve)
	}

	runtime.Log("bridge contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the chain committee. Contract storage, including the oracle, is kept.
func Update(nefFile, manifest []byte, data any) {
	common.CheckCommitteeWitness()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("bridge contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// Every GAS transfer to the contract is a bridge message: transfer data
// carries the operation code (4 bytes), the request ID (8 bytes) and the
// operation body, all integers are big-endian.
//
// Lock (code 1) body is a 20-byte foreign address followed by a 1-byte
// destination chain ID. Transferred GAS stays in the contract and Lock
// notification is produced.
//
// Unlock (code 2) body is a 20-byte destination account followed by 8-byte
// amount. Only the oracle can send it; the amount is transferred from the
// contract to the destination and Unlock notification is produced. Each
// request ID can be unlocked once.
//
// Any failure faults the transaction, so the transferred GAS returns to the
// sender.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage(bridgeconst.ErrOnlyGAS)
	}

	if data == nil {
		panic(bridgeconst.ErrMalformedMessage)
	}

	msg := data.([]byte)
	if len(msg) < bridgeconst.HeaderSize {
		panic(bridgeconst.ErrMalformedMessage)
	}

	op := wire.Uint(msg, 0, bridgeconst.OpCodeSize)
	requestID := msg[bridgeconst.OpCodeSize:bridgeconst.HeaderSize]
	body := msg[bridgeconst.HeaderSize:]

	switch op {
	case bridgeconst.OpLock:
		lock(from, amount, body)
	case bridgeconst.OpUnlock:
		unlock(from, requestID, body)
	default:
		panic(bridgeconst.ErrUnknownOperation)
	}
}

// lock publishes deposit of the amount made by the sender. The deposit itself
// is already on the contract account.
func lock(from interop.Hash160, amount int, body []byte) {
	if amount <= 0 {
		panic(bridgeconst.ErrZeroValueLock)
	}

	if len(body) != bridgeconst.LockBodySize {
		panic(bridgeconst.ErrMalformedPayload)
	}

	// Neo account is a 160-bit script hash, it is written as a 256-bit
	// big-endian number.
	record := append(body, wire.Zeros(bridgeconst.SenderHashSize-bridgeconst.NativeAddressSize)...)
	record = append(record, from...)
	record = append(record, wire.PutUint(amount, bridgeconst.AmountSize)...)

	runtime.Notify(bridgeconst.LockEvent, record)
}

// unlock releases custodied GAS on the oracle's instruction.
func unlock(from interop.Hash160, requestID, body []byte) {
	ctx := storage.GetContext()

	oracle := storage.Get(ctx, bridgeconst.OracleKey).(interop.Hash160)
	if !common.Authorized(from, oracle) {
		panic(bridgeconst.ErrUnauthorized)
	}

	if len(body) != bridgeconst.UnlockBodySize {
		panic(bridgeconst.ErrMalformedPayload)
	}

	self := runtime.GetExecutingScriptHash()

	dst := interop.Hash160(body[:bridgeconst.NativeAddressSize])
	if dst.Equals(self) {
		panic(bridgeconst.ErrMalformedPayload)
	}

	key := append([]byte(bridgeconst.RequestPrefix), requestID...)
	if storage.Get(ctx, key) != nil {
		panic(bridgeconst.ErrRequestProcessed)
	}

	amount := wire.Uint(body, bridgeconst.NativeAddressSize, bridgeconst.AmountSize)
	if amount <= 0 || amount > gas.BalanceOf(self)-getMinReserve(ctx) {
		panic(bridgeconst.ErrInsufficientCustody)
	}

	storage.Put(ctx, key, []byte{1})

	if !gas.Transfer(self, dst, amount, nil) {
		panic(bridgeconst.ErrTransferFailed)
	}

	runtime.Notify(bridgeconst.UnlockEvent, requestID, dst, amount)
}

// Oracle returns the account which is allowed to unlock funds.
func Oracle() interop.Hash160 {
	ctx := storage.GetReadOnlyContext()
	return storage.Get(ctx, bridgeconst.OracleKey).(interop.Hash160)
}

// MinReserve returns the amount of GAS the contract never releases.
func MinReserve() int {
	ctx := storage.GetReadOnlyContext()
	return getMinReserve(ctx)
}

// Custody returns the amount of GAS held by the contract.
func Custody() int {
	return gas.BalanceOf(runtime.GetExecutingScriptHash())
}

// IsProcessed checks whether unlock request with the given 8-byte ID has
// already been fulfilled.
func IsProcessed(requestID []byte) bool {
	if len(requestID) != bridgeconst.RequestIDSize {
		panic(bridgeconst.ErrInvalidRequestID)
	}

	ctx := storage.GetReadOnlyContext()
	key := append([]byte(bridgeconst.RequestPrefix), requestID...)

	return storage.Get(ctx, key) != nil
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func getMinReserve(ctx storage.Context) int {
	val := storage.Get(ctx, bridgeconst.MinReserveKey)
	if val == nil {
		return 0
	}

	return val.(int)
}
