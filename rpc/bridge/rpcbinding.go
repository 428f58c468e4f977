// Package bridge contains RPC wrappers for the GAS bridge contract together
// with codecs for the messages it accepts and the events it emits.
package bridge

import (
	"errors"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to send bridge messages. Messages travel as GAS
// transfers to the contract, so it's the same actor GAS wrapper needs.
type Actor interface {
	Invoker

	nep17.Actor

	Sender() util.Uint160
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	gas   *nep17.Token
	actor Actor
	hash  util.Uint160
}

var errNonPositiveAmount = errors.New("lock amount must be positive")

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, gas.New(actor), actor, hash}
}

// Hash returns contract script hash.
func (c *ContractReader) Hash() util.Uint160 {
	return c.hash
}

// Oracle invokes `oracle` method of contract.
func (c *ContractReader) Oracle() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "oracle"))
}

// MinReserve invokes `minReserve` method of contract.
func (c *ContractReader) MinReserve() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "minReserve"))
}

// Custody invokes `custody` method of contract.
func (c *ContractReader) Custody() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "custody"))
}

// IsProcessed invokes `isProcessed` method of contract.
func (c *ContractReader) IsProcessed(requestID uint64) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isProcessed", RequestIDBytes(requestID)))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// Lock creates a transaction transferring amount of GAS to the contract with
// the given lock message attached.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Lock(amount *big.Int, m LockMessage) (util.Uint256, uint32, error) {
	if amount == nil || amount.Sign() <= 0 {
		return util.Uint256{}, 0, errNonPositiveAmount
	}
	return c.gas.Transfer(c.actor.Sender(), c.hash, amount, m.Bytes())
}

// LockTransaction creates a transaction transferring amount of GAS to the
// contract with the given lock message attached.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) LockTransaction(amount *big.Int, m LockMessage) (*transaction.Transaction, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errNonPositiveAmount
	}
	return c.gas.TransferTransaction(c.actor.Sender(), c.hash, amount, m.Bytes())
}

// Unlock creates a transaction transferring fee GAS to the contract with the
// given unlock message attached. Actor's sender must be the contract oracle.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Unlock(fee *big.Int, m UnlockMessage) (util.Uint256, uint32, error) {
	if fee == nil {
		fee = new(big.Int)
	}
	return c.gas.Transfer(c.actor.Sender(), c.hash, fee, m.Bytes())
}

// UnlockTransaction creates a transaction transferring fee GAS to the contract
// with the given unlock message attached.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UnlockTransaction(fee *big.Int, m UnlockMessage) (*transaction.Transaction, error) {
	if fee == nil {
		fee = new(big.Int)
	}
	return c.gas.TransferTransaction(c.actor.Sender(), c.hash, fee, m.Bytes())
}

// LockUnsigned creates a transaction transferring amount of GAS to the
// contract with the given lock message attached.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) LockUnsigned(amount *big.Int, m LockMessage) (*transaction.Transaction, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errNonPositiveAmount
	}
	return c.gas.TransferUnsigned(c.actor.Sender(), c.hash, amount, m.Bytes())
}

// UnlockUnsigned creates a transaction transferring fee GAS to the contract
// with the given unlock message attached.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UnlockUnsigned(fee *big.Int, m UnlockMessage) (*transaction.Transaction, error) {
	if fee == nil {
		fee = new(big.Int)
	}
	return c.gas.TransferUnsigned(c.actor.Sender(), c.hash, fee, m.Bytes())
}
