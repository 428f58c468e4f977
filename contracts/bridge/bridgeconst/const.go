// Package bridgeconst contains constants shared by the Bridge contract and
// off-chain code working with it.
package bridgeconst

// Operation codes of the inbound messages.
const (
	OpLock   = 1
	OpUnlock = 2
)

// Field widths of the inbound messages and the Lock event record in bytes.
const (
	OpCodeSize         = 4
	RequestIDSize      = 8
	HeaderSize         = OpCodeSize + RequestIDSize
	ForeignAddressSize = 20
	ChainIDSize        = 1
	NativeAddressSize  = 20
	AmountSize         = 8
	SenderHashSize     = 32

	LockBodySize   = ForeignAddressSize + ChainIDSize
	UnlockBodySize = NativeAddressSize + AmountSize
	LockRecordSize = ForeignAddressSize + ChainIDSize + SenderHashSize + AmountSize
)

// Storage keys of the contract.
const (
	OracleKey     = "oracle"
	MinReserveKey = "minReserve"
	RequestPrefix = "req"
)

// Notification names.
const (
	LockEvent   = "Lock"
	UnlockEvent = "Unlock"
)

// Exception messages thrown by the contract.
const (
	ErrMalformedMessage    = "malformed message"
	ErrUnknownOperation    = "unknown operation"
	ErrMalformedPayload    = "malformed payload"
	ErrZeroValueLock       = "zero value lock"
	ErrUnauthorized        = "unauthorized"
	ErrInsufficientCustody = "insufficient custody"
	ErrRequestProcessed    = "request already processed"
	ErrTransferFailed      = "failed to transfer funds"
	ErrOnlyGAS             = "only GAS can be accepted"
	ErrInvalidOracle       = "incorrect length of oracle script hash"
	ErrNegativeReserve     = "negative minimal reserve"
	ErrInvalidRequestID    = "invalid request ID"
)
