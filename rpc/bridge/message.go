package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Errors returned by message decoders. They correspond to the exceptions
// thrown by the contract for the same input.
var (
	ErrMalformedMessage = errors.New(bridgeconst.ErrMalformedMessage)
	ErrUnknownOperation = errors.New(bridgeconst.ErrUnknownOperation)
	ErrMalformedPayload = errors.New(bridgeconst.ErrMalformedPayload)
)

// Header is a common header of all bridge messages.
type Header struct {
	OpCode    uint32
	RequestID uint64
}

// LockMessage is a message attached to GAS transfer locking it for the
// destination chain.
type LockMessage struct {
	RequestID   uint64
	Destination ForeignAddress
	ChainID     uint8
}

// UnlockMessage is a message sent by the oracle to release locked GAS.
type UnlockMessage struct {
	RequestID   uint64
	Destination util.Uint160
	Amount      uint64
}

// Bytes encodes the message into the transfer data.
func (m LockMessage) Bytes() []byte {
	b := make([]byte, bridgeconst.HeaderSize+bridgeconst.LockBodySize)
	putHeader(b, bridgeconst.OpLock, m.RequestID)
	copy(b[bridgeconst.HeaderSize:], m.Destination[:])
	b[bridgeconst.HeaderSize+bridgeconst.ForeignAddressSize] = m.ChainID
	return b
}

// Bytes encodes the message into the transfer data.
func (m UnlockMessage) Bytes() []byte {
	b := make([]byte, bridgeconst.HeaderSize+bridgeconst.UnlockBodySize)
	putHeader(b, bridgeconst.OpUnlock, m.RequestID)
	copy(b[bridgeconst.HeaderSize:], m.Destination.BytesBE())
	binary.BigEndian.PutUint64(b[bridgeconst.HeaderSize+bridgeconst.NativeAddressSize:], m.Amount)
	return b
}

// DecodeHeader decodes the header of any bridge message and returns the
// remaining body.
func DecodeHeader(b []byte) (Header, []byte, error) {
	if len(b) < bridgeconst.HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrMalformedMessage, len(b))
	}

	h := Header{
		OpCode:    binary.BigEndian.Uint32(b),
		RequestID: binary.BigEndian.Uint64(b[bridgeconst.OpCodeSize:]),
	}

	return h, b[bridgeconst.HeaderSize:], nil
}

// DecodeLockMessage decodes transfer data into LockMessage.
func DecodeLockMessage(b []byte) (LockMessage, error) {
	var m LockMessage

	body, err := decodeBody(b, bridgeconst.OpLock, bridgeconst.LockBodySize, &m.RequestID)
	if err != nil {
		return m, err
	}

	copy(m.Destination[:], body)
	m.ChainID = body[bridgeconst.ForeignAddressSize]

	return m, nil
}

// DecodeUnlockMessage decodes transfer data into UnlockMessage.
func DecodeUnlockMessage(b []byte) (UnlockMessage, error) {
	var m UnlockMessage

	body, err := decodeBody(b, bridgeconst.OpUnlock, bridgeconst.UnlockBodySize, &m.RequestID)
	if err != nil {
		return m, err
	}

	m.Destination, err = util.Uint160DecodeBytesBE(body[:bridgeconst.NativeAddressSize])
	if err != nil {
		return m, fmt.Errorf("%w: destination: %w", ErrMalformedPayload, err)
	}

	m.Amount = binary.BigEndian.Uint64(body[bridgeconst.NativeAddressSize:])

	return m, nil
}

func decodeBody(b []byte, op uint32, size int, requestID *uint64) ([]byte, error) {
	h, body, err := DecodeHeader(b)
	if err != nil {
		return nil, err
	}

	if h.OpCode != op {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, h.OpCode)
	}

	if len(body) != size {
		return nil, fmt.Errorf("%w: body of %d bytes instead of %d", ErrMalformedPayload, len(body), size)
	}

	*requestID = h.RequestID

	return body, nil
}

func putHeader(b []byte, op uint32, requestID uint64) {
	binary.BigEndian.PutUint32(b, op)
	binary.BigEndian.PutUint64(b[bridgeconst.OpCodeSize:], requestID)
}

// RequestIDBytes returns 8-byte big-endian form of the request ID used by the
// contract methods.
func RequestIDBytes(id uint64) []byte {
	b := make([]byte, bridgeconst.RequestIDSize)
	binary.BigEndian.PutUint64(b, id)
	return b
}
