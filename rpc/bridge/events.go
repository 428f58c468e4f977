package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// LockEvent represents "Lock" event emitted by the contract. On the wire it is
// a single 61-byte record: destination(20) || chain ID(1) || sender(32) ||
// value(8), where sender is a Neo account zero-extended to 32 bytes.
type LockEvent struct {
	Destination ForeignAddress
	ChainID     uint8
	Sender      util.Uint160
	Value       uint64
}

// UnlockEvent represents "Unlock" event emitted by the contract.
type UnlockEvent struct {
	RequestID   uint64
	Destination util.Uint160
	Amount      *big.Int
}

const senderPad = bridgeconst.SenderHashSize - bridgeconst.NativeAddressSize

// Bytes returns the record in the same form the contract emits it.
func (e LockEvent) Bytes() []byte {
	b := make([]byte, bridgeconst.LockRecordSize)

	off := copy(b, e.Destination[:])
	b[off] = e.ChainID
	off += bridgeconst.ChainIDSize + senderPad
	off += copy(b[off:], e.Sender.BytesBE())
	binary.BigEndian.PutUint64(b[off:], e.Value)

	return b
}

// DecodeBytes decodes the event record.
func (e *LockEvent) DecodeBytes(b []byte) error {
	if len(b) != bridgeconst.LockRecordSize {
		return fmt.Errorf("invalid record length %d", len(b))
	}

	off := copy(e.Destination[:], b)
	e.ChainID = b[off]
	off += bridgeconst.ChainIDSize

	for _, x := range b[off : off+senderPad] {
		if x != 0 {
			return errors.New("sender hash is not a Neo account")
		}
	}
	off += senderPad

	var err error
	e.Sender, err = util.Uint160DecodeBytesBE(b[off : off+bridgeconst.NativeAddressSize])
	if err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	off += bridgeconst.NativeAddressSize

	e.Value = binary.BigEndian.Uint64(b[off:])

	return nil
}

// FromStackItem converts provided [stackitem.Array] to LockEvent or
// returns an error if it's not possible to do to so.
func (e *LockEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 1 {
		return errors.New("wrong number of structure elements")
	}

	b, err := arr[0].TryBytes()
	if err != nil {
		return fmt.Errorf("field Record: %w", err)
	}

	return e.DecodeBytes(b)
}

// FromStackItem converts provided [stackitem.Array] to UnlockEvent or
// returns an error if it's not possible to do to so.
func (e *UnlockEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 3 {
		return errors.New("wrong number of structure elements")
	}

	id, err := arr[0].TryBytes()
	if err != nil {
		return fmt.Errorf("field RequestID: %w", err)
	}
	if len(id) != bridgeconst.RequestIDSize {
		return fmt.Errorf("field RequestID: invalid length %d", len(id))
	}
	e.RequestID = binary.BigEndian.Uint64(id)

	b, err := arr[1].TryBytes()
	if err != nil {
		return fmt.Errorf("field Destination: %w", err)
	}
	e.Destination, err = util.Uint160DecodeBytesBE(b)
	if err != nil {
		return fmt.Errorf("field Destination: %w", err)
	}

	e.Amount, err = arr[2].TryInteger()
	if err != nil {
		return fmt.Errorf("field Amount: %w", err)
	}

	return nil
}

// LockEventsFromApplicationLog retrieves a set of all emitted events
// with "Lock" name from the provided [result.ApplicationLog].
func LockEventsFromApplicationLog(log *result.ApplicationLog) ([]*LockEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*LockEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != bridgeconst.LockEvent {
				continue
			}
			event := new(LockEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize LockEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// UnlockEventsFromApplicationLog retrieves a set of all emitted events
// with "Unlock" name from the provided [result.ApplicationLog].
func UnlockEventsFromApplicationLog(log *result.ApplicationLog) ([]*UnlockEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*UnlockEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != bridgeconst.UnlockEvent {
				continue
			}
			event := new(UnlockEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize UnlockEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}
