package tests

import (
	"encoding/json"
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/gas-bridge/common"
	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	rpcbridge "github.com/nspcc-dev/gas-bridge/rpc/bridge"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

var foreignDestination = rpcbridge.ForeignAddress{
	0x14, 0x2d, 0x6d, 0xb7, 0x35, 0xcd, 0xb5, 0x0b, 0xfc, 0x6e,
	0xc6, 0x5f, 0x94, 0x83, 0x03, 0x20, 0xc6, 0xc7, 0xa2, 0x45,
}

type bridgeEnv struct {
	e      *neotest.Executor
	hash   util.Uint160
	oracle neotest.Signer
	user   neotest.Signer

	contract *neotest.ContractInvoker
}

func newBridge(t *testing.T, minReserve int64) bridgeEnv {
	e := newExecutor(t)

	oracle := e.NewAccount(t)
	user := e.NewAccount(t)

	h := deployBridgeContract(t, e, oracle.ScriptHash(), minReserve)

	return bridgeEnv{
		e:        e,
		hash:     h,
		oracle:   oracle,
		user:     user,
		contract: e.CommitteeInvoker(h),
	}
}

// send transfers amount of GAS from the signer to the bridge with msg attached.
func (b bridgeEnv) send(t *testing.T, signer neotest.Signer, amount int64, msg any) util.Uint256 {
	return gasInvoker(t, b.e, signer).Invoke(t, true, "transfer",
		signer.ScriptHash(), b.hash, amount, msg)
}

func (b bridgeEnv) sendFail(t *testing.T, errMsg string, signer neotest.Signer, amount int64, msg any) {
	gasInvoker(t, b.e, signer).InvokeFail(t, errMsg, "transfer",
		signer.ScriptHash(), b.hash, amount, msg)
}

func (b bridgeEnv) lock(t *testing.T, amount int64) {
	b.send(t, b.user, amount, rpcbridge.LockMessage{
		RequestID:   1,
		Destination: foreignDestination,
		ChainID:     1,
	}.Bytes())
}

func applicationLog(t *testing.T, e *neotest.Executor, h util.Uint256) *result.ApplicationLog {
	aer := e.GetTxExecResult(t, h)
	return &result.ApplicationLog{
		Container:  h,
		Executions: []state.Execution{aer.Execution},
	}
}

func TestBridge_Deploy(t *testing.T) {
	e := newExecutor(t)
	c := compileBridge(t, e)

	t.Run("invalid oracle", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, c, []any{[]byte{1, 2, 3}, int64(0)}, bridgeconst.ErrInvalidOracle)
	})
	t.Run("negative reserve", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, c, []any{util.Uint160{1}, int64(-1)}, bridgeconst.ErrNegativeReserve)
	})
}

func TestBridge_Getters(t *testing.T) {
	b := newBridge(t, 5)

	b.contract.Invoke(t, stackitem.NewBuffer(b.oracle.ScriptHash().BytesBE()), "oracle")
	b.contract.Invoke(t, stackitem.Make(5), "minReserve")
	b.contract.Invoke(t, stackitem.Make(0), "custody")
	b.contract.Invoke(t, stackitem.Make(common.Version), "version")
	b.contract.Invoke(t, stackitem.NewBool(false), "isProcessed", rpcbridge.RequestIDBytes(1))
	b.contract.InvokeFail(t, bridgeconst.ErrInvalidRequestID, "isProcessed", []byte{1, 2, 3})
}

func TestBridge_Lock(t *testing.T) {
	b := newBridge(t, 0)

	msg := rpcbridge.LockMessage{
		RequestID:   42,
		Destination: foreignDestination,
		ChainID:     1,
	}

	h := b.send(t, b.user, 2*gasUnit, msg.Bytes())
	b.e.CheckGASBalance(t, b.hash, big.NewInt(2*gasUnit))
	b.contract.Invoke(t, stackitem.Make(2*gasUnit), "custody")

	events, err := rpcbridge.LockEventsFromApplicationLog(applicationLog(t, b.e, h))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, rpcbridge.LockEvent{
		Destination: foreignDestination,
		ChainID:     1,
		Sender:      b.user.ScriptHash(),
		Value:       2 * gasUnit,
	}, *events[0])

	// Lock messages are not deduplicated.
	b.send(t, b.user, gasUnit, msg.Bytes())
	b.e.CheckGASBalance(t, b.hash, big.NewInt(3*gasUnit))
}

func TestBridge_InvalidMessages(t *testing.T) {
	b := newBridge(t, 0)
	lock := rpcbridge.LockMessage{RequestID: 1, Destination: foreignDestination, ChainID: 1}.Bytes()

	t.Run("no data", func(t *testing.T) {
		b.sendFail(t, bridgeconst.ErrMalformedMessage, b.user, gasUnit, nil)
	})
	t.Run("short header", func(t *testing.T) {
		b.sendFail(t, bridgeconst.ErrMalformedMessage, b.user, gasUnit, lock[:bridgeconst.HeaderSize-1])
	})
	t.Run("unknown operation", func(t *testing.T) {
		msg := append([]byte{0, 0, 0, 3}, lock[bridgeconst.OpCodeSize:]...)
		b.sendFail(t, bridgeconst.ErrUnknownOperation, b.user, gasUnit, msg)
	})
	t.Run("lock body", func(t *testing.T) {
		b.sendFail(t, bridgeconst.ErrMalformedPayload, b.user, gasUnit, lock[:len(lock)-1])
		b.sendFail(t, bridgeconst.ErrMalformedPayload, b.user, gasUnit, append(lock, 0))
	})
	t.Run("zero value lock", func(t *testing.T) {
		b.sendFail(t, bridgeconst.ErrZeroValueLock, b.user, 0, lock)
	})
	t.Run("not GAS", func(t *testing.T) {
		neoInvoker := b.e.CommitteeInvoker(b.e.NativeHash(t, nativenames.Neo))
		neoInvoker.InvokeFail(t, "ABORT", "transfer",
			neoInvoker.Committee.ScriptHash(), b.hash, int64(1), lock)
	})

	b.e.CheckGASBalance(t, b.hash, big.NewInt(0))
}

func TestBridge_Unlock(t *testing.T) {
	b := newBridge(t, 0)
	b.lock(t, 2*gasUnit)

	recipient := b.e.NewAccount(t)
	before := gasBalance(b.e, recipient.ScriptHash())

	msg := rpcbridge.UnlockMessage{
		RequestID:   7,
		Destination: recipient.ScriptHash(),
		Amount:      2 * gasUnit,
	}

	h := b.send(t, b.oracle, gasUnit/10, msg.Bytes())

	b.e.CheckGASBalance(t, recipient.ScriptHash(), plus(before, 2*gasUnit))
	b.e.CheckGASBalance(t, b.hash, big.NewInt(gasUnit/10))
	b.contract.Invoke(t, stackitem.NewBool(true), "isProcessed", rpcbridge.RequestIDBytes(7))

	events, err := rpcbridge.UnlockEventsFromApplicationLog(applicationLog(t, b.e, h))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(7), events[0].RequestID)
	require.Equal(t, recipient.ScriptHash(), events[0].Destination)
	require.Equal(t, int64(2*gasUnit), events[0].Amount.Int64())

	t.Run("same payload, new request", func(t *testing.T) {
		b.lock(t, 4*gasUnit)
		before := gasBalance(b.e, recipient.ScriptHash())

		for _, id := range []uint64{8, 9} {
			next := msg
			next.RequestID = id
			b.send(t, b.oracle, 0, next.Bytes())
		}

		b.e.CheckGASBalance(t, recipient.ScriptHash(), plus(before, 4*gasUnit))
		b.contract.Invoke(t, stackitem.NewBool(true), "isProcessed", rpcbridge.RequestIDBytes(8))
		b.contract.Invoke(t, stackitem.NewBool(true), "isProcessed", rpcbridge.RequestIDBytes(9))
	})

	t.Run("replay", func(t *testing.T) {
		b.lock(t, 2*gasUnit)
		before := gasBalance(b.e, recipient.ScriptHash())
		b.sendFail(t, bridgeconst.ErrRequestProcessed, b.oracle, gasUnit/10, msg.Bytes())
		b.e.CheckGASBalance(t, recipient.ScriptHash(), before)
	})
}

func TestBridge_LockUnlockRoundTrip(t *testing.T) {
	b := newBridge(t, 0)

	h := b.send(t, b.user, 2*gasUnit, rpcbridge.LockMessage{
		RequestID:   1,
		Destination: foreignDestination,
		ChainID:     1,
	}.Bytes())

	events, err := rpcbridge.LockEventsFromApplicationLog(applicationLog(t, b.e, h))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, b.user.ScriptHash(), events[0].Sender)

	// The user signs nothing below, so its balance changes by the unlocked
	// amount only.
	before := gasBalance(b.e, b.user.ScriptHash())

	b.send(t, b.oracle, gasUnit/10, rpcbridge.UnlockMessage{
		RequestID:   1,
		Destination: events[0].Sender,
		Amount:      events[0].Value,
	}.Bytes())

	b.e.CheckGASBalance(t, b.user.ScriptHash(), plus(before, 2*gasUnit))
	b.e.CheckGASBalance(t, b.hash, big.NewInt(gasUnit/10))
}

func TestBridge_UnlockRejected(t *testing.T) {
	b := newBridge(t, 0)
	b.lock(t, 2*gasUnit)

	msg := rpcbridge.UnlockMessage{RequestID: 1, Destination: b.user.ScriptHash(), Amount: gasUnit}

	t.Run("unauthorized", func(t *testing.T) {
		b.sendFail(t, bridgeconst.ErrUnauthorized, b.user, gasUnit/10, msg.Bytes())
		b.sendFail(t, bridgeconst.ErrUnauthorized, b.e.NewAccount(t), gasUnit/10, msg.Bytes())
	})
	t.Run("malformed body", func(t *testing.T) {
		raw := msg.Bytes()
		b.sendFail(t, bridgeconst.ErrMalformedPayload, b.oracle, gasUnit/10, raw[:len(raw)-1])
	})
	t.Run("to the bridge itself", func(t *testing.T) {
		self := rpcbridge.UnlockMessage{RequestID: 2, Destination: b.hash, Amount: gasUnit}
		b.sendFail(t, bridgeconst.ErrMalformedPayload, b.oracle, gasUnit/10, self.Bytes())
	})
	t.Run("insufficient custody", func(t *testing.T) {
		tooMuch := rpcbridge.UnlockMessage{RequestID: 3, Destination: b.user.ScriptHash(), Amount: 3 * gasUnit}
		b.sendFail(t, bridgeconst.ErrInsufficientCustody, b.oracle, gasUnit/10, tooMuch.Bytes())

		zero := rpcbridge.UnlockMessage{RequestID: 4, Destination: b.user.ScriptHash()}
		b.sendFail(t, bridgeconst.ErrInsufficientCustody, b.oracle, gasUnit/10, zero.Bytes())
	})

	b.e.CheckGASBalance(t, b.hash, big.NewInt(2*gasUnit))
	b.contract.Invoke(t, stackitem.NewBool(false), "isProcessed", rpcbridge.RequestIDBytes(1))
}

func TestBridge_MinReserve(t *testing.T) {
	b := newBridge(t, gasUnit)
	b.lock(t, 2*gasUnit)

	recipient := b.e.NewAccount(t)
	before := gasBalance(b.e, recipient.ScriptHash())

	msg := rpcbridge.UnlockMessage{RequestID: 1, Destination: recipient.ScriptHash(), Amount: 2 * gasUnit}
	b.sendFail(t, bridgeconst.ErrInsufficientCustody, b.oracle, 0, msg.Bytes())

	// Attached fee is a part of the custody.
	msg.Amount = gasUnit + gasUnit/2
	b.send(t, b.oracle, gasUnit/2, msg.Bytes())

	b.e.CheckGASBalance(t, recipient.ScriptHash(), plus(before, gasUnit+gasUnit/2))
	b.e.CheckGASBalance(t, b.hash, big.NewInt(gasUnit))
}

func TestBridge_UnlockToContract(t *testing.T) {
	b := newBridge(t, 0)
	b.lock(t, 2*gasUnit)

	recvHash := deployReceiverContract(t, b.e)
	recv := b.e.CommitteeInvoker(recvHash)

	msg := rpcbridge.UnlockMessage{RequestID: 1, Destination: recvHash, Amount: gasUnit}

	recv.Invoke(t, stackitem.Null{}, "setReject", true)
	b.sendFail(t, "payment rejected", b.oracle, 0, msg.Bytes())
	b.e.CheckGASBalance(t, recvHash, big.NewInt(0))
	b.contract.Invoke(t, stackitem.NewBool(false), "isProcessed", rpcbridge.RequestIDBytes(1))

	recv.Invoke(t, stackitem.Null{}, "setReject", false)
	b.send(t, b.oracle, 0, msg.Bytes())
	b.e.CheckGASBalance(t, recvHash, big.NewInt(gasUnit))
	b.e.CheckGASBalance(t, b.hash, big.NewInt(gasUnit))
}

func TestBridge_Update(t *testing.T) {
	b := newBridge(t, 0)
	c := compileBridge(t, b.e)

	rawNef, err := c.NEF.Bytes()
	require.NoError(t, err)
	rawManifest, err := json.Marshal(c.Manifest)
	require.NoError(t, err)

	b.contract.WithSigners(b.oracle).InvokeFail(t, common.ErrCommitteeWitnessFailed, "update",
		rawNef, rawManifest, nil)

	b.contract.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNef, rawManifest, nil)
}

func TestBridge_UpdateKeepsState(t *testing.T) {
	b := newBridge(t, 5)
	b.lock(t, 2*gasUnit)
	b.send(t, b.oracle, 0, rpcbridge.UnlockMessage{
		RequestID:   3,
		Destination: b.user.ScriptHash(),
		Amount:      gasUnit,
	}.Bytes())

	next := neotest.CompileFile(t, b.e.CommitteeHash, updatePath, path.Join(updatePath, "config.yml"))

	rawNef, err := next.NEF.Bytes()
	require.NoError(t, err)
	rawManifest, err := json.Marshal(next.Manifest)
	require.NoError(t, err)

	b.contract.Invoke(t, stackitem.Null{}, "update", rawNef, rawManifest, nil)

	b.contract.Invoke(t, stackitem.NewBuffer(b.oracle.ScriptHash().BytesBE()), "oracle")
	b.contract.Invoke(t, stackitem.Make(5), "minReserve")
	b.contract.Invoke(t, stackitem.NewBool(true), "isProcessed", rpcbridge.RequestIDBytes(3))
	b.contract.Invoke(t, stackitem.Make(common.Version), "updatedFrom")
	b.e.CheckGASBalance(t, b.hash, big.NewInt(gasUnit))
}
