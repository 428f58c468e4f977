package tests

import (
	"math/big"
	"path"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	bridgePath   = "../contracts/bridge"
	receiverPath = "../internal/testcontracts/nep17recv"
	updatePath   = "../internal/testcontracts/bridgeupdate"

	// 1 GAS in fractional units.
	gasUnit = 1_0000_0000
)

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func compileBridge(t *testing.T, e *neotest.Executor) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, bridgePath, path.Join(bridgePath, "config.yml"))
}

func deployBridgeContract(t *testing.T, e *neotest.Executor, oracle util.Uint160, minReserve int64) util.Uint160 {
	c := compileBridge(t, e)
	e.DeployContract(t, c, []any{oracle, minReserve})
	return c.Hash
}

func deployReceiverContract(t *testing.T, e *neotest.Executor) util.Uint160 {
	c := neotest.CompileFile(t, e.CommitteeHash, receiverPath, path.Join(receiverPath, "config.yml"))
	e.DeployContract(t, c, nil)
	return c.Hash
}

func gasBalance(e *neotest.Executor, acc util.Uint160) *big.Int {
	return e.Chain.GetUtilityTokenBalance(acc)
}

func gasInvoker(t *testing.T, e *neotest.Executor, signer neotest.Signer) *neotest.ContractInvoker {
	return e.NewInvoker(e.NativeHash(t, nativenames.Gas), signer)
}

func plus(x *big.Int, delta int64) *big.Int {
	return new(big.Int).Add(x, big.NewInt(delta))
}
