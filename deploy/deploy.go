// Package deploy provides bridge contract deployment procedure.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the bridge deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring or wrapping ErrContractNotFound if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// CommonDeployPrm groups common deployment parameters of the smart contract.
type CommonDeployPrm struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

// Prm groups all parameters of the bridge deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the bridge to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// It becomes the contract sender and so affects the contract address.
	LocalAccount *wallet.Account

	Contract CommonDeployPrm

	// Account allowed to unlock GAS.
	Oracle util.Uint160

	// Amount of GAS (in fractional units) which is never unlocked.
	MinReserve int64
}

// ErrContractNotFound may be returned by [Blockchain] when requested contract
// is missing.
var ErrContractNotFound = errors.New("contract is missing on the chain")

// ExpectedHash returns address the bridge contract gets when deployed by the
// given sender.
func ExpectedHash(sender util.Uint160, c CommonDeployPrm) util.Uint160 {
	return state.CreateContractHash(sender, c.NEF.Checksum, c.Manifest.Name)
}

// Deploy deploys the bridge contract to the Neo network represented by given
// Prm.Blockchain and returns its address. If the contract is already deployed
// by the local account, Deploy returns its address without any transactions.
//
// Deploy aborts by context or when a fatal error occurs.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	err := checkPrm(prm)
	if err != nil {
		return util.Uint160{}, err
	}

	addr := ExpectedHash(prm.LocalAccount.ScriptHash(), prm.Contract)
	l := prm.Logger.With(zap.Stringer("address", addr))

	l.Info("checking bridge contract presence on the chain...")

	cs, err := prm.Blockchain.GetContractStateByHash(addr)
	switch {
	case err == nil && cs != nil:
		l.Info("bridge contract is already deployed", zap.Int32("id", cs.ID),
			zap.Uint16("update counter", cs.UpdateCounter))
		return addr, nil
	case err != nil && !isErrContractNotFound(err):
		return util.Uint160{}, fmt.Errorf("get state of the bridge contract by address %s: %w", addr.StringLE(), err)
	}

	l.Info("bridge contract is missing on the chain, deploying...",
		zap.Stringer("oracle", prm.Oracle), zap.Int64("min reserve", prm.MinReserve))

	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	txHash, vub, err := management.New(act).Deploy(&prm.Contract.NEF, &prm.Contract.Manifest,
		[]any{prm.Oracle, prm.MinReserve})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("send deployment transaction: %w", err)
	}

	l.Info("deployment transaction sent, waiting...",
		zap.Stringer("tx", txHash), zap.Uint32("vub", vub))

	_, err = Await(ctx, act, txHash, vub)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deployment transaction %s: %w", txHash.StringLE(), err)
	}

	l.Info("bridge contract successfully deployed")

	return addr, nil
}

// Waiter is a part of [actor.Actor] used to wait for transaction acceptance.
type Waiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Await waits for the transaction to be accepted and checks it finished in
// HALT state. The wait itself can't be interrupted, so it's left running in
// background when ctx is done.
func Await(ctx context.Context, w Waiter, h util.Uint256, vub uint32) (*state.AppExecResult, error) {
	type res struct {
		aer *state.AppExecResult
		err error
	}

	ch := make(chan res, 1)

	go func() {
		aer, err := w.Wait(h, vub, nil)
		ch <- res{aer, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}

		if r.aer.VMState != vmstate.Halt {
			return r.aer, fmt.Errorf("%w: %s", ErrFault, r.aer.FaultException)
		}

		return r.aer, nil
	}
}

// ErrFault is returned when transaction is accepted but its script failed.
var ErrFault = errors.New("transaction faulted")

func checkPrm(prm Prm) error {
	switch {
	case prm.Logger == nil:
		return errors.New("missing logger")
	case prm.Blockchain == nil:
		return errors.New("missing blockchain")
	case prm.LocalAccount == nil:
		return errors.New("missing local account")
	case prm.Oracle.Equals(util.Uint160{}):
		return errors.New("missing oracle")
	case prm.MinReserve < 0:
		return fmt.Errorf("negative minimal reserve %d", prm.MinReserve)
	case prm.Contract.Manifest.Name == "":
		return errors.New("missing contract manifest")
	}

	return nil
}

func isErrContractNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound) || strings.Contains(err.Error(), "Unknown contract")
}
