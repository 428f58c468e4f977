package main

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nspcc-dev/gas-bridge/contracts"
	"github.com/nspcc-dev/gas-bridge/contracts/bridge/bridgeconst"
	"github.com/nspcc-dev/gas-bridge/deploy"
	rpcbridge "github.com/nspcc-dev/gas-bridge/rpc/bridge"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// GAS precision.
const gasDecimals = 8

func deployCommand() cli.Command {
	return cli.Command{
		Name:  "deploy",
		Usage: "Deploy bridge contract from the compiled artifacts",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "oracle", Usage: "Account allowed to unlock GAS"},
			cli.StringFlag{Name: "min-reserve", Usage: "Amount of GAS never unlocked (e.g. 0.5)"},
			cli.StringFlag{Name: "artifacts", Usage: "Directory containing 'bridge' subdirectory with contract.nef and manifest.json"},
		},
		Action: runDeploy,
	}
}

func lockCommand() cli.Command {
	return cli.Command{
		Name:  "lock",
		Usage: "Lock GAS for the destination chain account",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "amount", Usage: "Amount of GAS to lock (e.g. 2)"},
			cli.StringFlag{Name: "to", Usage: "Destination chain account (0x-prefixed hex or base58check)"},
			cli.UintFlag{Name: "chain", Usage: "Destination chain ID"},
			cli.StringFlag{Name: "request-id", Usage: "Request ID (random if not set)"},
		},
		Action: runLock,
	}
}

func unlockCommand() cli.Command {
	return cli.Command{
		Name:  "unlock",
		Usage: "Unlock GAS to the Neo account (must be signed by the oracle)",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "amount", Usage: "Amount of GAS to unlock (e.g. 2)"},
			cli.StringFlag{Name: "to", Usage: "Destination Neo account"},
			cli.StringFlag{Name: "fee", Usage: "Amount of GAS attached to the message", Value: "0"},
			cli.StringFlag{Name: "request-id", Usage: "Request ID (random if not set)"},
		},
		Action: runUnlock,
	}
}

func infoCommand() cli.Command {
	return cli.Command{
		Name:   "info",
		Usage:  "Print bridge contract state",
		Action: runInfo,
	}
}

func balanceCommand() cli.Command {
	return cli.Command{
		Name:      "balance",
		Usage:     "Print GAS balance of the Neo account (bridge contract by default)",
		ArgsUsage: "[account]",
		Action:    runBalance,
	}
}

func eventsCommand() cli.Command {
	return cli.Command{
		Name:      "events",
		Usage:     "Print bridge events emitted by the transaction",
		ArgsUsage: "<tx hash>",
		Action:    runEvents,
	}
}

func decodeCommand() cli.Command {
	return cli.Command{
		Name:      "decode",
		Usage:     "Decode hex-encoded bridge message or Lock event record",
		ArgsUsage: "<hex>",
		Action:    runDecode,
	}
}

// commandEnv groups resources shared by the network commands.
type commandEnv struct {
	cfg    Config
	log    *zap.Logger
	chain  *remoteBlockchain
	cancel context.CancelFunc
	ctx    context.Context
}

func newCommandEnv(c *cli.Context) (*commandEnv, error) {
	cfg, err := getConfig(c)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, cli.NewExitError(fmt.Errorf("init logger: %w", err), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	chain, err := dial(ctx, cfg)
	if err != nil {
		cancel()
		return nil, cli.NewExitError(err, 1)
	}

	return &commandEnv{cfg: cfg, log: log, chain: chain, ctx: ctx, cancel: cancel}, nil
}

func (e *commandEnv) close() {
	e.chain.close()
	e.cancel()
	_ = e.log.Sync()
}

func runDeploy(c *cli.Context) error {
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	if v := c.String("oracle"); v != "" {
		env.cfg.Bridge.Oracle = v
	}
	if v := c.String("artifacts"); v != "" {
		env.cfg.Bridge.Artifacts = v
	}
	if v := c.String("min-reserve"); v != "" {
		env.cfg.Bridge.MinReserve = v
	}

	reserve, err := env.cfg.minReserve()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if env.cfg.Bridge.Oracle == "" {
		return cli.NewExitError("missing oracle", 1)
	}

	oracle, err := parseHash160(env.cfg.Bridge.Oracle)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid oracle: %w", err), 1)
	}

	ctr, err := contracts.GetBridge(env.cfg.Bridge.Artifacts)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("read contract artifacts: %w", err), 1)
	}

	acc, err := openAccount(env.cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	addr, err := deploy.Deploy(env.ctx, deploy.Prm{
		Logger:       env.log,
		Blockchain:   env.chain.rpc,
		LocalAccount: acc,
		Contract: deploy.CommonDeployPrm{
			NEF:      ctr.NEF,
			Manifest: ctr.Manifest,
		},
		Oracle:     oracle,
		MinReserve: reserve,
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(c.App.Writer, "Contract: %s (0x%s)\n", address.Uint160ToString(addr), addr.StringLE())

	return nil
}

func runLock(c *cli.Context) error {
	amount, err := parseGAS(c.String("amount"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid amount: %w", err), 1)
	}
	if amount.Sign() <= 0 || !amount.IsUint64() {
		return cli.NewExitError(fmt.Errorf("lock amount %s is out of range", fixedn.ToString(amount, gasDecimals)), 1)
	}

	dst, err := rpcbridge.ParseForeignAddress(c.String("to"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid destination: %w", err), 1)
	}

	chainID := c.Uint("chain")
	if chainID > 0xff {
		return cli.NewExitError(fmt.Errorf("chain ID %d does not fit into a byte", chainID), 1)
	}

	reqID, err := requestID(c.String("request-id"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	msg := rpcbridge.LockMessage{
		RequestID:   reqID,
		Destination: dst,
		ChainID:     uint8(chainID),
	}

	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	bridge, act, err := env.bridge()
	if err != nil {
		return err
	}

	env.log.Info("locking GAS...", zap.Uint64("request", reqID),
		zap.Stringer("destination", dst), zap.Uint8("chain", msg.ChainID),
		zap.String("amount", fixedn.ToString(amount, gasDecimals)))

	h, vub, err := bridge.Lock(amount, msg)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("send lock transaction: %w", err), 1)
	}

	aer, err := deploy.Await(env.ctx, act, h, vub)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("lock transaction %s: %w", h.StringLE(), err), 1)
	}

	env.log.Info("GAS successfully locked", zap.Stringer("tx", h))

	return printEvents(c.App.Writer, h, aer)
}

func runUnlock(c *cli.Context) error {
	amount, err := parseGAS(c.String("amount"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid amount: %w", err), 1)
	}
	if amount.Sign() <= 0 || !amount.IsUint64() {
		return cli.NewExitError(fmt.Errorf("unlock amount %s is out of range", fixedn.ToString(amount, gasDecimals)), 1)
	}

	fee, err := parseGAS(c.String("fee"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid fee: %w", err), 1)
	}

	dst, err := parseHash160(c.String("to"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid destination: %w", err), 1)
	}

	reqID, err := requestID(c.String("request-id"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	bridge, act, err := env.bridge()
	if err != nil {
		return err
	}

	processed, err := bridge.IsProcessed(reqID)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("check request state: %w", err), 1)
	}
	if processed {
		return cli.NewExitError(fmt.Errorf("request %d: %s", reqID, bridgeconst.ErrRequestProcessed), 1)
	}

	env.log.Info("unlocking GAS...", zap.Uint64("request", reqID),
		zap.Stringer("destination", dst),
		zap.String("amount", fixedn.ToString(amount, gasDecimals)),
		zap.String("fee", fixedn.ToString(fee, gasDecimals)))

	h, vub, err := bridge.Unlock(fee, rpcbridge.UnlockMessage{
		RequestID:   reqID,
		Destination: dst,
		Amount:      amount.Uint64(),
	})
	if err != nil {
		return cli.NewExitError(fmt.Errorf("send unlock transaction: %w", err), 1)
	}

	aer, err := deploy.Await(env.ctx, act, h, vub)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("unlock transaction %s: %w", h.StringLE(), err), 1)
	}

	env.log.Info("GAS successfully unlocked", zap.Stringer("tx", h))

	return printEvents(c.App.Writer, h, aer)
}

func runInfo(c *cli.Context) error {
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	h, err := env.cfg.contractHash()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	r := rpcbridge.NewReader(env.chain.invoker(), h)

	oracle, err := r.Oracle()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get oracle: %w", err), 1)
	}

	reserve, err := r.MinReserve()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get minimal reserve: %w", err), 1)
	}

	custody, err := r.Custody()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get custody: %w", err), 1)
	}

	version, err := r.Version()
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get version: %w", err), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Contract:    %s\n", address.Uint160ToString(h))
	fmt.Fprintf(w, "Version:     %s\n", version)
	fmt.Fprintf(w, "Oracle:      %s\n", address.Uint160ToString(oracle))
	fmt.Fprintf(w, "Custody:     %s GAS\n", fixedn.ToString(custody, gasDecimals))
	fmt.Fprintf(w, "Min reserve: %s GAS\n", fixedn.ToString(reserve, gasDecimals))

	return nil
}

func runBalance(c *cli.Context) error {
	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	var h util.Uint160
	if c.NArg() > 0 {
		h, err = parseHash160(c.Args().First())
	} else {
		h, err = env.cfg.contractHash()
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	b, err := gas.NewReader(env.chain.invoker()).BalanceOf(h)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get GAS balance: %w", err), 1)
	}

	fmt.Fprintf(c.App.Writer, "%s: %s GAS\n", address.Uint160ToString(h), fixedn.ToString(b, gasDecimals))

	return nil
}

func runEvents(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("transaction hash expected", 1)
	}

	h, err := util.Uint256DecodeStringLE(strings.TrimPrefix(c.Args().First(), "0x"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid transaction hash: %w", err), 1)
	}

	env, err := newCommandEnv(c)
	if err != nil {
		return err
	}
	defer env.close()

	log, err := env.chain.rpc.GetApplicationLog(h, nil)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("get application log: %w", err), 1)
	}

	return writeEvents(c.App.Writer, log)
}

func runDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("hex data expected", 1)
	}

	b, err := hex.DecodeString(strings.TrimPrefix(c.Args().First(), "0x"))
	if err != nil {
		return cli.NewExitError(fmt.Errorf("invalid hex: %w", err), 1)
	}

	err = decode(c.App.Writer, b)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

// decode prints bridge message or Lock record in human-readable form.
func decode(w io.Writer, b []byte) error {
	if len(b) == bridgeconst.LockRecordSize {
		var e rpcbridge.LockEvent
		if e.DecodeBytes(b) == nil {
			printLock(w, e)
			return nil
		}
	}

	h, _, err := rpcbridge.DecodeHeader(b)
	if err != nil {
		return err
	}

	switch h.OpCode {
	case bridgeconst.OpLock:
		m, err := rpcbridge.DecodeLockMessage(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Lock request %d: to %s on chain %d\n", m.RequestID, m.Destination, m.ChainID)
	case bridgeconst.OpUnlock:
		m, err := rpcbridge.DecodeUnlockMessage(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Unlock request %d: %s GAS to %s\n", m.RequestID,
			fixedn.ToString(new(big.Int).SetUint64(m.Amount), gasDecimals), address.Uint160ToString(m.Destination))
	default:
		return fmt.Errorf("%w: %d", rpcbridge.ErrUnknownOperation, h.OpCode)
	}

	return nil
}

func (e *commandEnv) bridge() (*rpcbridge.Contract, *actor.Actor, error) {
	h, err := e.cfg.contractHash()
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}

	act, _, err := e.chain.actor(e.cfg)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}

	return rpcbridge.New(act, h), act, nil
}

func printEvents(w io.Writer, h util.Uint256, aer *state.AppExecResult) error {
	return writeEvents(w, &result.ApplicationLog{
		Container:  h,
		Executions: []state.Execution{aer.Execution},
	})
}

func writeEvents(w io.Writer, log *result.ApplicationLog) error {
	locks, err := rpcbridge.LockEventsFromApplicationLog(log)
	if err != nil {
		return err
	}

	unlocks, err := rpcbridge.UnlockEventsFromApplicationLog(log)
	if err != nil {
		return err
	}

	for _, e := range locks {
		printLock(w, *e)
	}

	for _, e := range unlocks {
		fmt.Fprintf(w, "Unlock request %d: %s GAS to %s\n", e.RequestID,
			fixedn.ToString(e.Amount, gasDecimals), address.Uint160ToString(e.Destination))
	}

	if len(locks)+len(unlocks) == 0 {
		fmt.Fprintln(w, "No bridge events")
	}

	return nil
}

func printLock(w io.Writer, e rpcbridge.LockEvent) {
	fmt.Fprintf(w, "Lock: %s GAS from %s to %s on chain %d\n",
		fixedn.ToString(new(big.Int).SetUint64(e.Value), gasDecimals),
		address.Uint160ToString(e.Sender), e.Destination, e.ChainID)
}

func parseGAS(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("missing value")
	}

	v, err := fixedn.FromString(s, gasDecimals)
	if err != nil {
		return nil, err
	}

	if v.Sign() < 0 {
		return nil, errors.New("negative value")
	}

	return v, nil
}

// requestID parses decimal request ID or generates a random one if s is empty.
func requestID(s string) (uint64, error) {
	if s == "" {
		id := uuid.New()
		return binary.BigEndian.Uint64(id[:8]), nil
	}

	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid request ID %q: %w", s, err)
	}

	return id, nil
}
