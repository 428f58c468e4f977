package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

// remoteBlockchain wraps Neo RPC connection providing services needed by the
// commands.
type remoteBlockchain struct {
	rpc *rpcclient.Client
}

// dial opens Neo RPC connection. Connection and all requests are done within
// configured timeout.
func dial(ctx context.Context, cfg Config) (*remoteBlockchain, error) {
	if cfg.RPC.Endpoint == "" {
		return nil, errors.New("missing Neo RPC endpoint")
	}

	c, err := rpcclient.New(ctx, cfg.RPC.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.RPC.Timeout,
		RequestTimeout: cfg.RPC.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return &remoteBlockchain{rpc: c}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

func (x *remoteBlockchain) invoker() *invoker.Invoker {
	return invoker.New(x.rpc, nil)
}

// actor opens configured wallet and returns transaction sender signing with
// the selected account.
func (x *remoteBlockchain) actor(cfg Config) (*actor.Actor, *wallet.Account, error) {
	acc, err := openAccount(cfg)
	if err != nil {
		return nil, nil, err
	}

	act, err := actor.NewSimple(x.rpc, acc)
	if err != nil {
		return nil, nil, fmt.Errorf("init actor: %w", err)
	}

	return act, acc, nil
}

func openAccount(cfg Config) (*wallet.Account, error) {
	if cfg.Wallet.Path == "" {
		return nil, errors.New("missing wallet")
	}

	w, err := wallet.NewWalletFromFile(cfg.Wallet.Path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account
	if cfg.Wallet.Address != "" {
		h, err := parseHash160(cfg.Wallet.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid account: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", cfg.Wallet.Address)
		}
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
		if acc == nil {
			return nil, errors.New("wallet has no default account")
		}
	}

	err = acc.Decrypt(cfg.Wallet.Password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}

// parseHash160 parses Neo account given either as address or as 0x-prefixed
// LE hex script hash.
func parseHash160(s string) (util.Uint160, error) {
	if strings.HasPrefix(s, "0x") {
		return util.Uint160DecodeStringLE(s[2:])
	}

	if len(s) == 2*util.Uint160Size {
		return util.Uint160DecodeStringLE(s)
	}

	return address.StringToUint160(s)
}
