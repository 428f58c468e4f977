package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// Config is a bridgectl configuration file.
type Config struct {
	RPC struct {
		Endpoint string        `yaml:"endpoint"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"rpc"`

	Wallet struct {
		Path     string `yaml:"path"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
	} `yaml:"wallet"`

	Bridge struct {
		Contract   string `yaml:"contract"`
		Artifacts  string `yaml:"artifacts"`
		Oracle     string `yaml:"oracle"`
		// Decimal GAS amount, the same form as --min-reserve flag takes.
		MinReserve string `yaml:"min_reserve"`
	} `yaml:"bridge"`

	Debug bool `yaml:"debug"`
}

const (
	defaultTimeout   = 15 * time.Second
	defaultArtifacts = "contracts"

	passwordEnv = "BRIDGE_WALLET_PASSWORD"
)

func defaultConfig() Config {
	var c Config
	c.RPC.Timeout = defaultTimeout
	c.Bridge.Artifacts = defaultArtifacts
	return c
}

// loadConfig reads YAML configuration from the given path. Empty path means
// default configuration.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, fmt.Errorf("decode config file %s: %w", path, err)
	}

	if c.RPC.Timeout <= 0 {
		c.RPC.Timeout = defaultTimeout
	}

	return c, nil
}

// applyFlags overrides configuration values with the explicitly set global
// flags and environment.
func (c *Config) applyFlags(ctx *cli.Context) {
	if v := ctx.GlobalString("rpc"); v != "" {
		c.RPC.Endpoint = v
	}
	if v := ctx.GlobalDuration("timeout"); v > 0 {
		c.RPC.Timeout = v
	}
	if v := ctx.GlobalString("wallet"); v != "" {
		c.Wallet.Path = v
	}
	if v := ctx.GlobalString("address"); v != "" {
		c.Wallet.Address = v
	}
	if v := ctx.GlobalString("contract"); v != "" {
		c.Bridge.Contract = v
	}
	if ctx.GlobalBool("debug") {
		c.Debug = true
	}
	if v, ok := os.LookupEnv(passwordEnv); ok {
		c.Wallet.Password = v
	}
}

// minReserve parses configured minimal reserve into GAS fractional units.
// Empty value means no reserve.
func (c Config) minReserve() (int64, error) {
	if c.Bridge.MinReserve == "" {
		return 0, nil
	}

	v, err := parseGAS(c.Bridge.MinReserve)
	if err != nil {
		return 0, fmt.Errorf("invalid minimal reserve: %w", err)
	}

	if !v.IsInt64() {
		return 0, fmt.Errorf("minimal reserve %s GAS is out of range", c.Bridge.MinReserve)
	}

	return v.Int64(), nil
}

// contractHash parses configured bridge contract address given either as
// Neo address or as LE hex script hash.
func (c Config) contractHash() (util.Uint160, error) {
	if c.Bridge.Contract == "" {
		return util.Uint160{}, fmt.Errorf("bridge contract is not configured")
	}

	return parseHash160(c.Bridge.Contract)
}
