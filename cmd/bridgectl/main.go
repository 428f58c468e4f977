package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/gas-bridge/common"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "bridgectl"
	app.Usage = "GAS bridge contract management tool"
	app.Version = fmt.Sprintf("%d.%d.%d", common.Version/1_000_000, common.Version/1_000%1_000, common.Version%1_000)
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "Path to YAML configuration file"},
		cli.StringFlag{Name: "rpc, r", Usage: "Neo RPC server endpoint"},
		cli.DurationFlag{Name: "timeout, t", Usage: fmt.Sprintf("Timeout of RPC operations (default %s)", defaultTimeout)},
		cli.StringFlag{Name: "wallet, w", Usage: "Path to NEP-6 wallet"},
		cli.StringFlag{Name: "address, a", Usage: "Wallet account to sign transactions with"},
		cli.StringFlag{Name: "contract", Usage: "Bridge contract address or script hash"},
		cli.BoolFlag{Name: "debug, d", Usage: "Enable debug logging"},
	}
	app.Commands = []cli.Command{
		deployCommand(),
		lockCommand(),
		unlockCommand(),
		infoCommand(),
		balanceCommand(),
		eventsCommand(),
		decodeCommand(),
	}

	return app
}

// getConfig loads configuration file and applies global flags on top of it.
func getConfig(ctx *cli.Context) (Config, error) {
	cfg, err := loadConfig(ctx.GlobalString("config"))
	if err != nil {
		return cfg, err
	}

	cfg.applyFlags(ctx)

	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	c.Sampling = nil
	if debug {
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return c.Build()
}
