package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ohlc-tracker/internal/config"
	"github.com/rxtech-lab/ohlc-tracker/internal/tracker"
	"github.com/rxtech-lab/ohlc-tracker/internal/version"
	"github.com/rxtech-lab/ohlc-tracker/pkg/dashboard"
)

const shutdownTimeout = 10 * time.Second

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	t, err := tracker.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	server := dashboard.NewServer(t, logger)
	if err := server.Start(cfg.Server.Addr); err != nil {
		return err
	}

	// Setup signal handling
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("received interrupt signal, stopping", zap.String("address", server.Address()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Stop(shutdownCtx)
}

func main() {
	cmd := &cli.Command{
		Name:    "server",
		Version: version.GetVersion(),
		Usage:   "Serve the OHLC dashboard API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config (defaults to $" + config.EnvConfigPath + ")",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.addr",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
