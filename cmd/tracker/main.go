package main

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/rxtech-lab/ohlc-tracker/internal/config"
	"github.com/rxtech-lab/ohlc-tracker/internal/logger"
	"github.com/rxtech-lab/ohlc-tracker/internal/tracker"
	"github.com/rxtech-lab/ohlc-tracker/internal/version"
)

func runAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	// The UI owns the terminal, so nothing is logged.
	t, err := tracker.NewFromConfig(cfg, logger.NewNop())
	if err != nil {
		return err
	}

	_, err = tea.NewProgram(NewModel(t), tea.WithAltScreen()).Run()

	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "tracker",
		Version: version.GetVersion(),
		Usage:   "Interactive OHLC session tracker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config (defaults to $" + config.EnvConfigPath + ")",
			},
		},
		Action: runAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
