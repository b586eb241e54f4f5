// Package main is the intillasense command: the HTTP and Telegram tillage
// advisor plus a few one-shot maintenance commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand once the root command
// has loaded configuration.
type cli struct {
	configPath string
	envFile    string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "intillasense",
		Short: "Tillage recommendations for known farms",
		Long: `IntillaSense answers farmers' tillage questions with a language model,
grounded in the profile, equipment and soil notes of the selected farm.

Run "intillasense serve" to start the HTTP API (and the Telegram bot when
enabled), or use "ask" for a one-shot recommendation from the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config.yaml (default ./config.yaml when present)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(c),
		newFarmsCmd(c),
		newAskCmd(c),
		newExchangesCmd(c),
	)
	return root
}

// init loads the dotenv file, configuration and logger.
func (c *cli) init() error {
	if c.envFile != "" {
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", c.envFile, err)
		}
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger.Level, cfg.Logger.JSON)
	if err != nil {
		return err
	}
	log.Debug("Configuration loaded",
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model),
		zap.String("db_path", cfg.Database.Path))

	c.cfg = cfg
	c.log = log
	return nil
}
