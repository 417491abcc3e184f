// Package main provides the arena command-line client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/trader-arena/internal/arena"
	"github.com/yourusername/trader-arena/internal/cache"
	"github.com/yourusername/trader-arena/internal/config"
	"github.com/yourusername/trader-arena/internal/logger"
	"github.com/yourusername/trader-arena/internal/metrics"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// viewTTL bounds how long a pool or bet view is served without a push update.
const viewTTL = time.Minute

var (
	configFile string
	log        *logrus.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Trader-vs-trader pool betting client",
	Long: `Browse head-to-head trader pools, quote and place SOL bets, compare
trader performance and follow live pool updates.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return setup(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(
		newPoolsCmd(),
		newQuoteCmd(),
		newBetCmd(),
		newBetsCmd(),
		newWatchCmd(),
		newBalanceCmd(),
		newTransferCmd(),
		newTradersCmd(),
		newVersionCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, overlays secrets and initialises logging and
// metrics for every command except version.
func setup(ctx context.Context) error {
	loaded, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if loaded.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(ctx, loaded); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(loaded); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = loaded
	log = logger.NewLogger(cfg.App.LogLevel)
	metrics.InitRegistry()

	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"api":         cfg.API.BaseURL,
		"network":     cfg.Solana.Network,
	}).Debug("Configuration loaded")

	return nil
}

// newBackend builds the cached backend client shared by the commands.
func newBackend() *arena.CachedClient {
	client := arena.NewClientFromConfig(cfg, log)
	return arena.NewCachedClient(client, cache.NewQueryCache(viewTTL), log)
}
