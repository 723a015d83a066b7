// Package cli implements the feedoracle command tree
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/config"
)

var (
	// Global flags
	envFile   string
	rpcURL    string
	serverURL string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "feedoracle",
	Short: "Chainlink feed registry price oracle",
	Long: `feedoracle resolves asset prices from a Chainlink Feed Registry,
rejecting readings older than each asset's configured time gap and
returning every price at 18 decimals.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load configuration from a .env file")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "Ethereum JSON-RPC endpoint (overrides RPC_URL)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "oracle server URL for admin commands (overrides SERVER_URL)")
}

// loadConfig builds the configuration from the environment and global flags
func loadConfig() (*config.Config, error) {
	var opts []config.Option
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if rpcURL != "" {
		opts = append(opts, config.WithRPCURL(rpcURL))
	}
	if serverURL != "" {
		opts = append(opts, config.WithServerURL(serverURL))
	}

	return config.NewConfig(opts...)
}

// newLogger returns a production zap logger at the configured level
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(cfg.Level())

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return log, nil
}
