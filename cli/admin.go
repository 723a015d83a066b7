package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/apis"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Send signed owner requests to a running oracle server",
	Long: `Owner operations are signed with PRIVATEKEY and sent to SERVER_URL.
The server rejects requests whose signer is not the current owner.`,
}

var setRegistryCmd = &cobra.Command{
	Use:   "set-registry <address>",
	Short: "Switch the oracle to another feed registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := parseAddress(args[0])
		if err != nil {
			return err
		}

		return withAdminClient(cmd, func(ctx context.Context, c *apis.AdminClient) error {
			return c.SetFeedRegistry(ctx, registry)
		})
	},
}

var setTimeGapsCmd = &cobra.Command{
	Use:   "set-time-gaps <asset=gap>...",
	Short: "Set the maximum reading age of one or more assets",
	Example: `  feedoracle admin set-time-gaps 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48=24h
  feedoracle admin set-time-gaps 0x1f98...=1h 0x7Fc6...=0s`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assets, gaps, err := parseTimeGaps(args)
		if err != nil {
			return err
		}

		return withAdminClient(cmd, func(ctx context.Context, c *apis.AdminClient) error {
			return c.SetTimeGaps(ctx, assets, gaps)
		})
	},
}

var setRemappingsCmd = &cobra.Command{
	Use:   "set-remappings <asset=target>...",
	Short: "Price one or more assets using another asset's feed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		assets, targets, err := parseRemappings(args)
		if err != nil {
			return err
		}

		return withAdminClient(cmd, func(ctx context.Context, c *apis.AdminClient) error {
			return c.SetTokenRemappings(ctx, assets, targets)
		})
	},
}

var transferOwnerCmd = &cobra.Command{
	Use:   "transfer-owner <address>",
	Short: "Hand the owner role to another address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := parseAddress(args[0])
		if err != nil {
			return err
		}

		return withAdminClient(cmd, func(ctx context.Context, c *apis.AdminClient) error {
			return c.TransferOwnership(ctx, owner)
		})
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(setRegistryCmd, setTimeGapsCmd, setRemappingsCmd, transferOwnerCmd)
}

func withAdminClient(cmd *cobra.Command, fn func(context.Context, *apis.AdminClient) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateAdmin(); err != nil {
		return err
	}

	key, err := cfg.SigningKey()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client := apis.NewAdminClient(cfg.ServerURL, key, log)
	if err := fn(cmd.Context(), client); err != nil {
		return err
	}

	log.Info("admin request accepted", zap.String("command", cmd.Name()), zap.Stringer("signer", client.Address()))
	fmt.Fprintln(cmd.OutOrStdout(), "ok")

	return nil
}

// splitPair splits an "address=value" argument
func splitPair(arg string) (common.Address, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || value == "" {
		return common.Address{}, "", fmt.Errorf("expected address=value, got %q", arg)
	}

	addr, err := parseAddress(key)
	if err != nil {
		return common.Address{}, "", err
	}

	return addr, value, nil
}

func parseTimeGaps(args []string) ([]common.Address, []time.Duration, error) {
	assets := make([]common.Address, 0, len(args))
	gaps := make([]time.Duration, 0, len(args))

	for _, arg := range args {
		asset, value, err := splitPair(arg)
		if err != nil {
			return nil, nil, err
		}

		gap, err := time.ParseDuration(value)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid time gap for %s: %w", asset, err)
		}

		assets = append(assets, asset)
		gaps = append(gaps, gap)
	}

	return assets, gaps, nil
}

func parseRemappings(args []string) ([]common.Address, []common.Address, error) {
	assets := make([]common.Address, 0, len(args))
	targets := make([]common.Address, 0, len(args))

	for _, arg := range args {
		asset, value, err := splitPair(arg)
		if err != nil {
			return nil, nil, err
		}

		target, err := parseAddress(value)
		if err != nil {
			return nil, nil, err
		}

		assets = append(assets, asset)
		targets = append(targets, target)
	}

	return assets, targets, nil
}
