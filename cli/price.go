package cli

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/sljivkov/feedoracle/chains"
	"github.com/sljivkov/feedoracle/oracle"
)

// localOwner owns the throwaway adapter built for a single lookup
var localOwner = common.BytesToAddress([]byte("feedoracle"))

var (
	priceGap      time.Duration
	priceRemap    string
	priceRegistry string
)

var priceCmd = &cobra.Command{
	Use:   "price <asset>",
	Short: "Look up an asset price directly from the feed registry",
	Long: `Resolve a single asset price against the registry without a running
server. The time gap and optional remapping apply to this lookup only.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().DurationVar(&priceGap, "gap", time.Hour, "maximum accepted age of the reading")
	priceCmd.Flags().StringVar(&priceRemap, "remap", "", "query the feed of this asset instead")
	priceCmd.Flags().StringVar(&priceRegistry, "registry", "", "feed registry address (overrides REGISTRY)")
}

func runPrice(cmd *cobra.Command, args []string) error {
	asset, err := parseAddress(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RPCURL == "" {
		return fmt.Errorf("missing required configuration: RPC_URL")
	}

	registry := cfg.RegistryAddress()
	if priceRegistry != "" {
		if registry, err = parseAddress(priceRegistry); err != nil {
			return err
		}
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	client, err := chains.Dial(cmd.Context(), cfg.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	adapter, err := oracle.New(registry, localOwner, chains.NewBinder(client), oracle.WithLogger(log))
	if err != nil {
		return err
	}

	if err := adapter.SetTimeGaps(localOwner, []common.Address{asset}, []time.Duration{priceGap}); err != nil {
		return err
	}
	if priceRemap != "" {
		target, err := parseAddress(priceRemap)
		if err != nil {
			return err
		}
		if err := adapter.SetTokenRemappings(localOwner, []common.Address{asset}, []common.Address{target}); err != nil {
			return err
		}
	}

	price, err := adapter.GetPrice(cmd.Context(), asset)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", asset.Hex(), price.String(), formatPrice(price))

	return nil
}

// formatPrice renders an 18-decimal price as a decimal string
func formatPrice(price *big.Int) string {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(oracle.PriceDecimals), nil)

	return new(big.Rat).SetFrac(price, scale).FloatString(oracle.PriceDecimals)
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %s", s)
	}

	return common.HexToAddress(s), nil
}
