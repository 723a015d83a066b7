// Package chains provides blockchain interaction implementations
package chains

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/sljivkov/feedoracle/contract"
	"github.com/sljivkov/feedoracle/domain"
	"github.com/sljivkov/feedoracle/oracle"
)

// feedNotFoundReason is the FeedRegistry revert reason for unknown pairs
const feedNotFoundReason = "Feed not found"

// RegistryClient implements domain.FeedRegistry over a deployed Chainlink
// FeedRegistry contract
type RegistryClient struct {
	address  common.Address
	contract *contract.FeedRegistryCaller
}

var _ domain.FeedRegistry = (*RegistryClient)(nil)

// NewRegistryClient binds the FeedRegistry deployed at address
func NewRegistryClient(address common.Address, caller bind.ContractCaller) (*RegistryClient, error) {
	registry, err := contract.NewFeedRegistryCaller(address, caller)
	if err != nil {
		return nil, fmt.Errorf("failed to bind feed registry %s: %w", address, err)
	}

	return &RegistryClient{
		address:  address,
		contract: registry,
	}, nil
}

// NewBinder returns an oracle.Binder creating RegistryClients on caller
func NewBinder(caller bind.ContractCaller) oracle.Binder {
	return func(registry common.Address) (domain.FeedRegistry, error) {
		return NewRegistryClient(registry, caller)
	}
}

// Dial connects to an Ethereum JSON-RPC endpoint
func Dial(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	return client, nil
}

// Address returns the registry contract address
func (r *RegistryClient) Address() common.Address {
	return r.address
}

// Decimals fetches the native decimals of the base/quote feed
func (r *RegistryClient) Decimals(ctx context.Context, base, quote common.Address) (uint8, error) {
	decimals, err := r.contract.Decimals(&bind.CallOpts{Context: ctx}, base, quote)
	if err != nil {
		return 0, r.callError("decimals", base, quote, err)
	}

	return decimals, nil
}

// LatestRoundData fetches the most recent reading of the base/quote feed
func (r *RegistryClient) LatestRoundData(ctx context.Context, base, quote common.Address) (domain.RoundData, error) {
	out, err := r.contract.LatestRoundData(&bind.CallOpts{Context: ctx}, base, quote)
	if err != nil {
		return domain.RoundData{}, r.callError("latestRoundData", base, quote, err)
	}

	if out.Answer == nil || out.UpdatedAt == nil {
		return domain.RoundData{}, fmt.Errorf("invalid round data received for %s/%s", base, quote)
	}

	return domain.RoundData{
		RoundID:         out.RoundId,
		Answer:          out.Answer,
		StartedAt:       unixTime(out.StartedAt),
		UpdatedAt:       unixTime(out.UpdatedAt),
		AnsweredInRound: out.AnsweredInRound,
	}, nil
}

func (r *RegistryClient) callError(method string, base, quote common.Address, err error) error {
	if isFeedNotFound(err) {
		return fmt.Errorf("%w: %s/%s: %w", domain.ErrFeedNotFound, base, quote, err)
	}

	return fmt.Errorf("registry %s %s(%s, %s) failed: %w", r.address, method, base, quote, err)
}

// isFeedNotFound reports whether err is the registry's "Feed not found"
// revert, decoding the revert data when the node returns it
func isFeedNotFound(err error) bool {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data, ok := dataErr.ErrorData().(string); ok {
			if raw, decErr := hexutil.Decode(data); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(raw); unpackErr == nil {
					return reason == feedNotFoundReason
				}
			}
		}
	}

	return strings.Contains(err.Error(), feedNotFoundReason)
}

func unixTime(seconds *big.Int) time.Time {
	if seconds == nil || !seconds.IsInt64() {
		return time.Time{}
	}

	return time.Unix(seconds.Int64(), 0)
}
