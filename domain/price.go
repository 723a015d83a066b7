// Package domain defines core interfaces and types for the feedoracle service
package domain

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// USD is the Chainlink Denominations.USD quote address (ISO 4217 code 840).
var USD = common.HexToAddress("0x0000000000000000000000000000000000000348")

// ErrFeedNotFound is returned by a FeedRegistry when no feed exists for the
// requested base/quote pair.
var ErrFeedNotFound = errors.New("Feed not found") //nolint:staticcheck // registry revert reason

// RoundData is a single latestRoundData reading from a feed
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int // Raw answer in the feed's native decimals
	StartedAt       time.Time
	UpdatedAt       time.Time // Time of the last feed update
	AnsweredInRound *big.Int
}

// FeedRegistry is the read-only price feed registry the oracle consults
type FeedRegistry interface {
	// Decimals returns the native decimal scale of the base/quote feed
	Decimals(ctx context.Context, base, quote common.Address) (uint8, error)

	// LatestRoundData returns the most recent reading of the base/quote feed.
	// It fails with ErrFeedNotFound when the pair is not configured.
	LatestRoundData(ctx context.Context, base, quote common.Address) (RoundData, error)
}
