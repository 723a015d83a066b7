// Package storage persists the oracle's configuration tables
package storage

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNotFound is returned when a singleton value has never been written
var ErrNotFound = errors.New("storage: not found")

// ErrLengthMismatch is returned by batch writers given parallel slices of
// different lengths
var ErrLengthMismatch = errors.New("storage: batch length mismatch")

// Store holds the registry reference, the owner and the per-asset tables.
// Batch writers are all-or-nothing.
type Store interface {
	Registry() (common.Address, error)
	SetRegistry(registry common.Address) error

	Owner() (common.Address, error)
	SetOwner(owner common.Address) error

	// TimeGap reports the configured staleness window for asset
	TimeGap(asset common.Address) (time.Duration, bool, error)
	PutTimeGaps(assets []common.Address, gaps []time.Duration) error

	// Remapping reports the feed asset queried in place of asset
	Remapping(asset common.Address) (common.Address, bool, error)
	PutRemappings(assets []common.Address, remaps []common.Address) error

	Close() error
}
