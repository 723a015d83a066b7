package oracle

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventKind names an adapter state change
type EventKind string

const (
	EventRegistryChanged      EventKind = "RegistryChanged"
	EventTimeGapSet           EventKind = "TimeGapSet"
	EventTokenRemapSet        EventKind = "TokenRemapSet"
	EventOwnershipTransferred EventKind = "OwnershipTransferred"
)

// Event is emitted after every successful owner-gated mutation.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind

	Registry common.Address // RegistryChanged

	Assets []common.Address // TimeGapSet, TokenRemapSet
	Gaps   []time.Duration  // TimeGapSet
	Remaps []common.Address // TokenRemapSet

	PreviousOwner common.Address // OwnershipTransferred
	NewOwner      common.Address // OwnershipTransferred
}
