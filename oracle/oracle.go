// Package oracle resolves normalized, staleness-checked asset prices from a
// Chainlink feed registry.
//
// Every asset must have a time gap configured before it can be priced. An
// asset may be remapped so that the registry is queried for another asset's
// feed; the staleness check still uses the time gap of the asset that was
// requested. Prices are returned at a fixed 18-decimal scale.
package oracle

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"

	"github.com/sljivkov/feedoracle/domain"
	"github.com/sljivkov/feedoracle/metrics"
	"github.com/sljivkov/feedoracle/storage"
)

const (
	// MaxTimeGap is the ceiling on any configured time gap
	MaxTimeGap = 24 * time.Hour

	// PriceDecimals is the fixed scale of every returned price
	PriceDecimals = 18
)

var priceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(PriceDecimals), nil)

// Binder returns the registry collaborator living at a registry address
type Binder func(registry common.Address) (domain.FeedRegistry, error)

// Adapter is the price oracle adapter. Reads are safe for concurrent use;
// owner-gated mutations are serialized.
type Adapter struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	registry common.Address
	feeds    domain.FeedRegistry
	owner    common.Address

	bind   Binder
	store  storage.Store
	now    func() time.Time
	log    *zap.Logger
	events event.Feed
}

// Option configures an Adapter
type Option func(*Adapter)

// WithStore sets the store holding the configuration tables
func WithStore(store storage.Store) Option {
	return func(a *Adapter) {
		a.store = store
	}
}

// WithClock sets the time source used for staleness checks
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		a.now = now
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(a *Adapter) {
		a.log = log
	}
}

// New creates an Adapter reading from the registry at the given address.
// Tables already present in the store are kept.
func New(registry, owner common.Address, bind Binder, opts ...Option) (*Adapter, error) {
	if registry == (common.Address{}) {
		return nil, ErrInvalidRegistry
	}
	if owner == (common.Address{}) {
		return nil, ErrInvalidOwner
	}

	a := &Adapter{
		registry: registry,
		owner:    owner,
		bind:     bind,
		store:    storage.NewMemoryStore(),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	feeds, err := a.bind(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to bind registry %s: %w", registry, err)
	}
	a.feeds = feeds

	if err := a.store.SetRegistry(registry); err != nil {
		return nil, fmt.Errorf("failed to store registry: %w", err)
	}
	if err := a.store.SetOwner(owner); err != nil {
		return nil, fmt.Errorf("failed to store owner: %w", err)
	}

	return a, nil
}

// Registry returns the address of the registry in use
func (a *Adapter) Registry() common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.registry
}

// Owner returns the address allowed to mutate the adapter
func (a *Adapter) Owner() common.Address {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.owner
}

// TimeGap returns the configured time gap for asset, if any
func (a *Adapter) TimeGap(asset common.Address) (time.Duration, bool, error) {
	return a.store.TimeGap(asset)
}

// Remapping returns the asset whose feed is queried for asset. Without an
// explicit remapping that is asset itself.
func (a *Adapter) Remapping(asset common.Address) (common.Address, error) {
	target, ok, err := a.store.Remapping(asset)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return asset, nil
	}

	return target, nil
}

// SubscribeEvents delivers every emitted Event to ch until the subscription
// is cancelled. Sends block until ch accepts, so use a buffered channel.
func (a *Adapter) SubscribeEvents(ch chan<- Event) event.Subscription {
	return a.events.Subscribe(ch)
}

func (a *Adapter) onlyOwner(caller common.Address) error {
	if caller != a.Owner() {
		return ErrUnauthorized
	}

	return nil
}

// SetFeedRegistry switches the adapter to another registry
func (a *Adapter) SetFeedRegistry(caller, registry common.Address) (err error) {
	defer func() { metrics.RecordAdminCall("set_feed_registry", err == nil) }()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if registry == (common.Address{}) {
		return ErrInvalidRegistry
	}

	feeds, err := a.bind(registry)
	if err != nil {
		return fmt.Errorf("failed to bind registry %s: %w", registry, err)
	}
	if err := a.store.SetRegistry(registry); err != nil {
		return fmt.Errorf("failed to store registry: %w", err)
	}

	a.mu.Lock()
	a.registry = registry
	a.feeds = feeds
	a.mu.Unlock()

	a.log.Info("feed registry changed", zap.Stringer("registry", registry))
	a.events.Send(Event{Kind: EventRegistryChanged, Registry: registry})

	return nil
}

// SetTimeGaps sets the maximum reading age for each asset. Gaps must be whole
// seconds. Either every pair is written or none is.
func (a *Adapter) SetTimeGaps(caller common.Address, assets []common.Address, gaps []time.Duration) (err error) {
	defer func() { metrics.RecordAdminCall("set_time_gaps", err == nil) }()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if len(assets) != len(gaps) {
		return ErrArrayLengthMismatch
	}

	for i, asset := range assets {
		if asset == (common.Address{}) {
			return fmt.Errorf("%w at index %d", ErrInvalidAsset, i)
		}
		if gaps[i] < 0 {
			return fmt.Errorf("%w at index %d: %s", ErrInvalidGap, i, gaps[i])
		}
		// gaps are kept at second precision
		if gaps[i]%time.Second != 0 {
			return fmt.Errorf("%w at index %d: %s is not a whole number of seconds", ErrInvalidGap, i, gaps[i])
		}
		if gaps[i] > MaxTimeGap {
			return &GapTooLargeError{Gap: gaps[i]}
		}
	}

	assets = append([]common.Address(nil), assets...)
	gaps = append([]time.Duration(nil), gaps...)

	if err := a.store.PutTimeGaps(assets, gaps); err != nil {
		return fmt.Errorf("failed to store time gaps: %w", err)
	}

	a.log.Info("time gaps set", zap.Stringers("assets", assets), zap.Durations("gaps", gaps))
	a.events.Send(Event{Kind: EventTimeGapSet, Assets: assets, Gaps: gaps})

	return nil
}

// SetTokenRemappings makes price lookups for assets[i] query the feed of
// remaps[i]. Either every pair is written or none is.
func (a *Adapter) SetTokenRemappings(caller common.Address, assets, remaps []common.Address) (err error) {
	defer func() { metrics.RecordAdminCall("set_token_remappings", err == nil) }()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if len(assets) != len(remaps) {
		return ErrArrayLengthMismatch
	}

	for i := range assets {
		if assets[i] == (common.Address{}) || remaps[i] == (common.Address{}) {
			return fmt.Errorf("%w at index %d", ErrInvalidAsset, i)
		}
	}

	assets = append([]common.Address(nil), assets...)
	remaps = append([]common.Address(nil), remaps...)

	if err := a.store.PutRemappings(assets, remaps); err != nil {
		return fmt.Errorf("failed to store remappings: %w", err)
	}

	a.log.Info("token remappings set", zap.Stringers("assets", assets), zap.Stringers("remaps", remaps))
	a.events.Send(Event{Kind: EventTokenRemapSet, Assets: assets, Remaps: remaps})

	return nil
}

// TransferOwnership hands the owner role to newOwner
func (a *Adapter) TransferOwnership(caller, newOwner common.Address) (err error) {
	defer func() { metrics.RecordAdminCall("transfer_ownership", err == nil) }()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := a.onlyOwner(caller); err != nil {
		return err
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidOwner
	}

	if err := a.store.SetOwner(newOwner); err != nil {
		return fmt.Errorf("failed to store owner: %w", err)
	}

	a.mu.Lock()
	previous := a.owner
	a.owner = newOwner
	a.mu.Unlock()

	a.log.Info("ownership transferred", zap.Stringer("from", previous), zap.Stringer("to", newOwner))
	a.events.Send(Event{Kind: EventOwnershipTransferred, PreviousOwner: previous, NewOwner: newOwner})

	return nil
}

func (a *Adapter) currentFeeds() domain.FeedRegistry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.feeds
}

// GetPrice returns the USD price of asset with PriceDecimals decimals.
//
// Registry errors, domain.ErrFeedNotFound included, are returned unchanged.
func (a *Adapter) GetPrice(ctx context.Context, asset common.Address) (*big.Int, error) {
	gap, ok, err := a.store.TimeGap(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to read time gap: %w", err)
	}
	// a zero gap disables the asset
	if !ok || gap == 0 {
		metrics.RecordPriceLookup(metrics.ResultNoMaxDelay)

		return nil, &NoMaxDelayError{Asset: asset}
	}

	target, err := a.Remapping(asset)
	if err != nil {
		return nil, fmt.Errorf("failed to read remapping: %w", err)
	}

	feeds := a.currentFeeds()

	start := time.Now()
	round, err := feeds.LatestRoundData(ctx, target, domain.USD)
	metrics.ObserveRegistryCall("latestRoundData", time.Since(start))
	if err != nil {
		metrics.RecordPriceLookup(metrics.ResultRegistry)

		return nil, err
	}

	start = time.Now()
	decimals, err := feeds.Decimals(ctx, target, domain.USD)
	metrics.ObserveRegistryCall("decimals", time.Since(start))
	if err != nil {
		metrics.RecordPriceLookup(metrics.ResultRegistry)

		return nil, err
	}

	if age := a.now().Sub(round.UpdatedAt); age > gap {
		metrics.RecordPriceLookup(metrics.ResultOutdated)
		a.log.Debug("price outdated",
			zap.Stringer("asset", asset),
			zap.Stringer("target", target),
			zap.Duration("age", age),
			zap.Duration("gap", gap),
		)

		return nil, &PriceOutdatedError{Asset: asset, UpdatedAt: round.UpdatedAt, Gap: gap}
	}

	if round.Answer == nil || round.Answer.Sign() < 0 {
		metrics.RecordPriceLookup(metrics.ResultInvalid)

		return nil, &InvalidAnswerError{Asset: asset, Answer: round.Answer}
	}

	price := Normalize(round.Answer, decimals)
	metrics.RecordPriceLookup(metrics.ResultOK)
	a.log.Debug("price resolved",
		zap.Stringer("asset", asset),
		zap.Stringer("target", target),
		zap.Stringer("price", price),
	)

	return price, nil
}

// Normalize rescales answer from decimals to PriceDecimals, truncating when
// the feed is more precise.
func Normalize(answer *big.Int, decimals uint8) *big.Int {
	price := new(big.Int).Mul(answer, priceScale)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	return price.Quo(price, scale)
}
