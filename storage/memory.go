package storage

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// MemoryStore is a Store backed by in-process maps
type MemoryStore struct {
	mu       sync.RWMutex
	registry *common.Address
	owner    *common.Address
	gaps     map[common.Address]time.Duration
	remaps   map[common.Address]common.Address
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		gaps:   make(map[common.Address]time.Duration),
		remaps: make(map[common.Address]common.Address),
	}
}

func (m *MemoryStore) Registry() (common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.registry == nil {
		return common.Address{}, ErrNotFound
	}

	return *m.registry, nil
}

func (m *MemoryStore) SetRegistry(registry common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registry = &registry

	return nil
}

func (m *MemoryStore) Owner() (common.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.owner == nil {
		return common.Address{}, ErrNotFound
	}

	return *m.owner, nil
}

func (m *MemoryStore) SetOwner(owner common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.owner = &owner

	return nil
}

func (m *MemoryStore) TimeGap(asset common.Address) (time.Duration, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	gap, ok := m.gaps[asset]

	return gap, ok, nil
}

// PutTimeGaps writes every pair under a single lock acquisition
func (m *MemoryStore) PutTimeGaps(assets []common.Address, gaps []time.Duration) error {
	if len(assets) != len(gaps) {
		return ErrLengthMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, asset := range assets {
		m.gaps[asset] = gaps[i]
	}

	return nil
}

func (m *MemoryStore) Remapping(asset common.Address) (common.Address, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target, ok := m.remaps[asset]

	return target, ok, nil
}

func (m *MemoryStore) PutRemappings(assets []common.Address, remaps []common.Address) error {
	if len(assets) != len(remaps) {
		return ErrLengthMismatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, asset := range assets {
		m.remaps[asset] = remaps[i]
	}

	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
