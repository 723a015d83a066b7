package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	registryKey = []byte("registry")
	ownerKey    = []byte("owner")
	gapPrefix   = []byte("gap:")
	remapPrefix = []byte("remap:")
)

// LevelDBStore is a Store persisted in a LevelDB database.
// Time gaps are stored with second precision.
type LevelDBStore struct {
	db *leveldb.DB
}

var _ Store = (*LevelDBStore)(nil)

// NewLevelDBStore opens (or creates) the database at path
func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}

	return &LevelDBStore{db: db}, nil
}

func assetKey(prefix []byte, asset common.Address) []byte {
	key := make([]byte, 0, len(prefix)+common.AddressLength)
	key = append(key, prefix...)

	return append(key, asset.Bytes()...)
}

func (s *LevelDBStore) getAddress(key []byte) (common.Address, bool, error) {
	data, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Address{}, false, nil
	}
	if err != nil {
		return common.Address{}, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if len(data) != common.AddressLength {
		return common.Address{}, false, fmt.Errorf("corrupted address at %q: %d bytes", key, len(data))
	}

	return common.BytesToAddress(data), true, nil
}

func (s *LevelDBStore) Registry() (common.Address, error) {
	addr, ok, err := s.getAddress(registryKey)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, ErrNotFound
	}

	return addr, nil
}

func (s *LevelDBStore) SetRegistry(registry common.Address) error {
	if err := s.db.Put(registryKey, registry.Bytes(), nil); err != nil {
		return fmt.Errorf("failed to store registry: %w", err)
	}

	return nil
}

func (s *LevelDBStore) Owner() (common.Address, error) {
	addr, ok, err := s.getAddress(ownerKey)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, ErrNotFound
	}

	return addr, nil
}

func (s *LevelDBStore) SetOwner(owner common.Address) error {
	if err := s.db.Put(ownerKey, owner.Bytes(), nil); err != nil {
		return fmt.Errorf("failed to store owner: %w", err)
	}

	return nil
}

func (s *LevelDBStore) TimeGap(asset common.Address) (time.Duration, bool, error) {
	data, err := s.db.Get(assetKey(gapPrefix, asset), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read time gap for %s: %w", asset, err)
	}
	if len(data) != 8 {
		return 0, false, fmt.Errorf("corrupted time gap for %s: %d bytes", asset, len(data))
	}

	seconds := binary.BigEndian.Uint64(data)

	return time.Duration(seconds) * time.Second, true, nil
}

// PutTimeGaps commits every pair in one leveldb batch
func (s *LevelDBStore) PutTimeGaps(assets []common.Address, gaps []time.Duration) error {
	if len(assets) != len(gaps) {
		return ErrLengthMismatch
	}

	batch := new(leveldb.Batch)
	for i, asset := range assets {
		var value [8]byte
		binary.BigEndian.PutUint64(value[:], uint64(gaps[i]/time.Second))
		batch.Put(assetKey(gapPrefix, asset), value[:])
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write time gaps: %w", err)
	}

	return nil
}

func (s *LevelDBStore) Remapping(asset common.Address) (common.Address, bool, error) {
	return s.getAddress(assetKey(remapPrefix, asset))
}

// PutRemappings commits every pair in one leveldb batch
func (s *LevelDBStore) PutRemappings(assets []common.Address, remaps []common.Address) error {
	if len(assets) != len(remaps) {
		return ErrLengthMismatch
	}

	batch := new(leveldb.Batch)
	for i, asset := range assets {
		batch.Put(assetKey(remapPrefix, asset), remaps[i].Bytes())
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to write remappings: %w", err)
	}

	return nil
}

// Close closes the underlying database
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
