// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/qianbin/directcache"

	"github.com/whiteswap/farming/cache"
	"github.com/whiteswap/farming/kv"
	"github.com/whiteswap/farming/thor"
)

// StorageBucket is the kv bucket holding contract storage.
const StorageBucket = kv.Bucket("s")

// Stater is the state creator.
type Stater struct {
	db      kv.Store
	storage kv.Store
	cache   *directcache.Cache
	stats   cache.Stats
}

// NewStater create a new stater.
// cacheSizeMB sizes the read-through cache of raw storage values.
func NewStater(db kv.Store, cacheSizeMB int) *Stater {
	if cacheSizeMB < 1 {
		cacheSizeMB = 1
	}
	return &Stater{
		db:      db,
		storage: StorageBucket.NewStore(db),
		cache:   directcache.New(cacheSizeMB * 1024 * 1024),
	}
}

// NewState create a new state object on top of the committed storage.
func (s *Stater) NewState() *State {
	return newState(s)
}

// Store returns the underlying kv store.
func (s *Stater) Store() kv.Store {
	return s.db
}

// CacheStats returns hit/miss counters of the storage cache.
func (s *Stater) CacheStats() *cache.Stats {
	return &s.stats
}

func storageDBKey(addr thor.Address, key thor.Bytes32) []byte {
	return append(addr.Bytes(), key[:]...)
}

// getStorage loads the committed raw value of a storage slot.
// Cache entries carry a one byte presence flag so absent slots are cached too.
func (s *Stater) getStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	dbKey := storageDBKey(addr, key)

	var (
		val   rlp.RawValue
		found bool
	)
	if s.cache.AdvGet(dbKey, func(cached []byte) {
		if len(cached) > 0 && cached[0] == 1 {
			val = append(rlp.RawValue(nil), cached[1:]...)
		}
		found = true
	}, false) && found {
		s.stats.Hit()
		metricStorageRead().AddWithLabel(1, map[string]string{"source": "cache"})
		return val, nil
	}
	s.stats.Miss()
	metricStorageRead().AddWithLabel(1, map[string]string{"source": "store"})

	raw, err := s.storage.Get(dbKey)
	if err != nil {
		if !s.storage.IsNotFound(err) {
			return nil, err
		}
		raw = nil
	}
	s.cacheStorage(dbKey, raw)
	return raw, nil
}

func (s *Stater) cacheStorage(dbKey []byte, raw []byte) {
	if len(raw) == 0 {
		_ = s.cache.Set(dbKey, []byte{0})
		return
	}
	_ = s.cache.Set(dbKey, append([]byte{1}, raw...))
}
