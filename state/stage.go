// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/whiteswap/farming/kv"
)

// Stage abstracts changes of a state, ready to be committed.
type Stage struct {
	stater  *Stater
	changes map[storageKey]rlp.RawValue
}

// Len returns the count of changed storage slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes into the store in one batch.
func (s *Stage) Commit() error {
	return s.CommitWith(nil)
}

// CommitWith writes all changes, plus whatever fn puts, into the store in one batch.
// The putter passed to fn writes to the raw store, not the storage bucket.
func (s *Stage) CommitWith(fn func(kv.Putter) error) error {
	bulk := s.stater.db.Bulk()
	storage := StorageBucket.NewPutter(bulk)

	for k, v := range s.changes {
		dbKey := storageDBKey(k.addr, k.key)
		if len(v) == 0 {
			if err := storage.Delete(dbKey); err != nil {
				return &Error{err}
			}
		} else if err := storage.Put(dbKey, v); err != nil {
			return &Error{err}
		}
	}
	if fn != nil {
		if err := fn(bulk); err != nil {
			return err
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	for k, v := range s.changes {
		s.stater.cacheStorage(storageDBKey(k.addr, k.key), v)
	}
	metricStorageCommit().Add(int64(len(s.changes)))
	return nil
}
