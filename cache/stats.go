// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache hits and misses.
type Stats struct {
	hit, miss atomic.Int64
	lastRate  atomic.Int32 // permille hit rate of the previous snapshot
}

// Snapshot is a point in time view of Stats.
type Snapshot struct {
	Hit  int64
	Miss int64
	// RateChanged reports whether the hit rate moved by 0.1% or more since the previous snapshot.
	RateChanged bool
}

// HitRate returns hits over lookups, 0 without lookups.
func (s Snapshot) HitRate() float64 {
	lookups := s.Hit + s.Miss
	if lookups == 0 {
		return 0
	}
	return float64(s.Hit) / float64(lookups)
}

// Hit records a hit.
func (cs *Stats) Hit() int64 { return cs.hit.Add(1) }

// Miss records a miss.
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Snapshot returns the counters.
func (cs *Stats) Snapshot() Snapshot {
	s := Snapshot{Hit: cs.hit.Load(), Miss: cs.miss.Load()}
	rate := int32(s.HitRate() * 1000)
	s.RateChanged = cs.lastRate.Swap(rate) != rate
	return s
}
