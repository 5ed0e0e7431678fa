// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math"
	"math/big"
	"math/bits"
)

// Time units, in seconds.
const (
	Day  uint64 = 24 * 60 * 60
	Year uint64 = 365 * Day
)

// Default farming limits. Factories and treasures store their own copy at deployment.
const (
	MinEpochDuration uint64 = 14 * Day // shortest reward epoch a factory accepts
	MinExitDelay     uint64 = 14 * Day // lower bound of the minimum staking exit time
	MaxExitDelay     uint64 = 30 * Day // upper bound of the minimum staking exit time
	MinLockDuration  uint64 = 14 * Day // shortest bond lock the treasure accepts

	MaxLockFee                   uint64 = 50  // percent of a bond kept as fee on unlock
	MaxUnlockCommissionPercent   uint64 = 50  // ceiling applied when the commission is changed
	UnlockCommissionPercentLimit uint64 = 100 // exclusive ceiling applied at factory construction
)

// PrecisionFactor scales the reward-per-token accumulator.
var PrecisionFactor = big.NewInt(1e18)

// Deadline returns start+duration, saturating at the largest representable time.
func Deadline(start, duration uint64) uint64 {
	end, carry := bits.Add64(start, duration, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return end
}
