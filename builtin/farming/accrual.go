// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farming

import (
	"math/big"

	"github.com/whiteswap/farming/thor"
)

// accrual is the global reward checkpoint of a pool.
// All divisions truncate.
type accrual struct {
	endDate     uint64
	rate        *big.Int
	stored      *big.Int // reward per token, scaled by thor.PrecisionFactor
	lastUpdate  uint64
	totalSupply *big.Int
}

// lastTimeRewardApplicable caps accrual at the end of the epoch.
func (a *accrual) lastTimeRewardApplicable(now uint64) uint64 {
	return min(now, a.endDate)
}

// rewardPerToken projects the accumulator to now without committing it.
// Nothing accrues while nobody is staked, or before lastUpdate.
func (a *accrual) rewardPerToken(now uint64) *big.Int {
	applicable := a.lastTimeRewardApplicable(now)
	if a.totalSupply.Sign() == 0 || applicable <= a.lastUpdate {
		return new(big.Int).Set(a.stored)
	}
	rpt := new(big.Int).SetUint64(applicable - a.lastUpdate)
	rpt.Mul(rpt, a.rate)
	rpt.Mul(rpt, thor.PrecisionFactor)
	rpt.Div(rpt, a.totalSupply)
	return rpt.Add(rpt, a.stored)
}

// earned returns the rewards of acc settled against rpt.
func (a *accrual) earned(acc *Account, rpt *big.Int) *big.Int {
	pending := new(big.Int).Sub(rpt, acc.RewardPerTokenPaid)
	pending.Mul(pending, acc.Balance)
	pending.Div(pending, thor.PrecisionFactor)
	return pending.Add(pending, acc.Rewards)
}

// update commits the accumulator and, if acc is not nil, settles acc against it.
// lastUpdate never moves backwards.
func (a *accrual) update(acc *Account, now uint64) {
	a.stored = a.rewardPerToken(now)
	if applicable := a.lastTimeRewardApplicable(now); applicable > a.lastUpdate {
		a.lastUpdate = applicable
	}
	if acc != nil {
		acc.Rewards = a.earned(acc, a.stored)
		acc.RewardPerTokenPaid = new(big.Int).Set(a.stored)
	}
}
