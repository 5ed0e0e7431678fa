// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farming

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newAccrual(supply int64) *accrual {
	return &accrual{
		endDate:     2000,
		rate:        big.NewInt(100),
		stored:      new(big.Int),
		lastUpdate:  1000,
		totalSupply: big.NewInt(supply),
	}
}

func TestLastTimeRewardApplicable(t *testing.T) {
	a := newAccrual(0)
	assert.Equal(t, uint64(1500), a.lastTimeRewardApplicable(1500))
	assert.Equal(t, uint64(2000), a.lastTimeRewardApplicable(2000))
	assert.Equal(t, uint64(2000), a.lastTimeRewardApplicable(9999))
}

func TestRewardPerToken(t *testing.T) {
	tests := []struct {
		name   string
		supply int64
		now    uint64
		want   string
	}{
		{"no stake", 0, 1500, "0"},
		{"before last update", 10, 900, "0"},
		{"half way", 1e18, 1500, "50000"},
		{"capped at end", 1e18, 5000, "100000"},
		{"truncates", 3, 1001, "33333333333333333333"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newAccrual(tt.supply).rewardPerToken(tt.now).String())
		})
	}
}

func TestAccrualUpdate(t *testing.T) {
	a := newAccrual(0)

	// nobody staked, time still advances
	a.update(nil, 1200)
	assert.Equal(t, uint64(1200), a.lastUpdate)
	assert.Equal(t, 0, a.stored.Sign())

	acc := (&Account{}).normalize()
	a.update(acc, 1200)
	acc.Balance = big.NewInt(1e18)
	a.totalSupply = big.NewInt(1e18)

	// earned is what update would settle
	projected := a.earned(acc, a.rewardPerToken(1700))
	a.update(acc, 1700)
	assert.Equal(t, projected, acc.Rewards)
	assert.Equal(t, big.NewInt(500*100), acc.Rewards)
	assert.Equal(t, a.stored, acc.RewardPerTokenPaid)

	// no backwards move
	a.update(acc, 1100)
	assert.Equal(t, uint64(1700), a.lastUpdate)
	assert.Equal(t, big.NewInt(500*100), acc.Rewards)

	// nothing after end
	a.update(acc, 3000)
	a.update(acc, 4000)
	assert.Equal(t, uint64(2000), a.lastUpdate)
	assert.Equal(t, big.NewInt(800*100), acc.Rewards)
}
