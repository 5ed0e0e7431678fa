// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
)

type JSONFactory struct {
	Address                 thor.Address `json:"address"`
	Wsd                     thor.Address `json:"wsd"`
	TimeLock                thor.Address `json:"timeLock"`
	SwapRegistry            thor.Address `json:"swapRegistry"`
	Treasure                thor.Address `json:"treasure"`
	Owner                   thor.Address `json:"owner"`
	LockAmount              *utils.Value `json:"lockAmount"`
	UnlockCommissionPercent uint64       `json:"unlockCommissionPercent"`
	PoolCount               uint64       `json:"poolCount"`
	Limits                  *JSONLimits  `json:"limits"`
}

// JSONLimits are the shortest and longest terms a new pool may have, in seconds.
type JSONLimits struct {
	MinEpochDuration           uint64 `json:"minEpochDuration"`
	MinLockDuration            uint64 `json:"minLockDuration"`
	MinExitDelay               uint64 `json:"minExitDelay"`
	MaxExitDelay               uint64 `json:"maxExitDelay"`
	MaxUnlockCommissionPercent uint64 `json:"maxUnlockCommissionPercent"`
}

type JSONFarmingInfo struct {
	ID            uint64       `json:"id"`
	Pool          thor.Address `json:"pool"`
	StakingToken  thor.Address `json:"stakingToken"`
	RewardToken   thor.Address `json:"rewardToken"`
	StartDate     uint64       `json:"startDate"`
	EndDate       uint64       `json:"endDate"`
	EpochDuration uint64       `json:"epochDuration"`
	TotalReward   *utils.Value `json:"totalReward"`
	Deployer      thor.Address `json:"deployer"`
}

func convertFarmingInfo(st *state.State, info *factory.FarmingInfo) *JSONFarmingInfo {
	return &JSONFarmingInfo{
		ID:            info.ID,
		Pool:          info.Pool,
		StakingToken:  info.StakingToken,
		RewardToken:   info.RewardToken,
		StartDate:     info.StartDate,
		EndDate:       info.EndDate,
		EpochDuration: info.EpochDuration,
		TotalReward:   utils.NewValue(info.TotalReward, utils.Decimals(st, info.RewardToken)),
		Deployer:      info.Deployer,
	}
}

type DeployPoolRequest struct {
	utils.ClauseOptions
	RewardToken      thor.Address `json:"rewardToken"`
	StakingToken     thor.Address `json:"stakingToken"`
	TotalReward      string       `json:"totalReward"`
	StartDate        uint64       `json:"startDate"`
	EpochDuration    uint64       `json:"epochDuration"`
	LockDuration     uint64       `json:"lockDuration"`
	MinimumExitDelay uint64       `json:"minimumExitDelay"`
}

type LockAmountRequest struct {
	utils.ClauseOptions
	Amount string `json:"amount"`
}

type CommissionRequest struct {
	utils.ClauseOptions
	Percent uint64 `json:"percent"`
}
