// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/thor"
)

type JSONPool struct {
	Address                  thor.Address `json:"address"`
	Factory                  thor.Address `json:"factory"`
	Deployer                 thor.Address `json:"deployer"`
	RewardToken              thor.Address `json:"rewardToken"`
	StakingToken             thor.Address `json:"stakingToken"`
	RewardAmount             *utils.Value `json:"rewardAmount"`
	StartDate                uint64       `json:"startDate"`
	EndDate                  uint64       `json:"endDate"`
	EpochDuration            uint64       `json:"epochDuration"`
	MinimumExitDelay         uint64       `json:"minimumExitDelay"`
	RewardRate               string       `json:"rewardRate"`
	RewardPerToken           string       `json:"rewardPerToken"`
	LastUpdateTime           uint64       `json:"lastUpdateTime"`
	LastTimeRewardApplicable uint64       `json:"lastTimeRewardApplicable"`
	RewardForDuration        *utils.Value `json:"rewardForDuration"`
	TotalSupply              *utils.Value `json:"totalSupply"`
	DistributedTokens        *utils.Value `json:"distributedTokens"`
	CurrentCountAccounts     uint64       `json:"currentCountAccounts"`
	ActiveAccounts           uint64       `json:"activeAccounts"`
	Time                     uint64       `json:"time"`
}

type JSONAccount struct {
	Address            thor.Address `json:"address"`
	ID                 uint64       `json:"id"`
	Balance            *utils.Value `json:"balance"`
	Earned             *utils.Value `json:"earned"`
	RewardPerTokenPaid string       `json:"rewardPerTokenPaid"`
	EnterTime          uint64       `json:"enterTime"`
	ExitAvailableAt    uint64       `json:"exitAvailableAt,omitempty"`
	Time               uint64       `json:"time"`
}

type AmountRequest struct {
	utils.ClauseOptions
	Amount string `json:"amount"`
}
