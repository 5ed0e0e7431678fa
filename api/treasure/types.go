// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import (
	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/thor"
)

type JSONTreasure struct {
	Address      thor.Address `json:"address"`
	Token        thor.Address `json:"token"`
	Factory      thor.Address `json:"factory"`
	FeeRecipient thor.Address `json:"feeRecipient"`
	Owner        thor.Address `json:"owner"`
	TotalLocked  *utils.Value `json:"totalLocked"`
}

type JSONLock struct {
	Beneficiary   thor.Address `json:"beneficiary"`
	Depositor     thor.Address `json:"depositor"`
	Amount        *utils.Value `json:"amount"`
	StartDate     uint64       `json:"startDate"`
	LockDuration  uint64       `json:"lockDuration"`
	EpochDuration uint64       `json:"epochDuration"`
	Fee           uint64       `json:"fee"`
	UnlockDate    uint64       `json:"unlockDate"`
}

type UnlockRequest struct {
	utils.ClauseOptions
	Depositor thor.Address `json:"depositor"`
}

type FeeRecipientRequest struct {
	utils.ClauseOptions
	Recipient thor.Address `json:"recipient"`
}
