// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farming

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
)

var (
	slotParams               = thor.BytesToBytes32([]byte("params"))
	slotRewardRate           = thor.BytesToBytes32([]byte("rewardRate"))
	slotRewardPerTokenStored = thor.BytesToBytes32([]byte("rewardPerTokenStored"))
	slotLastUpdateTime       = thor.BytesToBytes32([]byte("lastUpdateTime"))
	slotTotalSupply          = thor.BytesToBytes32([]byte("totalSupply"))
	slotDistributed          = thor.BytesToBytes32([]byte("distributedTokens"))
	slotAccountCounter       = thor.BytesToBytes32([]byte("currentCountAccounts"))
	slotActiveAccounts       = thor.BytesToBytes32([]byte("activeAccounts"))
	slotAccounts             = thor.BytesToBytes32([]byte("accounts"))
	slotAccountAddresses     = thor.BytesToBytes32([]byte("accountAddressById"))
)

// Account is the farming record of a participant.
type Account struct {
	Balance            *big.Int
	RewardPerTokenPaid *big.Int
	Rewards            *big.Int
	EnterTime          uint64
	ID                 uint64 // 0 when not farming
}

func (a *Account) normalize() *Account {
	if a.Balance == nil {
		a.Balance = new(big.Int)
	}
	if a.RewardPerTokenPaid == nil {
		a.RewardPerTokenPaid = new(big.Int)
	}
	if a.Rewards == nil {
		a.Rewards = new(big.Int)
	}
	return a
}

type storage struct {
	addr  thor.Address
	state *state.State

	rewardRate           *solidity.Uint256
	rewardPerTokenStored *solidity.Uint256
	lastUpdateTime       *solidity.Uint256
	totalSupply          *solidity.Uint256
	distributed          *solidity.Uint256
	accountCounter       *solidity.Uint256
	activeAccounts       *solidity.Uint256
	accounts             *solidity.Mapping[thor.Address, *Account]
	accountAddresses     *solidity.Mapping[solidity.Uint64Key, thor.Address]
}

func newStorage(ctx *solidity.Context) *storage {
	return &storage{
		addr:                 ctx.Address(),
		state:                ctx.State(),
		rewardRate:           solidity.NewUint256(ctx, slotRewardRate),
		rewardPerTokenStored: solidity.NewUint256(ctx, slotRewardPerTokenStored),
		lastUpdateTime:       solidity.NewUint256(ctx, slotLastUpdateTime),
		totalSupply:          solidity.NewUint256(ctx, slotTotalSupply),
		distributed:          solidity.NewUint256(ctx, slotDistributed),
		accountCounter:       solidity.NewUint256(ctx, slotAccountCounter),
		activeAccounts:       solidity.NewUint256(ctx, slotActiveAccounts),
		accounts:             solidity.NewMapping[thor.Address, *Account](ctx, slotAccounts),
		accountAddresses:     solidity.NewMapping[solidity.Uint64Key, thor.Address](ctx, slotAccountAddresses),
	}
}

func (s *storage) exists() (bool, error) {
	raw, err := s.state.GetRawStorage(s.addr, slotParams)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func (s *storage) getParams() (*Params, error) {
	raw, err := s.state.GetRawStorage(s.addr, slotParams)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, reverts.New(ReasonNoPool)
	}
	var params Params
	if err := rlp.DecodeBytes(raw, &params); err != nil {
		return nil, errors.Wrap(err, "decode pool params")
	}
	return &params, nil
}

func (s *storage) setParams(params *Params) error {
	return s.state.EncodeStorage(s.addr, slotParams, func() ([]byte, error) {
		return rlp.EncodeToBytes(params)
	})
}

func (s *storage) getAccount(addr thor.Address) (*Account, error) {
	acc, err := s.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	return acc.normalize(), nil
}

func (s *storage) setAccount(addr thor.Address, acc *Account) error {
	return s.accounts.Set(addr, acc)
}

func (s *storage) getUint64(u *solidity.Uint256) (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (s *storage) loadAccrual(endDate uint64) (*accrual, error) {
	rate, err := s.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	stored, err := s.rewardPerTokenStored.Get()
	if err != nil {
		return nil, err
	}
	lastUpdate, err := s.getUint64(s.lastUpdateTime)
	if err != nil {
		return nil, err
	}
	totalSupply, err := s.totalSupply.Get()
	if err != nil {
		return nil, err
	}
	return &accrual{
		endDate:     endDate,
		rate:        rate,
		stored:      stored,
		lastUpdate:  lastUpdate,
		totalSupply: totalSupply,
	}, nil
}

func (s *storage) saveAccrual(a *accrual) error {
	if err := s.rewardPerTokenStored.Set(a.stored); err != nil {
		return err
	}
	if err := s.lastUpdateTime.Set(new(big.Int).SetUint64(a.lastUpdate)); err != nil {
		return err
	}
	return s.totalSupply.Set(a.totalSupply)
}
