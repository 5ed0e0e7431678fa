// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farming implements the farming pool contract: time bounded
// distribution of a fixed reward among stakers of an asset, pro rata to
// stake and time.
package farming

import (
	"math/big"

	"github.com/whiteswap/farming/builtin/guard"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

var logger = log.WithContext("pkg", "farming")

const (
	ReasonSameTokens    = "Staking and reward tokens can not be the same."
	ReasonStartInPast   = "StartDate must be in feature"
	ReasonZeroFactory   = "FarmingRewardsFactory can not be zero address"
	ReasonZeroDeployer  = "Deployer can not be zero address"
	ReasonWrongEndDate  = "Wrong end date epoch"
	ReasonWrongReward   = "Wrong reward amount"
	ReasonWrongStake    = "Wrong stake time"
	ReasonFarmZero      = "Cannot farm 0"
	ReasonFinished      = "Farming pool already finished"
	ReasonWithdraw      = "Unavailable withdraw"
	ReasonEarlyExit     = "Fail unstake earlier then it available"
	ReasonNoPool        = "Farming pool does not exist"
	ReasonAlreadyExists = "Farming pool already exists"

	EventStaked     = "Staked"
	EventWithdrawn  = "Withdrawn"
	EventRewardPaid = "RewardPaid"
)

// Params are the immutable construction parameters of a pool.
type Params struct {
	Factory          thor.Address
	Deployer         thor.Address
	RewardToken      thor.Address
	StakingToken     thor.Address
	RewardAmount     *big.Int
	StartDate        uint64
	EndDate          uint64
	EpochDuration    uint64
	MinimumExitDelay uint64
}

// Validate checks params against the deployment time now.
func (p *Params) Validate(now uint64) error {
	switch {
	case p.RewardToken == p.StakingToken:
		return reverts.New(ReasonSameTokens)
	case p.StartDate < now:
		return reverts.New(ReasonStartInPast)
	case p.Factory.IsZero():
		return reverts.New(ReasonZeroFactory)
	case p.Deployer.IsZero():
		return reverts.New(ReasonZeroDeployer)
	case p.EndDate <= p.StartDate || p.EpochDuration == 0:
		return reverts.New(ReasonWrongEndDate)
	case p.RewardAmount == nil || p.RewardAmount.Sign() <= 0:
		return reverts.New(ReasonWrongReward)
	case p.MinimumExitDelay > p.EpochDuration:
		return reverts.New(ReasonWrongStake)
	}
	return nil
}

// Pool binds the farming pool contract living at an address.
type Pool struct {
	addr     thor.Address
	storage  *storage
	guard    *guard.Guard
	resolver token.Resolver
}

// New binds the pool at addr. Tokens are looked up through resolver.
func New(addr thor.Address, st *state.State, resolver token.Resolver) *Pool {
	ctx := solidity.NewContext(addr, st)
	return &Pool{
		addr:     addr,
		storage:  newStorage(ctx),
		guard:    guard.New(ctx),
		resolver: resolver,
	}
}

// Deploy validates params and creates a pool at addr.
func Deploy(env *xenv.Environment, addr thor.Address, params *Params, resolver token.Resolver) (*Pool, error) {
	p := New(addr, env.State(), resolver)
	if err := env.Call(func() error {
		if err := params.Validate(env.Now()); err != nil {
			return err
		}
		exists, err := p.storage.exists()
		if err != nil {
			return err
		}
		if exists {
			return reverts.New(ReasonAlreadyExists)
		}
		if err := p.storage.setParams(params); err != nil {
			return err
		}
		rate := new(big.Int).Div(params.RewardAmount, new(big.Int).SetUint64(params.EpochDuration))
		if err := p.storage.rewardRate.Set(rate); err != nil {
			return err
		}
		return p.storage.lastUpdateTime.Set(new(big.Int).SetUint64(params.StartDate))
	}); err != nil {
		logger.Info("pool deployment rejected", "pool", addr, "error", err)
		return nil, err
	}
	logger.Info("pool deployed", "pool", addr, "deployer", params.Deployer, "reward", params.RewardAmount,
		"start", params.StartDate, "end", params.EndDate)
	return p, nil
}

func (p *Pool) Address() thor.Address { return p.addr }

// Exists returns whether a pool is deployed at the bound address.
func (p *Pool) Exists() (bool, error) {
	return p.storage.exists()
}

func (p *Pool) Params() (*Params, error) {
	return p.storage.getParams()
}

func (p *Pool) RewardRate() (*big.Int, error) {
	return p.storage.rewardRate.Get()
}

func (p *Pool) RewardPerTokenStored() (*big.Int, error) {
	return p.storage.rewardPerTokenStored.Get()
}

func (p *Pool) LastUpdateTime() (uint64, error) {
	return p.storage.getUint64(p.storage.lastUpdateTime)
}

// TotalSupply returns the total staked amount.
func (p *Pool) TotalSupply() (*big.Int, error) {
	return p.storage.totalSupply.Get()
}

// DistributedTokens returns the total reward paid out so far.
func (p *Pool) DistributedTokens() (*big.Int, error) {
	return p.storage.distributed.Get()
}

// CurrentCountAccounts returns the last assigned account id.
func (p *Pool) CurrentCountAccounts() (uint64, error) {
	return p.storage.getUint64(p.storage.accountCounter)
}

// GetActiveAccountCount returns the number of accounts with a positive stake.
func (p *Pool) GetActiveAccountCount() (uint64, error) {
	return p.storage.getUint64(p.storage.activeAccounts)
}

func (p *Pool) Account(addr thor.Address) (*Account, error) {
	return p.storage.getAccount(addr)
}

// BalanceOf returns the staked amount of addr.
func (p *Pool) BalanceOf(addr thor.Address) (*big.Int, error) {
	acc, err := p.storage.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return acc.Balance, nil
}

func (p *Pool) AccountIDByAddress(addr thor.Address) (uint64, error) {
	acc, err := p.storage.getAccount(addr)
	if err != nil {
		return 0, err
	}
	return acc.ID, nil
}

func (p *Pool) AccountAddressByID(id uint64) (thor.Address, error) {
	return p.storage.accountAddresses.Get(solidity.Uint64Key(id))
}

// AccountEnterFarm returns the time addr last farmed, 0 when not farming.
func (p *Pool) AccountEnterFarm(addr thor.Address) (uint64, error) {
	acc, err := p.storage.getAccount(addr)
	if err != nil {
		return 0, err
	}
	return acc.EnterTime, nil
}

func (p *Pool) accrual() (*accrual, error) {
	params, err := p.Params()
	if err != nil {
		return nil, err
	}
	return p.storage.loadAccrual(params.EndDate)
}

func (p *Pool) LastTimeRewardApplicable(now uint64) (uint64, error) {
	a, err := p.accrual()
	if err != nil {
		return 0, err
	}
	return a.lastTimeRewardApplicable(now), nil
}

func (p *Pool) RewardPerToken(now uint64) (*big.Int, error) {
	a, err := p.accrual()
	if err != nil {
		return nil, err
	}
	return a.rewardPerToken(now), nil
}

// Earned returns the rewards addr could claim at now.
func (p *Pool) Earned(addr thor.Address, now uint64) (*big.Int, error) {
	a, err := p.accrual()
	if err != nil {
		return nil, err
	}
	acc, err := p.storage.getAccount(addr)
	if err != nil {
		return nil, err
	}
	return a.earned(acc, a.rewardPerToken(now)), nil
}

// GetRewardForDuration returns rate * epoch duration, at most the reward amount.
func (p *Pool) GetRewardForDuration() (*big.Int, error) {
	params, err := p.Params()
	if err != nil {
		return nil, err
	}
	rate, err := p.storage.rewardRate.Get()
	if err != nil {
		return nil, err
	}
	return rate.Mul(rate, new(big.Int).SetUint64(params.EpochDuration)), nil
}
