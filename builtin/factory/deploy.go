// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"math/big"

	"github.com/whiteswap/farming/builtin/farming"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/builtin/swap"
	"github.com/whiteswap/farming/builtin/treasure"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

func (f *Factory) invoke(env *xenv.Environment, op string, fn func(a *addresses) error) error {
	logger.Debug(op, "factory", f.addr, "caller", env.Caller())

	err := env.Call(func() error {
		release, err := f.guard.Enter()
		if err != nil {
			return err
		}
		defer release()

		a, err := f.addresses()
		if err != nil {
			return err
		}
		return fn(a)
	})
	if err != nil {
		metricRejections().AddWithLabel(1, map[string]string{"op": op})
		logger.Info(op+" rejected", "factory", f.addr, "caller", env.Caller(), "error", err)
	}
	return err
}

func (p *DeployParams) validate(limits Limits, registry *swap.Registry) error {
	switch {
	case p.TotalReward == nil || p.TotalReward.Sign() <= 0:
		return reverts.New(ReasonZeroReward)
	case p.EpochDuration < limits.MinEpochDuration:
		return reverts.New(ReasonShortEpoch)
	case p.StakingToken.IsZero():
		return reverts.New(ReasonZeroStaking)
	case p.RewardToken.IsZero():
		return reverts.New(ReasonZeroRewardToken)
	case p.MinimumExitDelay < limits.MinExitDelay:
		return reverts.New(ReasonShortExitDelay)
	case p.MinimumExitDelay > limits.MaxExitDelay:
		return reverts.New(ReasonLongExitDelay)
	case p.TotalReward.Cmp(new(big.Int).SetUint64(p.EpochDuration)) <= 0:
		return reverts.New(ReasonRewardBelowEpoch)
	}
	ok, err := registry.IsPair(p.StakingToken)
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(ReasonNotPair)
	}
	return nil
}

// DeployPool deploys a farming pool for the caller, funds it with the total
// reward and bonds the lock amount in the treasure until the lock ends.
// The caller must have approved both amounts to the factory.
func (f *Factory) DeployPool(env *xenv.Environment, p *DeployParams) (pool thor.Address, err error) {
	deployer := env.Caller()
	self := env.WithCaller(f.addr)

	err = f.invoke(env, "deployPool", func(a *addresses) error {
		limits, err := f.Limits()
		if err != nil {
			return err
		}
		if err := p.validate(limits, swap.New(a.SwapRegistry, f.state)); err != nil {
			return err
		}

		pool = f.GetAddress(deployer, p.RewardToken, p.StakingToken, p.TotalReward,
			p.StartDate, p.EpochDuration, p.MinimumExitDelay)
		if _, err := farming.Deploy(self, pool, &farming.Params{
			Factory:          f.addr,
			Deployer:         deployer,
			RewardToken:      p.RewardToken,
			StakingToken:     p.StakingToken,
			RewardAmount:     new(big.Int).Set(p.TotalReward),
			StartDate:        p.StartDate,
			EndDate:          p.StartDate + p.EpochDuration,
			EpochDuration:    p.EpochDuration,
			MinimumExitDelay: p.MinimumExitDelay,
		}, f.resolver); err != nil {
			if reverts.IsRevertErr(err) {
				return reverts.New(ReasonCreate2)
			}
			return err
		}

		if err := f.fund(self, deployer, pool, p); err != nil {
			return err
		}
		if err := f.bond(self, a, deployer, pool, p); err != nil {
			return err
		}

		id, err := f.iterator.Increment()
		if err != nil {
			return err
		}
		if err := f.infos.Set(solidity.Uint64Key(id.Uint64()), &FarmingInfo{
			ID:            id.Uint64(),
			Pool:          pool,
			StakingToken:  p.StakingToken,
			RewardToken:   p.RewardToken,
			StartDate:     p.StartDate,
			EndDate:       p.StartDate + p.EpochDuration,
			EpochDuration: p.EpochDuration,
			TotalReward:   new(big.Int).Set(p.TotalReward),
			Deployer:      deployer,
		}); err != nil {
			return err
		}
		env.Log(&xenv.Event{
			Address: f.addr,
			Name:    EventFarmingPoolDeployed,
			Topics:  []thor.Address{pool, deployer},
			Amount:  new(big.Int).Set(p.TotalReward),
		})
		return nil
	})
	if err != nil {
		return thor.Address{}, err
	}
	metricPoolsDeployed().Add(1)
	logger.Info("farming pool deployed", "pool", pool, "deployer", deployer, "reward", p.TotalReward)
	return pool, nil
}

// fund moves the total reward from the deployer to the pool. Tokens taking a
// fee on transfer leave the pool short and are refused.
func (f *Factory) fund(self *xenv.Environment, deployer, pool thor.Address, p *DeployParams) error {
	reward, err := f.resolver.Resolve(f.state, p.RewardToken)
	if err != nil {
		return err
	}
	before, err := reward.BalanceOf(pool)
	if err != nil {
		return err
	}
	if err := token.SafeTransferFrom(self, reward, deployer, pool, p.TotalReward); err != nil {
		return err
	}
	after, err := reward.BalanceOf(pool)
	if err != nil {
		return err
	}
	if new(big.Int).Sub(after, before).Cmp(p.TotalReward) != 0 {
		return reverts.New(ReasonInvalidAmount)
	}
	return nil
}

// bond pulls the lock amount from the deployer and locks it in the treasure
// on behalf of the pool.
func (f *Factory) bond(self *xenv.Environment, a *addresses, deployer, pool thor.Address, p *DeployParams) error {
	amount, err := f.lockAmount.Get()
	if err != nil {
		return err
	}
	commission, err := f.WsUnlockCommissionPercent()
	if err != nil {
		return err
	}
	wsd, err := f.resolver.Resolve(f.state, a.LockToken)
	if err != nil {
		return err
	}
	if err := token.SafeTransferFrom(self, wsd, deployer, f.addr, amount); err != nil {
		return err
	}
	if err := token.SafeApprove(self, wsd, a.Treasure, amount); err != nil {
		return err
	}
	return treasure.New(a.Treasure, f.state, f.resolver).Lock(self, &treasure.LockParams{
		Amount:        amount,
		StartDate:     p.StartDate,
		LockDuration:  p.LockDuration,
		EpochDuration: p.EpochDuration,
		Fee:           commission,
		Depositor:     pool,
		Beneficiary:   deployer,
	})
}
