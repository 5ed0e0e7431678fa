// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farming

import (
	"math/big"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

// invoke runs fn atomically under the reentrancy guard.
func (p *Pool) invoke(env *xenv.Environment, op string, fn func(params *Params) error) error {
	logger.Debug(op, "pool", p.addr, "caller", env.Caller(), "now", env.Now())

	err := env.Call(func() error {
		release, err := p.guard.Enter()
		if err != nil {
			return err
		}
		defer release()

		params, err := p.Params()
		if err != nil {
			return err
		}
		return fn(params)
	})
	if err != nil {
		metricRejections().AddWithLabel(1, map[string]string{"op": op, "reason": rejectionReason(err)})
		logger.Info(op+" rejected", "pool", p.addr, "caller", env.Caller(), "error", err)
		return err
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op})
	return nil
}

// checkpoint commits the accumulator at now and returns it with the settled account of owner.
func (p *Pool) checkpoint(params *Params, owner thor.Address, now uint64) (*accrual, *Account, error) {
	a, err := p.storage.loadAccrual(params.EndDate)
	if err != nil {
		return nil, nil, err
	}
	acc, err := p.storage.getAccount(owner)
	if err != nil {
		return nil, nil, err
	}
	a.update(acc, now)
	return a, acc, nil
}

func (p *Pool) save(a *accrual, owner thor.Address, acc *Account) error {
	if err := p.storage.saveAccrual(a); err != nil {
		return err
	}
	return p.storage.setAccount(owner, acc)
}

// Farm stakes amount of the staking token from the caller.
// When the factory farms, the stake is credited to the deployer.
func (p *Pool) Farm(env *xenv.Environment, amount *big.Int) error {
	return p.invoke(env, "farm", func(params *Params) error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New(ReasonFarmZero)
		}
		now := env.Now()
		if now > params.EndDate {
			return reverts.New(ReasonFinished)
		}

		owner := env.Caller()
		if owner == params.Factory {
			owner = params.Deployer
		}
		a, acc, err := p.checkpoint(params, owner, now)
		if err != nil {
			return err
		}

		if acc.Balance.Sign() == 0 {
			if err := p.enter(owner, acc); err != nil {
				return err
			}
		}
		// every stake restarts the exit delay
		acc.EnterTime = now
		acc.Balance.Add(acc.Balance, amount)
		a.totalSupply.Add(a.totalSupply, amount)
		if err := p.save(a, owner, acc); err != nil {
			return err
		}

		staking, err := p.resolver.Resolve(env.State(), params.StakingToken)
		if err != nil {
			return err
		}
		if err := token.SafeTransferFrom(env.WithCaller(p.addr), staking, env.Caller(), p.addr, amount); err != nil {
			return err
		}
		p.log(env, EventStaked, owner, amount)
		return nil
	})
}

// enter registers owner as an active account under a fresh id.
func (p *Pool) enter(owner thor.Address, acc *Account) error {
	id, err := p.storage.accountCounter.Increment()
	if err != nil {
		return err
	}
	acc.ID = id.Uint64()
	if err := p.storage.accountAddresses.Set(solidity.Uint64Key(acc.ID), owner); err != nil {
		return err
	}
	return p.storage.activeAccounts.Add(big.NewInt(1))
}

// leave clears the registration of owner. Ids are never reused.
func (p *Pool) leave(acc *Account) error {
	p.storage.accountAddresses.Delete(solidity.Uint64Key(acc.ID))
	acc.ID = 0
	acc.EnterTime = 0
	return p.storage.activeAccounts.Sub(big.NewInt(1))
}

// Withdraw returns amount of the caller's stake.
func (p *Pool) Withdraw(env *xenv.Environment, amount *big.Int) error {
	return p.invoke(env, "withdraw", func(params *Params) error {
		return p.withdraw(env, params, amount)
	})
}

func (p *Pool) withdraw(env *xenv.Environment, params *Params, amount *big.Int) error {
	owner := env.Caller()
	a, acc, err := p.checkpoint(params, owner, env.Now())
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 || amount.Cmp(acc.Balance) > 0 {
		return reverts.New(ReasonWithdraw)
	}

	acc.Balance.Sub(acc.Balance, amount)
	a.totalSupply.Sub(a.totalSupply, amount)
	if acc.Balance.Sign() == 0 {
		if err := p.leave(acc); err != nil {
			return err
		}
	}
	if err := p.save(a, owner, acc); err != nil {
		return err
	}

	staking, err := p.resolver.Resolve(env.State(), params.StakingToken)
	if err != nil {
		return err
	}
	if err := token.SafeTransfer(env.WithCaller(p.addr), staking, owner, amount); err != nil {
		return err
	}
	p.log(env, EventWithdrawn, owner, amount)
	return nil
}

// GetReward pays out the caller's rewards. Nothing is transferred when there are none.
func (p *Pool) GetReward(env *xenv.Environment) error {
	return p.invoke(env, "reward", func(params *Params) error {
		return p.getReward(env, params)
	})
}

func (p *Pool) getReward(env *xenv.Environment, params *Params) error {
	owner := env.Caller()
	a, acc, err := p.checkpoint(params, owner, env.Now())
	if err != nil {
		return err
	}
	reward := acc.Rewards
	acc.Rewards = new(big.Int)
	if err := p.save(a, owner, acc); err != nil {
		return err
	}
	if reward.Sign() == 0 {
		return nil
	}
	if err := p.storage.distributed.Add(reward); err != nil {
		return err
	}

	rewardToken, err := p.resolver.Resolve(env.State(), params.RewardToken)
	if err != nil {
		return err
	}
	if err := token.SafeTransfer(env.WithCaller(p.addr), rewardToken, owner, reward); err != nil {
		return err
	}
	p.log(env, EventRewardPaid, owner, reward)
	return nil
}

// Exit withdraws the caller's whole stake and pays out its rewards.
// It fails before the exit delay since the last stake has passed, unless the epoch is over.
func (p *Pool) Exit(env *xenv.Environment) error {
	return p.invoke(env, "exit", func(params *Params) error {
		now := env.Now()
		acc, err := p.storage.getAccount(env.Caller())
		if err != nil {
			return err
		}
		if acc.Balance.Sign() > 0 {
			if now < thor.Deadline(acc.EnterTime, params.MinimumExitDelay) && now <= params.EndDate {
				return reverts.New(ReasonEarlyExit)
			}
			if err := p.withdraw(env, params, acc.Balance); err != nil {
				return err
			}
		}
		return p.getReward(env, params)
	})
}

func (p *Pool) log(env *xenv.Environment, name string, user thor.Address, amount *big.Int) {
	env.Log(&xenv.Event{
		Address: p.addr,
		Name:    name,
		Topics:  []thor.Address{user},
		Amount:  new(big.Int).Set(amount),
	})
}
