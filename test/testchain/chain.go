// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testchain runs an in-memory devnet ledger for tests.
package testchain

import (
	"context"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/lvldb"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

// Chain is a ledger with a controllable clock.
type Chain struct {
	db      *lvldb.LevelDB
	logDB   *logdb.LogDB
	stater  *state.Stater
	rt      *runtime.Runtime
	genesis *genesis.Genesis
	addrs   *genesis.Addresses
	now     atomic.Uint64
}

// NewDefault creates a Chain from the devnet genesis.
func NewDefault() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a Chain with an in-memory database, the clock set at launch time.
func NewWithGenesis(gen *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}
	c := &Chain{
		db:      db,
		logDB:   logDB,
		stater:  state.NewStater(db, 1),
		genesis: gen,
	}
	c.now.Store(gen.LaunchTime)

	if c.addrs, err = gen.Build(c.stater, logDB); err != nil {
		c.Close()
		return nil, fmt.Errorf("unable to build genesis: %w", err)
	}
	if c.rt, err = runtime.New(c.stater, logDB, runtime.Options{Clock: c.now.Load}); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Chain) Runtime() *runtime.Runtime        { return c.rt }
func (c *Chain) LogDB() *logdb.LogDB              { return c.logDB }
func (c *Chain) Stater() *state.Stater            { return c.stater }
func (c *Chain) Genesis() *genesis.Genesis        { return c.genesis }
func (c *Chain) Addresses() *genesis.Addresses    { return c.addrs }
func (c *Chain) Token(symbol string) thor.Address { return c.addrs.Tokens[symbol] }

// Now returns the clock.
func (c *Chain) Now() uint64 { return c.now.Load() }

// AddTime moves the clock forward.
func (c *Chain) AddTime(d uint64) { c.now.Add(d) }

// Close releases the databases.
func (c *Chain) Close() {
	c.logDB.Close()
	c.db.Close()
}

// Execute runs exec as caller at the clock time.
func (c *Chain) Execute(caller thor.Address, name string, exec func(env *xenv.Environment) error) (*runtime.Receipt, error) {
	return c.rt.Execute(context.Background(), &runtime.Clause{Caller: caller, Name: name, Exec: exec})
}

// MustExecute is Execute panicking on errors and reverts.
func (c *Chain) MustExecute(caller thor.Address, name string, exec func(env *xenv.Environment) error) *runtime.Receipt {
	receipt, err := c.Execute(caller, name, exec)
	if err != nil {
		panic(err)
	}
	if receipt.Reverted {
		panic(fmt.Sprintf("%v reverted: %v", name, receipt.RevertReason))
	}
	return receipt
}

// DeployPool approves the factory for the reward and the lock amount, then deploys
// a pool of deployer starting one day later with the shortest epoch and exit delay.
func (c *Chain) DeployPool(deployer, rewardToken, stakingToken thor.Address, totalReward *big.Int) (thor.Address, error) {
	var (
		start = c.Now() + thor.Day
		pool  thor.Address
	)
	receipt, err := c.Execute(deployer, "deployPool", func(env *xenv.Environment) error {
		f := factory.New(c.addrs.Factory, env.State(), token.StateResolver{})
		lockAmount, err := f.LockAmount()
		if err != nil {
			return err
		}
		lockToken := c.addrs.Tokens[c.genesis.Factory.LockToken]
		allowances := map[thor.Address]*big.Int{lockToken: lockAmount}
		if rewardToken == lockToken {
			allowances[lockToken] = new(big.Int).Add(lockAmount, totalReward)
		} else {
			allowances[rewardToken] = totalReward
		}
		for addr, amount := range allowances {
			if _, err := token.New(addr, env.State()).Approve(env, c.addrs.Factory, amount); err != nil {
				return err
			}
		}
		epoch, lock, exitDelay, err := f.MinimumTerms()
		if err != nil {
			return err
		}
		pool, err = f.DeployPool(env, &factory.DeployParams{
			RewardToken:      rewardToken,
			StakingToken:     stakingToken,
			TotalReward:      totalReward,
			StartDate:        start,
			EpochDuration:    epoch,
			LockDuration:     lock,
			MinimumExitDelay: exitDelay,
		})
		return err
	})
	if err != nil {
		return thor.Address{}, err
	}
	if receipt.Reverted {
		return thor.Address{}, fmt.Errorf("deployPool reverted: %v", receipt.RevertReason)
	}
	return pool, nil
}
