// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/builtin/swap"
	"github.com/whiteswap/farming/builtin/treasure"
	"github.com/whiteswap/farming/kv"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

var logger = log.WithContext("pkg", "genesis")

// Builder helper to build the genesis block.
type Builder struct {
	timestamp uint64
	calls     []call
}

type call struct {
	name   string
	caller thor.Address
	exec   func(env *xenv.Environment) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// Call add a contract call.
func (b *Builder) Call(name string, caller thor.Address, exec func(env *xenv.Environment) error) *Builder {
	b.calls = append(b.calls, call{name, caller, exec})
	return b
}

// Build executes the calls as block 0 and commits the result. It fails
// when the ledger already has a head. Events are written to logDB when not nil.
func (b *Builder) Build(stater *state.Stater, logDB *logdb.LogDB) ([]*xenv.Event, error) {
	head, err := runtime.LoadHead(stater.Store())
	if err != nil {
		return nil, err
	}
	if head != nil {
		return nil, errors.New("ledger already initialized")
	}

	st := stater.NewState()
	blockCtx := &xenv.BlockContext{Number: 0, Time: b.timestamp}

	var events []*xenv.Event
	for _, c := range b.calls {
		env := xenv.New(st, blockCtx, c.caller)
		if err := env.Call(func() error { return c.exec(env) }); err != nil {
			return nil, errors.Wrapf(err, "genesis call %v", c.name)
		}
		events = append(events, env.Events()...)
	}

	var w *logdb.Writer
	if logDB != nil && len(events) > 0 {
		w = logDB.NewWriter()
		if err := w.Write(0, b.timestamp, Deployer, events); err != nil {
			_ = w.Rollback()
			return nil, errors.Wrap(err, "write logs")
		}
	}
	if err := st.Stage().CommitWith(func(putter kv.Putter) error {
		return runtime.PutHead(putter, runtime.Head{Number: 0, Time: b.timestamp})
	}); err != nil {
		if w != nil {
			_ = w.Rollback()
		}
		return nil, errors.Wrap(err, "commit state")
	}
	if w != nil {
		if err := w.Commit(); err != nil {
			return nil, errors.Wrap(err, "commit logs")
		}
	}
	return events, nil
}

// Builder lays out the genesis calls.
func (g *Genesis) Builder(resolver token.Resolver) *Builder {
	addrs := g.Addresses()
	b := new(Builder).Timestamp(g.LaunchTime)

	for _, t := range g.Tokens {
		addr := addrs.Tokens[t.Symbol]
		minter := g.Owner
		if t.Minter != nil {
			minter = *t.Minter
		}
		b.Call("token "+t.Symbol, minter, func(env *xenv.Environment) error {
			tok, err := token.Deploy(env.State(), addr, token.Meta{
				Name:       t.Name,
				Symbol:     t.Symbol,
				Decimals:   t.Decimals,
				Kind:       t.kind(),
				Commission: t.Commission,
				Minter:     minter,
			})
			if err != nil {
				return err
			}
			return mint(env, tok, t.Balances)
		})
	}

	b.Call("registry", g.Owner, func(env *xenv.Environment) error {
		_, err := swap.Deploy(env, addrs.Registry, g.Owner)
		return err
	})
	for i, p := range g.Pairs {
		b.Call("pair "+p.TokenA+"/"+p.TokenB, g.Owner, func(env *xenv.Environment) error {
			pair, err := swap.New(addrs.Registry, env.State()).CreatePair(env, addrs.Tokens[p.TokenA], addrs.Tokens[p.TokenB])
			if err != nil {
				return err
			}
			if pair != addrs.Pairs[i] {
				return errors.Errorf("pair created at %v, expected %v", pair, addrs.Pairs[i])
			}
			return mint(env.WithCaller(addrs.Registry), token.New(pair, env.State()), p.Balances)
		})
	}

	b.Call("factory", g.Owner, func(env *xenv.Environment) error {
		cfg := &factory.Config{
			UnlockCommissionPercent: g.Factory.UnlockCommissionPercent,
			LockAmount:              g.Factory.LockAmount.Big(),
			LockToken:               addrs.Tokens[g.Factory.LockToken],
			TimeLock:                g.Owner,
			SwapRegistry:            addrs.Registry,
		}
		if l := g.Factory.Limits; l != nil {
			cfg.Limits = factory.Limits{
				MinEpochDuration:           l.MinEpochDuration,
				MinExitDelay:               l.MinExitDelay,
				MaxExitDelay:               l.MaxExitDelay,
				MaxUnlockCommissionPercent: l.MaxUnlockCommissionPercent,
			}
			cfg.TreasureLimits = treasure.Limits{
				MinLockDuration: l.MinLockDuration,
				MaxLockFee:      l.MaxLockFee,
			}
		}
		_, err := factory.Deploy(env, addrs.Factory, cfg, resolver)
		return err
	})
	return b
}

// Build initializes an empty ledger with the genesis.
func (g *Genesis) Build(stater *state.Stater, logDB *logdb.LogDB) (*Addresses, error) {
	if _, err := g.Builder(token.StateResolver{}).Build(stater, logDB); err != nil {
		return nil, err
	}
	addrs := g.Addresses()
	logger.Info("genesis initialized", "time", g.LaunchTime, "tokens", len(g.Tokens), "pairs", len(g.Pairs),
		"factory", addrs.Factory)
	return addrs, nil
}

func mint(env *xenv.Environment, tok *token.Token, balances []*Balance) error {
	for _, bal := range balances {
		if err := tok.Mint(env, bal.Address, bal.Amount.Big()); err != nil {
			return errors.Wrapf(err, "mint to %v", bal.Address)
		}
	}
	return nil
}
