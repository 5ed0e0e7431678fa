// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/builtin/farming"
	"github.com/whiteswap/farming/builtin/treasure"
	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/test/testchain"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

const (
	actionDeploy   = "deploy"
	actionApprove  = "approve"
	actionTransfer = "transfer"
	actionFarm     = "farm"
	actionWithdraw = "withdraw"
	actionReward   = "reward"
	actionExit     = "exit"
	actionUnlock   = "unlock"
)

// Scenario is a list of steps run in order on a fresh ledger.
type Scenario struct {
	Genesis string  `yaml:"genesis"` // relative to the scenario file, the devnet when empty
	Steps   []*Step `yaml:"steps" validate:"required,min=1,dive,required"`
}

// Step is one clause of a scenario.
type Step struct {
	After  uint64          `yaml:"after"` // seconds elapsed since the previous step
	Caller thor.Address    `yaml:"caller" validate:"required"`
	Action string          `yaml:"action" validate:"required,oneof=deploy approve transfer farm withdraw reward exit unlock"`
	Pool   int             `yaml:"pool" validate:"gte=0"` // index of the pool, in deployment order
	Pair   int             `yaml:"pair" validate:"gte=0"` // index of the genesis pair staked by a deployed pool
	Token  string          `yaml:"token"`                 // symbol of the reward, approved or transferred token
	To     *thor.Address   `yaml:"to"`                    // recipient or spender
	Amount *genesis.Amount `yaml:"amount"`
	Expect string          `yaml:"expect"` // revert reason, empty when the step must succeed

	// deploy only, the shortest durations when zero
	StartIn   uint64 `yaml:"startIn"`
	Epoch     uint64 `yaml:"epoch"`
	Lock      uint64 `yaml:"lock"`
	ExitDelay uint64 `yaml:"exitDelay"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if err := validator.New().Struct(&sc); err != nil {
		return nil, errors.Wrap(err, "invalid scenario")
	}
	for i, step := range sc.Steps {
		if err := step.validate(); err != nil {
			return nil, errors.Wrapf(err, "step %d", i)
		}
	}
	if sc.Genesis != "" && !filepath.IsAbs(sc.Genesis) {
		sc.Genesis = filepath.Join(filepath.Dir(path), sc.Genesis)
	}
	return &sc, nil
}

func (s *Step) validate() error {
	switch s.Action {
	case actionDeploy, actionApprove, actionTransfer:
		if s.Token == "" {
			return errors.Errorf("%v requires a token", s.Action)
		}
	}
	switch s.Action {
	case actionApprove, actionTransfer:
		if s.To == nil {
			return errors.Errorf("%v requires a recipient", s.Action)
		}
	}
	switch s.Action {
	case actionDeploy, actionApprove, actionTransfer, actionFarm, actionWithdraw:
		if s.Amount == nil {
			return errors.Errorf("%v requires an amount", s.Action)
		}
	}
	return nil
}

// simulation runs steps on an in-memory ledger.
type simulation struct {
	chain    *testchain.Chain
	symbols  map[thor.Address]string
	decimals map[thor.Address]uint8
	pools    []thor.Address
	callers  []thor.Address
	seen     map[thor.Address]bool
}

func newSimulation(gen *genesis.Genesis) (*simulation, error) {
	chain, err := testchain.NewWithGenesis(gen)
	if err != nil {
		return nil, err
	}
	s := &simulation{
		chain:    chain,
		symbols:  make(map[thor.Address]string),
		decimals: make(map[thor.Address]uint8),
		seen:     make(map[thor.Address]bool),
	}
	for _, t := range gen.Tokens {
		addr := chain.Token(t.Symbol)
		s.symbols[addr] = t.Symbol
		s.decimals[addr] = t.Decimals
	}
	for i, pair := range chain.Addresses().Pairs {
		s.symbols[pair] = fmt.Sprintf("LP%d", i)
		s.decimals[pair] = 18
	}
	return s, nil
}

func (s *simulation) close() { s.chain.Close() }

func (s *simulation) token(symbol string) (thor.Address, error) {
	addr, ok := s.chain.Addresses().Tokens[symbol]
	if !ok {
		return thor.Address{}, errors.Errorf("unknown token %v", symbol)
	}
	return addr, nil
}

func (s *simulation) pool(i int) (thor.Address, error) {
	if i >= len(s.pools) {
		return thor.Address{}, errors.Errorf("pool %d not deployed", i)
	}
	return s.pools[i], nil
}

// exec returns the clause of step, or an error if the step refers to unknown entities.
func (s *simulation) exec(step *Step) (func(env *xenv.Environment) error, error) {
	var (
		addrs    = s.chain.Addresses()
		resolver = token.StateResolver{}
		amount   = step.Amount.Big()
	)
	switch step.Action {
	case actionDeploy:
		reward, err := s.token(step.Token)
		if err != nil {
			return nil, err
		}
		if step.Pair >= len(addrs.Pairs) {
			return nil, errors.Errorf("unknown pair %d", step.Pair)
		}
		params := &factory.DeployParams{
			RewardToken:      reward,
			StakingToken:     addrs.Pairs[step.Pair],
			TotalReward:      amount,
			StartDate:        s.chain.Now() + orDefault(step.StartIn, thor.Day),
		}
		lockToken := addrs.Tokens[s.chain.Genesis().Factory.LockToken]
		return func(env *xenv.Environment) error {
			f := factory.New(addrs.Factory, env.State(), resolver)
			lockAmount, err := f.LockAmount()
			if err != nil {
				return err
			}
			epoch, lock, exitDelay, err := f.MinimumTerms()
			if err != nil {
				return err
			}
			params.EpochDuration = orDefault(step.Epoch, epoch)
			params.LockDuration = orDefault(step.Lock, lock)
			params.MinimumExitDelay = orDefault(step.ExitDelay, exitDelay)
			allowances := map[thor.Address]*big.Int{lockToken: lockAmount}
			if reward == lockToken {
				allowances[lockToken] = new(big.Int).Add(lockAmount, amount)
			} else {
				allowances[reward] = amount
			}
			for addr, allowance := range allowances {
				t, err := resolver.Resolve(env.State(), addr)
				if err != nil {
					return err
				}
				if err := token.SafeApprove(env, t, addrs.Factory, allowance); err != nil {
					return err
				}
			}
			pool, err := f.DeployPool(env, params)
			if err != nil {
				return err
			}
			s.pools = append(s.pools, pool)
			return nil
		}, nil
	case actionApprove, actionTransfer:
		addr, err := s.token(step.Token)
		if err != nil {
			return nil, err
		}
		to := *step.To
		return func(env *xenv.Environment) error {
			t, err := resolver.Resolve(env.State(), addr)
			if err != nil {
				return err
			}
			if step.Action == actionApprove {
				return token.SafeApprove(env, t, to, amount)
			}
			return token.SafeTransfer(env, t, to, amount)
		}, nil
	case actionUnlock:
		pool, err := s.pool(step.Pool)
		if err != nil {
			return nil, err
		}
		return func(env *xenv.Environment) error {
			return treasure.New(addrs.Treasure, env.State(), resolver).Unlock(env, pool)
		}, nil
	}

	addr, err := s.pool(step.Pool)
	if err != nil {
		return nil, err
	}
	return func(env *xenv.Environment) error {
		pool := farming.New(addr, env.State(), resolver)
		switch step.Action {
		case actionFarm:
			params, err := pool.Params()
			if err != nil {
				return err
			}
			staking, err := resolver.Resolve(env.State(), params.StakingToken)
			if err != nil {
				return err
			}
			if err := token.SafeApprove(env, staking, addr, amount); err != nil {
				return err
			}
			return pool.Farm(env, amount)
		case actionWithdraw:
			return pool.Withdraw(env, amount)
		case actionReward:
			return pool.GetReward(env)
		default:
			return pool.Exit(env)
		}
	}, nil
}

func orDefault(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

// apply advances the clock and executes step, checking the expected outcome.
func (s *simulation) apply(step *Step) (*runtime.Receipt, error) {
	exec, err := s.exec(step)
	if err != nil {
		return nil, err
	}
	s.chain.AddTime(step.After)
	if !s.seen[step.Caller] {
		s.seen[step.Caller] = true
		s.callers = append(s.callers, step.Caller)
	}

	receipt, err := s.chain.Execute(step.Caller, step.Action, exec)
	if err != nil {
		return nil, err
	}
	switch {
	case receipt.Reverted && step.Expect == "":
		return receipt, errors.Errorf("%v reverted: %v", step.Action, receipt.RevertReason)
	case receipt.Reverted && receipt.RevertReason != step.Expect:
		return receipt, errors.Errorf("%v reverted with %q, expected %q", step.Action, receipt.RevertReason, step.Expect)
	case !receipt.Reverted && step.Expect != "":
		return receipt, errors.Errorf("%v succeeded, expected revert %q", step.Action, step.Expect)
	}
	return receipt, nil
}

// Run executes the scenario steps, reporting progress when bar is not nil.
func (s *simulation) Run(sc *Scenario, bar *pb.ProgressBar) ([][]string, error) {
	var rows [][]string
	for i, step := range sc.Steps {
		receipt, err := s.apply(step)
		if err != nil {
			return rows, errors.Wrapf(err, "step %d", i)
		}
		result := "ok"
		if receipt.Reverted {
			result = receipt.RevertReason
		}
		rows = append(rows, []string{
			fmt.Sprint(receipt.BlockNumber),
			time.Unix(int64(receipt.BlockTime), 0).UTC().Format(time.DateTime),
			step.Caller.String(),
			step.Action,
			result,
		})
		if bar != nil {
			bar.Add64(1)
		}
	}
	return rows, nil
}

func (s *simulation) format(tok thor.Address, v *big.Int) string {
	return decimal.NewFromBigInt(v, -int32(s.decimals[tok])).String()
}

// Report writes account balances and pool states to w.
func (s *simulation) Report(w io.Writer, steps [][]string, accounts []thor.Address) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Block", "Time", "Caller", "Action", "Result"})
	table.AppendBulk(steps)
	table.Render()

	tokens := make([]thor.Address, 0, len(s.symbols))
	for addr := range s.symbols {
		tokens = append(tokens, addr)
	}
	sort.Slice(tokens, func(i, j int) bool { return s.symbols[tokens[i]] < s.symbols[tokens[j]] })

	return s.chain.Runtime().View(func(st *state.State, now uint64) error {
		resolver := token.StateResolver{}

		header := []string{"Account"}
		for _, tok := range tokens {
			header = append(header, s.symbols[tok])
		}
		balances := tablewriter.NewWriter(w)
		balances.SetHeader(header)
		balances.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, acc := range accounts {
			row := []string{acc.String()}
			for _, tok := range tokens {
				t, err := resolver.Resolve(st, tok)
				if err != nil {
					return err
				}
				bal, err := t.BalanceOf(acc)
				if err != nil {
					return err
				}
				row = append(row, s.format(tok, bal))
			}
			balances.Append(row)
		}
		balances.Render()

		if len(s.pools) == 0 {
			return nil
		}
		pools := tablewriter.NewWriter(w)
		pools.SetHeader([]string{"Pool", "Reward", "Staked", "Distributed", "Active", "Ends"})
		for _, addr := range s.pools {
			pool := farming.New(addr, st, resolver)
			params, err := pool.Params()
			if err != nil {
				return err
			}
			staked, err := pool.TotalSupply()
			if err != nil {
				return err
			}
			distributed, err := pool.DistributedTokens()
			if err != nil {
				return err
			}
			active, err := pool.GetActiveAccountCount()
			if err != nil {
				return err
			}
			pools.Append([]string{
				addr.String(),
				s.symbols[params.RewardToken],
				s.format(params.StakingToken, staked),
				s.format(params.RewardToken, distributed),
				fmt.Sprint(active),
				time.Unix(int64(params.EndDate), 0).UTC().Format(time.DateTime),
			})
		}
		pools.Render()
		return nil
	})
}

func simulateAction(ctx *cli.Context) error {
	if _, err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("usage: farmer simulate <scenario.yaml>")
	}
	sc, err := LoadScenario(ctx.Args().First())
	if err != nil {
		return err
	}

	gen := genesis.NewDevnet()
	switch {
	case ctx.String(genesisFlag.Name) != "":
		gen, err = genesis.Load(ctx.String(genesisFlag.Name))
	case sc.Genesis != "":
		gen, err = genesis.Load(sc.Genesis)
	}
	if err != nil {
		return err
	}

	sim, err := newSimulation(gen)
	if err != nil {
		return err
	}
	defer sim.close()

	bar := pb.New64(int64(len(sc.Steps))).
		Prefix("Simulate").
		SetMaxWidth(90).
		Start()
	steps, err := sim.Run(sc, bar)
	if err != nil {
		bar.NotPrint = true
		return err
	}
	bar.Finish()

	accounts := sim.callers
	if ctx.Bool(reportAccountsFlag.Name) {
		accounts = nil
		for _, b := range gen.Tokens[0].Balances {
			accounts = append(accounts, b.Address)
		}
		for _, c := range sim.callers {
			if !slices.Contains(accounts, c) {
				accounts = append(accounts, c)
			}
		}
	}
	return sim.Report(ctx.App.Writer, steps, accounts)
}
