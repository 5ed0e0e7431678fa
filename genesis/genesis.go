// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes the initial ledger: tokens and balances,
// liquidity pairs and the pool factory with its treasure.
package genesis

import (
	"bytes"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/whiteswap/farming/builtin/swap"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
)

// Deployer is the creator of every genesis contract address.
var Deployer = thor.BytesToAddress([]byte("genesis"))

// Genesis is the initial ledger layout.
type Genesis struct {
	LaunchTime uint64       `yaml:"launchTime" validate:"required"`
	Owner      thor.Address `yaml:"owner" validate:"required"` // time lock of the factory and the registry
	Tokens     []*Token     `yaml:"tokens" validate:"required,min=1,dive,required"`
	Pairs      []*Pair      `yaml:"pairs" validate:"dive,required"`
	Factory    *Factory     `yaml:"factory" validate:"required"`
}

type Token struct {
	Symbol     string        `yaml:"symbol" validate:"required,alphanum,max=16"`
	Name       string        `yaml:"name" validate:"required"`
	Decimals   uint8         `yaml:"decimals" validate:"lte=36"`
	Kind       string        `yaml:"kind" validate:"omitempty,oneof=standard void"`
	Commission uint8         `yaml:"commission" validate:"lt=100"`
	Minter     *thor.Address `yaml:"minter"` // the owner when absent
	Balances   []*Balance    `yaml:"balances" validate:"dive,required"`
}

// Pair is a liquidity pair of two genesis tokens, referenced by symbol.
type Pair struct {
	TokenA   string     `yaml:"tokenA" validate:"required,nefield=TokenB"`
	TokenB   string     `yaml:"tokenB" validate:"required"`
	Balances []*Balance `yaml:"balances" validate:"dive,required"`
}

type Balance struct {
	Address thor.Address `yaml:"address" validate:"required"`
	Amount  *Amount      `yaml:"amount" validate:"required"`
}

type Factory struct {
	LockToken               string  `yaml:"lockToken" validate:"required"`
	LockAmount              *Amount `yaml:"lockAmount" validate:"required"`
	UnlockCommissionPercent uint64  `yaml:"unlockCommissionPercent" validate:"lt=100"`
	Limits                  *Limits `yaml:"limits"`
}

// Limits override the default pool and lock bounds. Durations are in seconds,
// zero keeps the default.
type Limits struct {
	MinEpochDuration           uint64 `yaml:"minEpochDuration"`
	MinLockDuration            uint64 `yaml:"minLockDuration"`
	MinExitDelay               uint64 `yaml:"minExitDelay"`
	MaxExitDelay               uint64 `yaml:"maxExitDelay" validate:"omitempty,gtefield=MinExitDelay"`
	MaxLockFee                 uint64 `yaml:"maxLockFee" validate:"lte=100"`
	MaxUnlockCommissionPercent uint64 `yaml:"maxUnlockCommissionPercent" validate:"lt=100"`
}

// Addresses are where the genesis contracts live.
type Addresses struct {
	Tokens   map[string]thor.Address
	Pairs    []thor.Address
	Registry thor.Address
	Factory  thor.Address
	Treasure thor.Address
}

// Load reads and validates a genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks field constraints and symbol references.
func (g *Genesis) Validate() error {
	if err := validator.New().Struct(g); err != nil {
		return errors.Wrap(err, "invalid genesis")
	}
	symbols := make(map[string]bool, len(g.Tokens))
	for _, t := range g.Tokens {
		if symbols[t.Symbol] {
			return errors.Errorf("duplicated token %v", t.Symbol)
		}
		symbols[t.Symbol] = true
	}
	pairs := make(map[[2]string]bool, len(g.Pairs))
	for _, p := range g.Pairs {
		for _, s := range []string{p.TokenA, p.TokenB} {
			if !symbols[s] {
				return errors.Errorf("pair of unknown token %v", s)
			}
		}
		key := [2]string{min(p.TokenA, p.TokenB), max(p.TokenA, p.TokenB)}
		if pairs[key] {
			return errors.Errorf("duplicated pair %v/%v", p.TokenA, p.TokenB)
		}
		pairs[key] = true
	}
	if !symbols[g.Factory.LockToken] {
		return errors.Errorf("unknown lock token %v", g.Factory.LockToken)
	}
	return nil
}

func (t *Token) kind() token.Kind {
	if t.Kind == "void" {
		return token.KindVoid
	}
	return token.KindStandard
}

// Addresses derives the contract addresses. Tokens come first, then the
// registry and the factory, each at the next nonce of Deployer.
func (g *Genesis) Addresses() *Addresses {
	a := &Addresses{Tokens: make(map[string]thor.Address, len(g.Tokens))}
	nonce := uint64(0)
	for _, t := range g.Tokens {
		a.Tokens[t.Symbol] = thor.CreateContractAddress(Deployer, nonce)
		nonce++
	}
	a.Registry = thor.CreateContractAddress(Deployer, nonce)
	a.Factory = thor.CreateContractAddress(Deployer, nonce+1)
	a.Treasure = thor.CreateContractAddress(a.Factory, 0)

	registry := swap.New(a.Registry, nil)
	for _, p := range g.Pairs {
		a.Pairs = append(a.Pairs, registry.PairAddress(a.Tokens[p.TokenA], a.Tokens[p.TokenB]))
	}
	return a
}
