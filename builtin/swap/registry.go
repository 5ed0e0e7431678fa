// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package swap keeps the registry of liquidity pairs. Pool factories accept
// only registered pairs as staking assets.
package swap

import (
	"bytes"
	"math/big"

	"github.com/whiteswap/farming/builtin/ownable"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

var logger = log.WithContext("pkg", "swap")

const (
	ReasonIdentical = "Identical addresses"
	ReasonZero      = "Zero address"
	ReasonExists    = "Pair exists"

	EventPairCreated = "PairCreated"
	EventPairPushed  = "PairPushed"
)

var (
	slotPairs    = thor.BytesToBytes32([]byte("pairs"))
	slotIsPair   = thor.BytesToBytes32([]byte("isPair"))
	slotAllPairs = thor.BytesToBytes32([]byte("allPairs"))
	slotLength   = thor.BytesToBytes32([]byte("allPairsLength"))
)

type tokenPair struct {
	token0, token1 thor.Address
}

func (p tokenPair) Bytes() []byte {
	return append(p.token0.Bytes(), p.token1.Bytes()...)
}

// sortTokens orders two tokens the way pair addresses are derived.
func sortTokens(a, b thor.Address) tokenPair {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return tokenPair{a, b}
}

// Registry binds the pair registry living at an address.
type Registry struct {
	addr     thor.Address
	state    *state.State
	ownable  *ownable.Ownable
	pairs    *solidity.Mapping[tokenPair, thor.Address]
	isPair   *solidity.Mapping[thor.Address, bool]
	allPairs *solidity.Mapping[solidity.Uint64Key, thor.Address]
	length   *solidity.Uint256
}

func New(addr thor.Address, st *state.State) *Registry {
	ctx := solidity.NewContext(addr, st)
	return &Registry{
		addr:     addr,
		state:    st,
		ownable:  ownable.New(ctx),
		pairs:    solidity.NewMapping[tokenPair, thor.Address](ctx, slotPairs),
		isPair:   solidity.NewMapping[thor.Address, bool](ctx, slotIsPair),
		allPairs: solidity.NewMapping[solidity.Uint64Key, thor.Address](ctx, slotAllPairs),
		length:   solidity.NewUint256(ctx, slotLength),
	}
}

// Deploy creates a registry at addr owned by owner.
func Deploy(env *xenv.Environment, addr, owner thor.Address) (*Registry, error) {
	r := New(addr, env.State())
	if err := env.Call(func() error {
		return r.ownable.Init(env, owner)
	}); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) Address() thor.Address { return r.addr }

func (r *Registry) Owner() (thor.Address, error) {
	return r.ownable.Owner()
}

// PairAddress returns the address the pair of two tokens is created at.
func (r *Registry) PairAddress(tokenA, tokenB thor.Address) thor.Address {
	p := sortTokens(tokenA, tokenB)
	return thor.CreateContractAddress2(r.addr, thor.PairSalt(p.token0, p.token1), thor.SwapPairCodeHash)
}

// CreatePair creates the liquidity token of two tokens. The registry is its minter.
func (r *Registry) CreatePair(env *xenv.Environment, tokenA, tokenB thor.Address) (pair thor.Address, err error) {
	err = env.Call(func() error {
		if tokenA == tokenB {
			return reverts.New(ReasonIdentical)
		}
		p := sortTokens(tokenA, tokenB)
		if p.token0.IsZero() {
			return reverts.New(ReasonZero)
		}
		existing, err := r.pairs.Get(p)
		if err != nil {
			return err
		}
		if !existing.IsZero() {
			return reverts.New(ReasonExists)
		}

		pair = r.PairAddress(tokenA, tokenB)
		if _, err := token.Deploy(env.State(), pair, token.Meta{
			Name:     "Whiteswap V2",
			Symbol:   "WSL",
			Decimals: 18,
			Kind:     token.KindStandard,
			Minter:   r.addr,
		}); err != nil {
			return reverts.New(ReasonExists)
		}
		if err := r.pairs.Set(p, pair); err != nil {
			return err
		}
		if err := r.register(pair); err != nil {
			return err
		}
		env.Log(&xenv.Event{
			Address: r.addr,
			Name:    EventPairCreated,
			Topics:  []thor.Address{p.token0, p.token1, pair},
			Amount:  new(big.Int),
		})
		return nil
	})
	if err != nil {
		return thor.Address{}, err
	}
	logger.Debug("pair created", "pair", pair, "tokenA", tokenA, "tokenB", tokenB)
	return pair, nil
}

// PushPair registers an externally created pair. Owner only.
func (r *Registry) PushPair(env *xenv.Environment, pair thor.Address) error {
	return env.Call(func() error {
		if err := r.ownable.OnlyOwner(env.Caller()); err != nil {
			return err
		}
		if pair.IsZero() {
			return reverts.New(ReasonZero)
		}
		known, err := r.isPair.Get(pair)
		if err != nil {
			return err
		}
		if known {
			return reverts.New(ReasonExists)
		}
		if err := r.register(pair); err != nil {
			return err
		}
		env.Log(&xenv.Event{
			Address: r.addr,
			Name:    EventPairPushed,
			Topics:  []thor.Address{pair},
			Amount:  new(big.Int),
		})
		return nil
	})
}

func (r *Registry) register(pair thor.Address) error {
	if err := r.isPair.Set(pair, true); err != nil {
		return err
	}
	n, err := r.length.Get()
	if err != nil {
		return err
	}
	if err := r.allPairs.Set(solidity.Uint64Key(n.Uint64()), pair); err != nil {
		return err
	}
	return r.length.Add(big.NewInt(1))
}

func (r *Registry) IsPair(addr thor.Address) (bool, error) {
	return r.isPair.Get(addr)
}

// GetPair returns the pair of two tokens in either order, zero if none.
func (r *Registry) GetPair(tokenA, tokenB thor.Address) (thor.Address, error) {
	return r.pairs.Get(sortTokens(tokenA, tokenB))
}

func (r *Registry) AllPairsLength() (uint64, error) {
	n, err := r.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

func (r *Registry) AllPairs() ([]thor.Address, error) {
	n, err := r.AllPairsLength()
	if err != nil {
		return nil, err
	}
	pairs := make([]thor.Address, 0, n)
	for i := range n {
		pair, err := r.allPairs.Get(solidity.Uint64Key(i))
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}
