// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
)

// Resolver finds the asset living at an address.
type Resolver interface {
	Resolve(st *state.State, addr thor.Address) (Fungible, error)
}

// StateResolver loads tokens deployed in state, honoring their kind.
type StateResolver struct{}

func (StateResolver) Resolve(st *state.State, addr thor.Address) (Fungible, error) {
	t := New(addr, st)
	meta, err := t.Meta()
	if err != nil {
		return nil, err
	}
	switch meta.Kind {
	case KindVoid:
		return &VoidToken{t}, nil
	case KindStandard:
		return t, nil
	}
	return nil, reverts.New(ReasonNonContract)
}

// MapResolver serves the given assets, falling back to Fallback for others.
type MapResolver struct {
	Tokens   map[thor.Address]Fungible
	Fallback Resolver
}

func (m *MapResolver) Resolve(st *state.State, addr thor.Address) (Fungible, error) {
	if t, ok := m.Tokens[addr]; ok {
		return t, nil
	}
	if m.Fallback == nil {
		return nil, reverts.New(ReasonNonContract)
	}
	return m.Fallback.Resolve(st, addr)
}
