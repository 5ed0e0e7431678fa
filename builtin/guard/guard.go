// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package guard provides the storage backed reentrancy guard of native contracts.
package guard

import (
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/thor"
)

const ReasonReentrant = "ReentrancyGuard: reentrant call"

var slotEntered = thor.BytesToBytes32([]byte("reentrancy-guard"))

type Guard struct {
	entered *solidity.Bool
}

func New(ctx *solidity.Context) *Guard {
	return &Guard{entered: solidity.NewBool(ctx, slotEntered)}
}

// Enter marks the contract busy. The returned release must be deferred by the caller.
func (g *Guard) Enter() (release func(), err error) {
	entered, err := g.entered.Get()
	if err != nil {
		return nil, err
	}
	if entered {
		return nil, reverts.New(ReasonReentrant)
	}
	g.entered.Set(true)
	return func() { g.entered.Set(false) }, nil
}

// Entered reports whether a guarded call is in flight.
func (g *Guard) Entered() (bool, error) {
	return g.entered.Get()
}
