// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ownable keeps the owner of a native contract.
package ownable

import (
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

const (
	ReasonNotOwner  = "Ownable: caller is not the owner"
	ReasonZeroOwner = "Ownable: new owner is the zero address"

	EventOwnershipTransferred = "OwnershipTransferred"
)

var slotOwner = thor.BytesToBytes32([]byte("owner"))

type Ownable struct {
	contract thor.Address
	owner    *solidity.Address
}

func New(ctx *solidity.Context) *Ownable {
	return &Ownable{contract: ctx.Address(), owner: solidity.NewAddress(ctx, slotOwner)}
}

func (o *Ownable) Owner() (thor.Address, error) {
	return o.owner.Get()
}

// Init sets the first owner.
func (o *Ownable) Init(env *xenv.Environment, owner thor.Address) error {
	return o.setOwner(env, owner)
}

// OnlyOwner fails unless caller is the owner.
func (o *Ownable) OnlyOwner(caller thor.Address) error {
	owner, err := o.owner.Get()
	if err != nil {
		return err
	}
	if owner != caller {
		return reverts.New(ReasonNotOwner)
	}
	return nil
}

func (o *Ownable) TransferOwnership(env *xenv.Environment, newOwner thor.Address) error {
	return env.Call(func() error {
		if err := o.OnlyOwner(env.Caller()); err != nil {
			return err
		}
		if newOwner.IsZero() {
			return reverts.New(ReasonZeroOwner)
		}
		return o.setOwner(env, newOwner)
	})
}

func (o *Ownable) setOwner(env *xenv.Environment, newOwner thor.Address) error {
	prev, err := o.owner.Get()
	if err != nil {
		return err
	}
	o.owner.Set(newOwner)
	env.Log(&xenv.Event{
		Address: o.contract,
		Name:    EventOwnershipTransferred,
		Topics:  []thor.Address{prev, newOwner},
	})
	return nil
}
