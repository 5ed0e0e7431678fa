// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/thor"
)

var (
	ErrOverflow  = errors.New("uint256 overflow")
	ErrUnderflow = errors.New("uint256 underflow")
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Arithmetic is checked, values that do not fit 256 bits or go below zero are rejected.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, slot thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) get() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(storage[:]), nil
}

func (u *Uint256) set(v *uint256.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, thor.Bytes32(v.Bytes32()))
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.get()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return ErrUnderflow
	}
	v, overflow := uint256.FromBig(value)
	if overflow {
		return ErrOverflow
	}
	u.set(v)
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	cur, err := u.get()
	if err != nil {
		return err
	}
	delta, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return ErrOverflow
	}
	if _, overflow := cur.AddOverflow(cur, delta); overflow {
		return ErrOverflow
	}
	u.set(cur)
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	cur, err := u.get()
	if err != nil {
		return err
	}
	delta, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return ErrUnderflow
	}
	if _, underflow := cur.SubOverflow(cur, delta); underflow {
		return ErrUnderflow
	}
	u.set(cur)
	return nil
}

// Increment adds one and returns the new value.
func (u *Uint256) Increment() (*big.Int, error) {
	if err := u.Add(big.NewInt(1)); err != nil {
		return nil, err
	}
	return u.Get()
}
