// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token defines the fungible asset capabilities consumed by contracts,
// the storage backed asset implementation and safe transfer helpers.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

const ReasonSafeFailed = "SafeERC20: ERC20 operation did not succeed"

// Fungible is the read side of an asset.
type Fungible interface {
	Address() thor.Address
	BalanceOf(owner thor.Address) (*big.Int, error)
}

// Checked is an asset whose operations report success with a bool.
// The spender or sender is env.Caller().
type Checked interface {
	Fungible
	Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) (bool, error)
	TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) (bool, error)
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) (bool, error)
}

// Unchecked is an asset whose operations return nothing and signal failure only by error.
type Unchecked interface {
	Fungible
	Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) error
	TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) error
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error
}

func checkResult(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(ReasonSafeFailed)
	}
	return nil
}

func unsupported(t Fungible) error {
	return errors.Errorf("token %v supports neither checked nor unchecked operations", t.Address())
}

// SafeTransfer transfers amount from env.Caller() to to.
func SafeTransfer(env *xenv.Environment, t Fungible, to thor.Address, amount *big.Int) error {
	switch tok := t.(type) {
	case Checked:
		return checkResult(tok.Transfer(env, to, amount))
	case Unchecked:
		return tok.Transfer(env, to, amount)
	}
	return unsupported(t)
}

// SafeTransferFrom transfers amount from from to to, spending env.Caller()'s allowance.
func SafeTransferFrom(env *xenv.Environment, t Fungible, from, to thor.Address, amount *big.Int) error {
	switch tok := t.(type) {
	case Checked:
		return checkResult(tok.TransferFrom(env, from, to, amount))
	case Unchecked:
		return tok.TransferFrom(env, from, to, amount)
	}
	return unsupported(t)
}

// SafeApprove sets env.Caller()'s allowance for spender.
func SafeApprove(env *xenv.Environment, t Fungible, spender thor.Address, amount *big.Int) error {
	switch tok := t.(type) {
	case Checked:
		return checkResult(tok.Approve(env, spender, amount))
	case Unchecked:
		return tok.Approve(env, spender, amount)
	}
	return unsupported(t)
}
