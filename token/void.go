// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

// VoidToken exposes a Token with the void calling convention,
// like assets whose transfer functions declare no return value.
type VoidToken struct {
	*Token
}

var _ Unchecked = (*VoidToken)(nil)

func (v *VoidToken) Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) error {
	_, err := v.Token.Transfer(env, to, amount)
	return err
}

func (v *VoidToken) TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) error {
	_, err := v.Token.TransferFrom(env, from, to, amount)
	return err
}

func (v *VoidToken) Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error {
	_, err := v.Token.Approve(env, spender, amount)
	return err
}
