// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"math/big"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

// ChangeLockAmount sets the bond required from future pool deployers.
func (f *Factory) ChangeLockAmount(env *xenv.Environment, amount *big.Int) error {
	return f.invoke(env, "changeLockAmount", func(*addresses) error {
		if err := f.ownable.OnlyOwner(env.Caller()); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.New(ReasonZeroAmount)
		}
		if err := f.lockAmount.Set(amount); err != nil {
			return err
		}
		env.Log(&xenv.Event{Address: f.addr, Name: EventLockAmountChanged, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// ChangeWsUnlockCommissionPercent sets the unlock fee applied to future bonds.
func (f *Factory) ChangeWsUnlockCommissionPercent(env *xenv.Environment, percent uint64) error {
	return f.invoke(env, "changeWsUnlockCommissionPercent", func(*addresses) error {
		if err := f.ownable.OnlyOwner(env.Caller()); err != nil {
			return err
		}
		limits, err := f.Limits()
		if err != nil {
			return err
		}
		if percent > limits.MaxUnlockCommissionPercent {
			return reverts.New(ReasonTooHighPercent)
		}
		if err := f.commission.Set(new(big.Int).SetUint64(percent)); err != nil {
			return err
		}
		env.Log(&xenv.Event{Address: f.addr, Name: EventCommissionChanged, Amount: new(big.Int).SetUint64(percent)})
		return nil
	})
}

func (f *Factory) TransferOwnership(env *xenv.Environment, newOwner thor.Address) error {
	return f.ownable.TransferOwnership(env, newOwner)
}
