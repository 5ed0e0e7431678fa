// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import (
	"math/big"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

// LockParams describe a new bond.
type LockParams struct {
	Amount        *big.Int
	StartDate     uint64
	LockDuration  uint64
	EpochDuration uint64
	Fee           uint64
	Depositor     thor.Address
	Beneficiary   thor.Address
}

func (t *Treasure) invoke(env *xenv.Environment, op string, fn func(cfg *config) error) error {
	logger.Debug(op, "treasure", t.addr, "caller", env.Caller())

	err := env.Call(func() error {
		release, err := t.guard.Enter()
		if err != nil {
			return err
		}
		defer release()

		cfg, err := t.config()
		if err != nil {
			return err
		}
		return fn(cfg)
	})
	if err != nil {
		metricRejections().AddWithLabel(1, map[string]string{"op": op})
		logger.Info(op+" rejected", "treasure", t.addr, "caller", env.Caller(), "error", err)
		return err
	}
	metricOperations().AddWithLabel(1, map[string]string{"op": op})
	return nil
}

// Lock records a bond and pulls its amount from the factory.
func (t *Treasure) Lock(env *xenv.Environment, p *LockParams) error {
	return t.invoke(env, "lock", func(cfg *config) error {
		switch {
		case env.Caller() != cfg.Factory:
			return reverts.New(ReasonOnlyFactory)
		case p.LockDuration == 0 || p.EpochDuration == 0:
			return reverts.New(ReasonZeroDuration)
		case p.LockDuration < cfg.Limits.MinLockDuration || p.LockDuration < p.EpochDuration:
			return reverts.New(ReasonInvalidDuration)
		case overflows(p.StartDate, p.LockDuration):
			return reverts.New(ReasonInvalidDuration)
		case p.Fee > cfg.Limits.MaxLockFee:
			return reverts.New(ReasonTooHighFee)
		case p.StartDate < env.Now():
			return reverts.New(ReasonInPast)
		}
		existing, err := t.active(p.Beneficiary, p.Depositor)
		if err != nil {
			return err
		}
		if existing != nil {
			return reverts.New(ReasonAlreadyLocked)
		}
		if p.Amount == nil || p.Amount.Sign() <= 0 {
			return reverts.New(ReasonZeroAmount)
		}

		if err := t.locks.Set(lockKey{p.Beneficiary, p.Depositor}, &Lock{
			Amount:        new(big.Int).Set(p.Amount),
			StartDate:     p.StartDate,
			LockDuration:  p.LockDuration,
			EpochDuration: p.EpochDuration,
			Fee:           p.Fee,
		}); err != nil {
			return err
		}
		if err := t.totalLocked.Add(p.Amount); err != nil {
			return err
		}

		lockToken, err := t.resolver.Resolve(env.State(), cfg.Token)
		if err != nil {
			return err
		}
		if err := token.SafeTransferFrom(env.WithCaller(t.addr), lockToken, env.Caller(), t.addr, p.Amount); err != nil {
			return err
		}
		t.log(env, EventFundsLocked, []thor.Address{p.Depositor, p.Beneficiary}, p.Amount)
		return nil
	})
}

// Unlock pays the caller's bond against depositor out, keeping the lock fee for the fee recipient.
func (t *Treasure) Unlock(env *xenv.Environment, depositor thor.Address) error {
	return t.invoke(env, "unlock", func(cfg *config) error {
		beneficiary := env.Caller()
		key := lockKey{beneficiary, depositor}
		l, err := t.locks.Get(key)
		if err != nil {
			return err
		}
		if l.Amount == nil || l.Amount.Sign() == 0 {
			return reverts.New(ReasonNotContributed)
		}
		if env.Now() < l.UnlockDate() {
			return reverts.New(ReasonNotFinished)
		}
		if l.Distributed {
			return reverts.New(ReasonDistributed)
		}

		l.Distributed = true
		if err := t.locks.Set(key, l); err != nil {
			return err
		}
		if err := t.totalLocked.Sub(l.Amount); err != nil {
			return err
		}

		fee := new(big.Int).Mul(l.Amount, new(big.Int).SetUint64(l.Fee))
		fee.Div(fee, big.NewInt(100))
		payout := new(big.Int).Sub(l.Amount, fee)

		lockToken, err := t.resolver.Resolve(env.State(), cfg.Token)
		if err != nil {
			return err
		}
		self := env.WithCaller(t.addr)
		if err := token.SafeTransfer(self, lockToken, beneficiary, payout); err != nil {
			return err
		}
		if fee.Sign() > 0 {
			recipient, err := t.feeRecipient.Get()
			if err != nil {
				return err
			}
			if err := token.SafeTransfer(self, lockToken, recipient, fee); err != nil {
				return err
			}
		}
		t.log(env, EventFundsUnlocked, []thor.Address{beneficiary}, l.Amount)
		return nil
	})
}

// ChangeFeeRecipient sets the receiver of lock fees. Owner only.
func (t *Treasure) ChangeFeeRecipient(env *xenv.Environment, recipient thor.Address) error {
	return t.invoke(env, "change-fee-recipient", func(*config) error {
		if err := t.ownable.OnlyOwner(env.Caller()); err != nil {
			return err
		}
		if recipient.IsZero() {
			return reverts.New(ReasonZeroRecipient)
		}
		prev, err := t.feeRecipient.Get()
		if err != nil {
			return err
		}
		t.feeRecipient.Set(recipient)
		t.log(env, EventFeeRecipientChanged, []thor.Address{prev, recipient}, new(big.Int))
		return nil
	})
}

// TransferOwnership hands the treasure over to newOwner.
func (t *Treasure) TransferOwnership(env *xenv.Environment, newOwner thor.Address) error {
	return t.ownable.TransferOwnership(env, newOwner)
}

func (t *Treasure) log(env *xenv.Environment, name string, topics []thor.Address, amount *big.Int) {
	env.Log(&xenv.Event{
		Address: t.addr,
		Name:    name,
		Topics:  topics,
		Amount:  new(big.Int).Set(amount),
	})
}
