// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package treasure implements the lock ledger holding the bonds of pool
// deployers until their lock period is over.
package treasure

import (
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/guard"
	"github.com/whiteswap/farming/builtin/ownable"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

var logger = log.WithContext("pkg", "treasure")

const (
	ReasonZeroToken        = "Token can not be zero address"
	ReasonZeroFeeRecipient = "FeeRecipient Can not be zero address"
	ReasonZeroFactory      = "Factory can not be zero address"
	ReasonOnlyFactory      = "Allowed only for factory"
	ReasonZeroDuration     = "Can not be zero duration"
	ReasonInvalidDuration  = "Invalid duration"
	ReasonTooHighFee       = "Too high fee"
	ReasonInPast           = "Can not be in past"
	ReasonAlreadyLocked    = "Already locked"
	ReasonZeroAmount       = "Can not lock zero amount"
	ReasonNotContributed   = "Not contributed"
	ReasonNotFinished      = "Finish date is not reached"
	ReasonDistributed      = "Already distributed"
	ReasonZeroRecipient    = "Fee recipient can not be zero address"
	ReasonNoTreasure       = "Treasure does not exist"

	EventFundsLocked         = "FundsLocked"
	EventFundsUnlocked       = "FundsUnlocked"
	EventFeeRecipientChanged = "FeeRecipientChanged"
)

var (
	slotConfig       = thor.BytesToBytes32([]byte("config"))
	slotFeeRecipient = thor.BytesToBytes32([]byte("feeRecipient"))
	slotTotalLocked  = thor.BytesToBytes32([]byte("totalLocked"))
	slotLocks        = thor.BytesToBytes32([]byte("locks"))
)

type config struct {
	Token   thor.Address
	Factory thor.Address
	Limits  Limits
}

// Limits bound the bonds a treasure accepts. Zero fields take the thor defaults.
type Limits struct {
	MinLockDuration uint64
	MaxLockFee      uint64 // percent
}

// DefaultLimits returns the limits of a treasure deployed without any.
func DefaultLimits() Limits {
	return Limits{MinLockDuration: thor.MinLockDuration, MaxLockFee: thor.MaxLockFee}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MinLockDuration == 0 {
		l.MinLockDuration = def.MinLockDuration
	}
	if l.MaxLockFee == 0 {
		l.MaxLockFee = def.MaxLockFee
	}
	return l
}

// Lock is the bond of a beneficiary against a depositor.
type Lock struct {
	Amount        *big.Int
	StartDate     uint64
	LockDuration  uint64
	EpochDuration uint64
	Fee           uint64 // percent kept on unlock
	Distributed   bool
}

// UnlockDate is the first time the bond can be paid out.
func (l *Lock) UnlockDate() uint64 {
	return thor.Deadline(l.StartDate, l.LockDuration)
}

// overflows reports whether the lock period runs past the largest time.
func overflows(start, duration uint64) bool {
	return start > math.MaxUint64-duration
}

type lockKey struct {
	beneficiary, depositor thor.Address
}

func (k lockKey) Bytes() []byte {
	return append(k.beneficiary.Bytes(), k.depositor.Bytes()...)
}

// Treasure binds the lock ledger living at an address.
type Treasure struct {
	addr         thor.Address
	state        *state.State
	resolver     token.Resolver
	ownable      *ownable.Ownable
	guard        *guard.Guard
	feeRecipient *solidity.Address
	totalLocked  *solidity.Uint256
	locks        *solidity.Mapping[lockKey, *Lock]
}

func New(addr thor.Address, st *state.State, resolver token.Resolver) *Treasure {
	ctx := solidity.NewContext(addr, st)
	return &Treasure{
		addr:         addr,
		state:        st,
		resolver:     resolver,
		ownable:      ownable.New(ctx),
		guard:        guard.New(ctx),
		feeRecipient: solidity.NewAddress(ctx, slotFeeRecipient),
		totalLocked:  solidity.NewUint256(ctx, slotTotalLocked),
		locks:        solidity.NewMapping[lockKey, *Lock](ctx, slotLocks),
	}
}

// Deploy creates a treasure at addr holding lockToken. Only factory may lock.
func Deploy(
	env *xenv.Environment,
	addr, lockToken, feeRecipient, factory, owner thor.Address,
	limits Limits,
	resolver token.Resolver,
) (*Treasure, error) {
	t := New(addr, env.State(), resolver)
	limits = limits.withDefaults()
	err := env.Call(func() error {
		switch {
		case lockToken.IsZero():
			return reverts.New(ReasonZeroToken)
		case feeRecipient.IsZero():
			return reverts.New(ReasonZeroFeeRecipient)
		case factory.IsZero():
			return reverts.New(ReasonZeroFactory)
		case limits.MaxLockFee > 100:
			return reverts.New(ReasonTooHighFee)
		}
		if err := t.state.EncodeStorage(addr, slotConfig, func() ([]byte, error) {
			return rlp.EncodeToBytes(&config{Token: lockToken, Factory: factory, Limits: limits})
		}); err != nil {
			return err
		}
		t.feeRecipient.Set(feeRecipient)
		return t.ownable.Init(env, owner)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("treasure deployed", "treasure", addr, "token", lockToken, "factory", factory,
		"minLock", limits.MinLockDuration, "maxFee", limits.MaxLockFee)
	return t, nil
}

func (t *Treasure) Address() thor.Address { return t.addr }

func (t *Treasure) config() (*config, error) {
	raw, err := t.state.GetRawStorage(t.addr, slotConfig)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, reverts.New(ReasonNoTreasure)
	}
	var cfg config
	if err := rlp.DecodeBytes(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode treasure config")
	}
	return &cfg, nil
}

// Token returns the locked asset.
func (t *Treasure) Token() (thor.Address, error) {
	cfg, err := t.config()
	if err != nil {
		return thor.Address{}, err
	}
	return cfg.Token, nil
}

func (t *Treasure) Factory() (thor.Address, error) {
	cfg, err := t.config()
	if err != nil {
		return thor.Address{}, err
	}
	return cfg.Factory, nil
}

// Limits returns the duration and fee bounds applied to new locks.
func (t *Treasure) Limits() (Limits, error) {
	cfg, err := t.config()
	if err != nil {
		return Limits{}, err
	}
	return cfg.Limits, nil
}

func (t *Treasure) FeeRecipient() (thor.Address, error) {
	return t.feeRecipient.Get()
}

func (t *Treasure) Owner() (thor.Address, error) {
	return t.ownable.Owner()
}

// TotalLocked returns the sum of all undistributed bonds.
func (t *Treasure) TotalLocked() (*big.Int, error) {
	return t.totalLocked.Get()
}

// active returns the undistributed lock of the pair, or nil.
func (t *Treasure) active(beneficiary, depositor thor.Address) (*Lock, error) {
	l, err := t.locks.Get(lockKey{beneficiary, depositor})
	if err != nil {
		return nil, err
	}
	if l.Amount == nil || l.Amount.Sign() == 0 || l.Distributed {
		return nil, nil
	}
	return l, nil
}

// GetLock returns the undistributed lock of the pair, nil when there is none.
func (t *Treasure) GetLock(beneficiary, depositor thor.Address) (*Lock, error) {
	return t.active(beneficiary, depositor)
}

func (t *Treasure) GetContribution(beneficiary, depositor thor.Address) (*big.Int, error) {
	l, err := t.active(beneficiary, depositor)
	if err != nil || l == nil {
		return new(big.Int), err
	}
	return l.Amount, nil
}

func (t *Treasure) GetLockFee(beneficiary, depositor thor.Address) (uint64, error) {
	return t.field(beneficiary, depositor, func(l *Lock) uint64 { return l.Fee })
}

func (t *Treasure) GetStartFarmingPoolDate(beneficiary, depositor thor.Address) (uint64, error) {
	return t.field(beneficiary, depositor, func(l *Lock) uint64 { return l.StartDate })
}

func (t *Treasure) GetLockDuration(beneficiary, depositor thor.Address) (uint64, error) {
	return t.field(beneficiary, depositor, func(l *Lock) uint64 { return l.LockDuration })
}

func (t *Treasure) GetEpochDuration(beneficiary, depositor thor.Address) (uint64, error) {
	return t.field(beneficiary, depositor, func(l *Lock) uint64 { return l.EpochDuration })
}

func (t *Treasure) GetUnlockDate(beneficiary, depositor thor.Address) (uint64, error) {
	return t.field(beneficiary, depositor, (*Lock).UnlockDate)
}

// GetIsDistributedLockedFunds reads false for paid out locks too, since they read as absent.
func (t *Treasure) GetIsDistributedLockedFunds(beneficiary, depositor thor.Address) (bool, error) {
	l, err := t.active(beneficiary, depositor)
	if err != nil || l == nil {
		return false, err
	}
	return l.Distributed, nil
}

func (t *Treasure) field(beneficiary, depositor thor.Address, get func(*Lock) uint64) (uint64, error) {
	l, err := t.active(beneficiary, depositor)
	if err != nil || l == nil {
		return 0, err
	}
	return get(l), nil
}
