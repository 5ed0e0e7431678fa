// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/builtin/ownable"
	"github.com/whiteswap/farming/lvldb"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

const (
	now      uint64 = 1_000_000
	duration        = 30 * thor.Day
)

func M(a ...any) []any {
	return a
}

type testSetup struct {
	st       *state.State
	blockCtx *xenv.BlockContext

	resolver *token.MapResolver

	minter, factory, feeRecipient, owner thor.Address

	wsd      *token.Token
	treasure *Treasure
}

func newTestSetup(t *testing.T) *testSetup {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := &testSetup{
		st:           state.NewStater(db, 1).NewState(),
		blockCtx:     &xenv.BlockContext{Number: 1, Time: now},
		resolver:     &token.MapResolver{Tokens: map[thor.Address]token.Fungible{}, Fallback: token.StateResolver{}},
		minter:       datagen.RandAddress(),
		factory:      datagen.RandAddress(),
		feeRecipient: datagen.RandAddress(),
		owner:        datagen.RandAddress(),
	}
	s.wsd, err = token.Deploy(s.st, datagen.RandAddress(), token.Meta{Name: "Whiteswap", Symbol: "WSD", Decimals: 18, Kind: token.KindStandard, Minter: s.minter})
	require.NoError(t, err)

	s.treasure, err = Deploy(s.as(s.factory), datagen.RandAddress(), s.wsd.Address(), s.feeRecipient, s.factory, s.owner, Limits{}, s.resolver)
	require.NoError(t, err)

	require.NoError(t, s.wsd.Mint(s.as(s.minter), s.factory, big.NewInt(1_000_000)))
	_, err = s.wsd.Approve(s.as(s.factory), s.treasure.Address(), big.NewInt(1_000_000))
	require.NoError(t, err)
	return s
}

func (s *testSetup) as(caller thor.Address) *xenv.Environment {
	return xenv.New(s.st, s.blockCtx, caller)
}

func (s *testSetup) at(time uint64) *testSetup {
	s.blockCtx.Time = time
	return s
}

func (s *testSetup) balance(t *testing.T, owner thor.Address) int64 {
	bal, err := s.wsd.BalanceOf(owner)
	require.NoError(t, err)
	return bal.Int64()
}

func lockParams(amount int64, fee uint64, depositor, beneficiary thor.Address) *LockParams {
	return &LockParams{
		Amount:        big.NewInt(amount),
		StartDate:     now,
		LockDuration:  duration,
		EpochDuration: duration,
		Fee:           fee,
		Depositor:     depositor,
		Beneficiary:   beneficiary,
	}
}

func TestDeploy(t *testing.T) {
	s := newTestSetup(t)
	tr := s.treasure

	assert.Equal(t, M(s.wsd.Address(), nil), M(tr.Token()))
	assert.Equal(t, M(s.factory, nil), M(tr.Factory()))
	assert.Equal(t, M(s.feeRecipient, nil), M(tr.FeeRecipient()))
	assert.Equal(t, M(s.owner, nil), M(tr.Owner()))
	assert.Equal(t, M(DefaultLimits(), nil), M(tr.Limits()))

	a := datagen.RandAddress()
	tests := []struct {
		token, recipient, factory thor.Address
		reason                    string
	}{
		{thor.Address{}, a, a, ReasonZeroToken},
		{a, thor.Address{}, a, ReasonZeroFeeRecipient},
		{a, a, thor.Address{}, ReasonZeroFactory},
	}
	for _, tt := range tests {
		_, err := Deploy(s.as(s.factory), datagen.RandAddress(), tt.token, tt.recipient, tt.factory, s.owner, Limits{}, token.StateResolver{})
		assert.EqualError(t, err, tt.reason)
	}
	_, err := Deploy(s.as(s.factory), datagen.RandAddress(), a, a, a, s.owner, Limits{MaxLockFee: 101}, token.StateResolver{})
	assert.EqualError(t, err, ReasonTooHighFee)

	_, err = New(datagen.RandAddress(), s.st, token.StateResolver{}).Token()
	assert.EqualError(t, err, ReasonNoTreasure)
}

func TestLockUnlockHalfFee(t *testing.T) {
	s := newTestSetup(t)
	pool, deployer := datagen.RandAddress(), datagen.RandAddress()

	require.NoError(t, s.treasure.Lock(s.as(s.factory), lockParams(100, 50, pool, deployer)))
	assert.Equal(t, int64(100), s.balance(t, s.treasure.Address()))

	tr := s.treasure
	total, _ := tr.TotalLocked()
	assert.Equal(t, int64(100), total.Int64())
	contribution, _ := tr.GetContribution(deployer, pool)
	assert.Equal(t, int64(100), contribution.Int64())
	assert.Equal(t, M(uint64(50), nil), M(tr.GetLockFee(deployer, pool)))
	assert.Equal(t, M(now, nil), M(tr.GetStartFarmingPoolDate(deployer, pool)))
	assert.Equal(t, M(duration, nil), M(tr.GetLockDuration(deployer, pool)))
	assert.Equal(t, M(duration, nil), M(tr.GetEpochDuration(deployer, pool)))
	assert.Equal(t, M(now+duration, nil), M(tr.GetUnlockDate(deployer, pool)))
	assert.Equal(t, M(false, nil), M(tr.GetIsDistributedLockedFunds(deployer, pool)))

	assert.EqualError(t, tr.Unlock(s.at(now+duration-1).as(deployer), pool), ReasonNotFinished)

	env := s.at(now + duration).as(deployer)
	require.NoError(t, tr.Unlock(env, pool))
	assert.Equal(t, int64(50), s.balance(t, deployer))
	assert.Equal(t, int64(50), s.balance(t, s.feeRecipient))
	assert.Equal(t, int64(0), s.balance(t, tr.Address()))

	last := env.Events()[len(env.Events())-1]
	assert.Equal(t, EventFundsUnlocked, last.Name)
	assert.Equal(t, []thor.Address{deployer}, last.Topics)
	assert.Equal(t, int64(100), last.Amount.Int64())

	// distributed locks read as absent
	total, _ = tr.TotalLocked()
	assert.Equal(t, 0, total.Sign())
	contribution, _ = tr.GetContribution(deployer, pool)
	assert.Equal(t, 0, contribution.Sign())
	assert.Equal(t, M(uint64(0), nil), M(tr.GetUnlockDate(deployer, pool)))
	assert.Equal(t, M(uint64(0), nil), M(tr.GetLockFee(deployer, pool)))
	assert.Equal(t, M(false, nil), M(tr.GetIsDistributedLockedFunds(deployer, pool)))

	assert.EqualError(t, tr.Unlock(env, pool), ReasonDistributed)
}

func TestUnlockFeeRounding(t *testing.T) {
	tests := []struct {
		amount      int64
		fee         uint64
		beneficiary int64
		recipient   int64
	}{
		{101, 50, 51, 50},
		{3, 10, 3, 0},
		{999, 33, 670, 329},
		{100, 0, 100, 0},
	}
	for _, tt := range tests {
		s := newTestSetup(t)
		pool, deployer := datagen.RandAddress(), datagen.RandAddress()
		require.NoError(t, s.treasure.Lock(s.as(s.factory), lockParams(tt.amount, tt.fee, pool, deployer)))

		env := s.at(now + duration).as(deployer)
		require.NoError(t, s.treasure.Unlock(env, pool))
		assert.Equal(t, tt.beneficiary, s.balance(t, deployer))
		assert.Equal(t, tt.recipient, s.balance(t, s.feeRecipient))

		if tt.recipient == 0 {
			for _, ev := range env.Events() {
				if ev.Name == token.EventTransfer {
					assert.NotEqual(t, s.feeRecipient, ev.Topics[1], "no fee transfer expected")
				}
			}
		}
	}
}

func TestLockErrors(t *testing.T) {
	s := newTestSetup(t)
	pool, deployer := datagen.RandAddress(), datagen.RandAddress()

	tests := []struct {
		name   string
		caller thor.Address
		modify func(p *LockParams)
		reason string
	}{
		{"not factory", deployer, func(*LockParams) {}, ReasonOnlyFactory},
		{"zero lock duration", s.factory, func(p *LockParams) { p.LockDuration = 0 }, ReasonZeroDuration},
		{"zero epoch", s.factory, func(p *LockParams) { p.EpochDuration = 0 }, ReasonZeroDuration},
		{"short lock", s.factory, func(p *LockParams) { p.LockDuration, p.EpochDuration = 100, 100 }, ReasonInvalidDuration},
		{"lock shorter than epoch", s.factory, func(p *LockParams) { p.EpochDuration = p.LockDuration + 1 }, ReasonInvalidDuration},
		{"fee", s.factory, func(p *LockParams) { p.Fee = 60 }, ReasonTooHighFee},
		{"past", s.factory, func(p *LockParams) { p.StartDate = now - 1 }, ReasonInPast},
		{"unlock date overflow", s.factory, func(p *LockParams) { p.LockDuration = math.MaxUint64 - p.StartDate + 1 }, ReasonInvalidDuration},
		{"unlock date far past max time", s.factory, func(p *LockParams) { p.LockDuration = math.MaxUint64 - p.StartDate + 1_000 }, ReasonInvalidDuration},
		{"zero amount", s.factory, func(p *LockParams) { p.Amount = new(big.Int) }, ReasonZeroAmount},
		{"over allowance", s.factory, func(p *LockParams) { p.Amount = big.NewInt(1_000_001) }, token.ReasonInsufficient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := lockParams(100, 5, pool, deployer)
			tt.modify(p)
			assert.EqualError(t, s.treasure.Lock(s.as(tt.caller), p), tt.reason)
		})
	}
	total, _ := s.treasure.TotalLocked()
	assert.Equal(t, 0, total.Sign())

	require.NoError(t, s.treasure.Lock(s.as(s.factory), lockParams(100, 5, pool, deployer)))
	assert.EqualError(t, s.treasure.Lock(s.as(s.factory), lockParams(100, 5, pool, deployer)), ReasonAlreadyLocked)

	// other pairs are independent
	require.NoError(t, s.treasure.Lock(s.as(s.factory), lockParams(100, 5, datagen.RandAddress(), deployer)))
	total, _ = s.treasure.TotalLocked()
	assert.Equal(t, int64(200), total.Int64())

	// a paid out pair may lock again
	require.NoError(t, s.treasure.Unlock(s.at(now+duration).as(deployer), pool))
	p := lockParams(100, 5, pool, deployer)
	p.StartDate = now + duration
	require.NoError(t, s.treasure.Lock(s.as(s.factory), p))
}

func TestUnlockErrors(t *testing.T) {
	s := newTestSetup(t)
	pool, deployer := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, s.treasure.Lock(s.as(s.factory), lockParams(100, 5, pool, deployer)))

	s.at(now + duration)
	assert.EqualError(t, s.treasure.Unlock(s.as(pool), deployer), ReasonNotContributed)
	assert.EqualError(t, s.treasure.Unlock(s.as(deployer), datagen.RandAddress()), ReasonNotContributed)
	require.NoError(t, s.treasure.Unlock(s.as(deployer), pool))
}

func TestChangeFeeRecipient(t *testing.T) {
	s := newTestSetup(t)
	next := datagen.RandAddress()

	assert.EqualError(t, s.treasure.ChangeFeeRecipient(s.as(next), next), ownable.ReasonNotOwner)
	assert.EqualError(t, s.treasure.ChangeFeeRecipient(s.as(s.owner), thor.Address{}), ReasonZeroRecipient)

	env := s.as(s.owner)
	require.NoError(t, s.treasure.ChangeFeeRecipient(env, next))
	assert.Equal(t, M(next, nil), M(s.treasure.FeeRecipient()))
	assert.Equal(t, EventFeeRecipientChanged, env.Events()[0].Name)
	assert.Equal(t, []thor.Address{s.feeRecipient, next}, env.Events()[0].Topics)

	// fees follow the new recipient
	pool, deployer := datagen.RandAddress(), datagen.RandAddress()
	require.NoError(t, s.treasure.Lock(s.as(s.factory), lockParams(100, 20, pool, deployer)))
	require.NoError(t, s.treasure.Unlock(s.at(now+duration).as(deployer), pool))
	assert.Equal(t, int64(20), s.balance(t, next))
	assert.Equal(t, int64(0), s.balance(t, s.feeRecipient))

	// ownership moves too
	newOwner := datagen.RandAddress()
	require.NoError(t, s.treasure.TransferOwnership(s.as(s.owner), newOwner))
	assert.EqualError(t, s.treasure.ChangeFeeRecipient(s.as(s.owner), next), ownable.ReasonNotOwner)
	require.NoError(t, s.treasure.ChangeFeeRecipient(s.as(newOwner), s.feeRecipient))
}

func TestUnlockDate(t *testing.T) {
	tests := []struct {
		start, duration, want uint64
	}{
		{now, duration, now + duration},
		{now, math.MaxUint64 - now, math.MaxUint64},
		{now, math.MaxUint64 - now + 1, math.MaxUint64},
	}
	for _, tt := range tests {
		l := &Lock{StartDate: tt.start, LockDuration: tt.duration}
		assert.Equal(t, tt.want, l.UnlockDate())
	}
}

func TestCustomLimits(t *testing.T) {
	s := newTestSetup(t)
	limits := Limits{MinLockDuration: thor.Day, MaxLockFee: 10}
	tr, err := Deploy(s.as(s.factory), datagen.RandAddress(), s.wsd.Address(), s.feeRecipient, s.factory, s.owner, limits, s.resolver)
	require.NoError(t, err)
	assert.Equal(t, M(limits, nil), M(tr.Limits()))
	_, err = s.wsd.Approve(s.as(s.factory), tr.Address(), big.NewInt(1_000_000))
	require.NoError(t, err)

	pool, deployer := datagen.RandAddress(), datagen.RandAddress()
	short := lockParams(100, 10, pool, deployer)
	short.LockDuration, short.EpochDuration = thor.Day, thor.Day

	// the defaults would refuse both
	assert.EqualError(t, s.treasure.Lock(s.as(s.factory), short), ReasonInvalidDuration)

	tooHigh := *short
	tooHigh.Fee = 11
	assert.EqualError(t, tr.Lock(s.as(s.factory), &tooHigh), ReasonTooHighFee)

	below := *short
	below.LockDuration, below.EpochDuration = thor.Day-1, thor.Day-1
	assert.EqualError(t, tr.Lock(s.as(s.factory), &below), ReasonInvalidDuration)

	require.NoError(t, tr.Lock(s.as(s.factory), short))
	require.NoError(t, tr.Unlock(s.at(now+thor.Day).as(deployer), pool))
	assert.Equal(t, int64(90), s.balance(t, deployer))
	assert.Equal(t, int64(10), s.balance(t, s.feeRecipient))
}
