// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/builtin/guard"
	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

// reentrantToken calls back into the treasure while moving funds once armed.
type reentrantToken struct {
	*token.Token
	attack func(env *xenv.Environment) error
}

func (r *reentrantToken) callback(env *xenv.Environment) error {
	if r.attack == nil {
		return nil
	}
	return r.attack(env)
}

func (r *reentrantToken) Transfer(env *xenv.Environment, to thor.Address, amount *big.Int) (bool, error) {
	if err := r.callback(env); err != nil {
		return false, err
	}
	return r.Token.Transfer(env, to, amount)
}

func (r *reentrantToken) TransferFrom(env *xenv.Environment, from, to thor.Address, amount *big.Int) (bool, error) {
	if err := r.callback(env); err != nil {
		return false, err
	}
	return r.Token.TransferFrom(env, from, to, amount)
}

func TestReentrancy(t *testing.T) {
	pool, deployer := datagen.RandAddress(), datagen.RandAddress()
	otherPool, other := datagen.RandAddress(), datagen.RandAddress()

	tests := []struct {
		name   string
		victim func(s *testSetup) error
	}{
		{
			name:   "unlock during unlock",
			victim: func(s *testSetup) error { return s.treasure.Unlock(s.as(deployer), pool) },
		},
		{
			name: "unlock during lock",
			victim: func(s *testSetup) error {
				p := lockParams(100, 5, datagen.RandAddress(), deployer)
				p.StartDate = now + duration
				return s.treasure.Lock(s.as(s.factory), p)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSetup(t)
			tr := s.treasure
			require.NoError(t, tr.Lock(s.as(s.factory), lockParams(100, 5, pool, deployer)))
			require.NoError(t, tr.Lock(s.as(s.factory), lockParams(200, 5, otherPool, other)))

			evil := &reentrantToken{Token: s.wsd}
			s.resolver.Tokens[evil.Address()] = evil
			s.at(now + duration)

			evil.attack = func(env *xenv.Environment) error {
				return tr.Unlock(env.WithCaller(other), otherPool)
			}
			assert.EqualError(t, tt.victim(s), guard.ReasonReentrant)

			// the outer call left nothing behind
			total, err := tr.TotalLocked()
			require.NoError(t, err)
			assert.Equal(t, int64(300), total.Int64())
			for _, l := range []struct {
				beneficiary, depositor thor.Address
				amount                 int64
			}{{deployer, pool, 100}, {other, otherPool, 200}} {
				lock, err := tr.GetLock(l.beneficiary, l.depositor)
				require.NoError(t, err)
				require.NotNil(t, lock)
				assert.Equal(t, l.amount, lock.Amount.Int64())
				assert.False(t, lock.Distributed)
			}
			assert.Equal(t, int64(300), s.balance(t, tr.Address()))
			assert.Equal(t, int64(0), s.balance(t, other))
			entered, err := tr.guard.Entered()
			assert.NoError(t, err)
			assert.False(t, entered)

			// disarmed, the same call goes through
			evil.attack = nil
			assert.NoError(t, tt.victim(s))
		})
	}
}
