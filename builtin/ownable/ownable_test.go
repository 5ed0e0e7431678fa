// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ownable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/lvldb"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

func TestOwnable(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var (
		contract = thor.Address{1}
		owner    = thor.Address{2}
		stranger = thor.Address{3}
		st       = state.NewStater(db, 1).NewState()
		blockCtx = &xenv.BlockContext{Number: 1, Time: 100}
		o        = New(solidity.NewContext(contract, st))
	)

	require.NoError(t, o.Init(xenv.New(st, blockCtx, contract), owner))
	got, err := o.Owner()
	assert.NoError(t, err)
	assert.Equal(t, owner, got)

	assert.EqualError(t, o.OnlyOwner(stranger), ReasonNotOwner)
	assert.NoError(t, o.OnlyOwner(owner))

	assert.EqualError(t, o.TransferOwnership(xenv.New(st, blockCtx, stranger), stranger), ReasonNotOwner)
	assert.EqualError(t, o.TransferOwnership(xenv.New(st, blockCtx, owner), thor.Address{}), ReasonZeroOwner)

	env := xenv.New(st, blockCtx, owner)
	require.NoError(t, o.TransferOwnership(env, stranger))
	got, _ = o.Owner()
	assert.Equal(t, stranger, got)

	require.Len(t, env.Events(), 1)
	assert.Equal(t, EventOwnershipTransferred, env.Events()[0].Name)
	assert.Equal(t, []thor.Address{owner, stranger}, env.Events()[0].Topics)
}
