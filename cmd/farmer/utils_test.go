// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/lvldb"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/state"
)

func TestReadIntFromUInt64Flag(t *testing.T) {
	got, err := readIntFromUInt64Flag(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = readIntFromUInt64Flag(uint64(math.MaxInt))
	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = readIntFromUInt64Flag(uint64(math.MaxInt) + 1)
	assert.Error(t, err)
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(0))
	assert.Equal(t, 16, normalizeCacheSize(-1))
	// never beyond any real machine's half ram
	assert.Less(t, normalizeCacheSize(math.MaxInt32), math.MaxInt32)
}

func TestInitLedger(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	defer logDB.Close()

	stater := state.NewStater(db, 1)
	gen := genesis.NewDevnet()

	addrs, err := initLedger(gen, stater, logDB)
	require.NoError(t, err)
	assert.Equal(t, gen.Addresses(), addrs)

	head, err := runtime.LoadHead(db)
	require.NoError(t, err)
	require.NotNil(t, head)

	// reopening skips the build
	again, err := initLedger(gen, stater, logDB)
	require.NoError(t, err)
	assert.Equal(t, addrs, again)

	// a ledger of another genesis is refused
	other := genesis.NewDevnet()
	other.Tokens = append(other.Tokens, &genesis.Token{Symbol: "EXT", Name: "Extra"})
	_, err = initLedger(other, stater, logDB)
	assert.ErrorContains(t, err, "genesis mismatch")
}
