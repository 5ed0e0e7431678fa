// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

var (
	pool   = datagen.RandAddress()
	tok    = datagen.RandAddress()
	alice  = datagen.RandAddress()
	bob    = datagen.RandAddress()
	caller = datagen.RandAddress()
)

// writeBlocks writes n blocks, each one with a Staked event of alice and a Transfer from bob.
func writeBlocks(t *testing.T, db *LogDB, n int) {
	w := db.NewWriter()
	for i := 1; i <= n; i++ {
		require.NoError(t, w.Write(uint32(i), uint64(i*10), caller, []*xenv.Event{
			{Address: pool, Name: "Staked", Topics: []thor.Address{alice}, Amount: big.NewInt(int64(i))},
			{Address: tok, Name: "Transfer", Topics: []thor.Address{bob, pool}, Amount: big.NewInt(int64(i * 100))},
		}))
	}
	assert.Equal(t, 2*n, w.UncommittedCount())
	require.NoError(t, w.Commit())
	assert.Equal(t, 0, w.UncommittedCount())
}

func TestFilterEvents(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	writeBlocks(t, db, 10)
	ctx := context.Background()

	all, err := db.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	first := all[0]
	assert.Equal(t, uint32(1), first.BlockNumber)
	assert.Equal(t, uint32(0), first.Index)
	assert.Equal(t, uint64(10), first.BlockTime)
	assert.Equal(t, caller, first.Caller)
	assert.Equal(t, pool, first.Address)
	assert.Equal(t, "Staked", first.Name)
	assert.Equal(t, alice, *first.Topics[0])
	assert.Nil(t, first.Topics[1])
	assert.Equal(t, "1", first.Amount.String())

	tests := []struct {
		name   string
		filter *EventFilter
		want   []uint32 // block numbers
	}{
		{
			"by address",
			&EventFilter{CriteriaSet: []*EventCriteria{{Address: &pool}}, Range: &Range{From: 3, To: 5}},
			[]uint32{3, 4, 5},
		},
		{
			"by name desc",
			&EventFilter{CriteriaSet: []*EventCriteria{{Name: "Transfer"}}, Order: DESC, Options: &Options{Limit: 2}},
			[]uint32{10, 9},
		},
		{
			"by topic position",
			&EventFilter{CriteriaSet: []*EventCriteria{{Topics: [MaxTopics]*thor.Address{nil, &pool}}}, Options: &Options{Offset: 8, Limit: 5}},
			[]uint32{9, 10},
		},
		{
			"any criteria",
			&EventFilter{CriteriaSet: []*EventCriteria{
				{Topics: [MaxTopics]*thor.Address{&alice}},
				{Topics: [MaxTopics]*thor.Address{&bob}},
			}, Range: &Range{From: 2, To: 2}},
			[]uint32{2, 2},
		},
		{
			"open range",
			&EventFilter{CriteriaSet: []*EventCriteria{{Name: "Staked"}}, Range: &Range{From: 9}},
			[]uint32{9, 10},
		},
		{
			"no match",
			&EventFilter{CriteriaSet: []*EventCriteria{{Address: &alice}}},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.FilterEvents(ctx, tt.filter)
			require.NoError(t, err)
			var got []uint32
			for _, ev := range events {
				got = append(got, ev.BlockNumber)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriterRollbackTruncate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.False(t, ok)

	writeBlocks(t, db, 5)

	w := db.NewWriter()
	require.NoError(t, w.Write(6, 60, caller, []*xenv.Event{{Address: pool, Name: "Staked"}}))
	require.NoError(t, w.Rollback())

	n, ok, err := db.NewestBlockNumber()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(5), n)

	require.NoError(t, w.Truncate(4))
	require.NoError(t, w.Commit())

	n, _, err = db.NewestBlockNumber()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), n)

	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestFileDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := New(path)
	require.NoError(t, err)
	writeBlocks(t, db, 2)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	events, err := db.FilterEvents(context.Background(), &EventFilter{CriteriaSet: []*EventCriteria{{Name: "Transfer"}}})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "200", events[1].Amount.String())
}

func TestFilterCanceled(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()
	writeBlocks(t, db, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.FilterEvents(ctx, nil)
	assert.Error(t, err)
}

func TestAmountCodec(t *testing.T) {
	unlimited := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	tests := []struct {
		name   string
		amount *big.Int
		format byte
	}{
		{"zero", new(big.Int), formatRaw},
		{"small", big.NewInt(1234567), formatRaw},
		{"ether", new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18)), formatRaw},
		{"unlimited", unlimited, formatSnappy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := encodeAmount(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.format, data[0])
			// never more than the tag over plain rlp
			assert.LessOrEqual(t, len(data), len(tt.amount.Bytes())+2)

			got, err := decodeAmount(data)
			require.NoError(t, err)
			assert.Equal(t, tt.amount.String(), got.String())
		})
	}

	_, err := decodeAmount([]byte{7, 0x80})
	assert.EqualError(t, err, "unknown event data format 7")

	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()
	w := db.NewWriter()
	require.NoError(t, w.Write(1, 10, caller, []*xenv.Event{
		{Address: tok, Name: "Approval", Topics: []thor.Address{alice, pool}, Amount: unlimited},
	}))
	require.NoError(t, w.Commit())
	events, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, unlimited.String(), events[0].Amount.String())
}
