// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"errors"
	"log/slog"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

type symbol string

func (s symbol) String() string { return "token " + string(s) }

func TestFormatSlogValue(t *testing.T) {
	reward, _ := new(big.Int).SetString("1000000000000000000000000", 10)

	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"smallInt", slog.IntValue(99999), "99999"},
		{"int", slog.IntValue(1209600), "1,209,600"},
		{"negativeInt", slog.Int64Value(-1209600), "-1,209,600"},
		{"uint", slog.Uint64Value(1735689600), "1,735,689,600"},
		{"bigInt", slog.AnyValue(reward), "1,000,000,000,000,000,000,000,000"},
		{"negativeBigInt", slog.AnyValue(new(big.Int).Neg(reward)), "-1,000,000,000,000,000,000,000,000"},
		{"nilBigInt", slog.AnyValue((*big.Int)(nil)), "<nil>"},
		{"u256", slog.AnyValue(uint256.MustFromBig(reward)), "1,000,000,000,000,000,000,000,000"},
		{"string", slog.StringValue("WSD"), "WSD"},
		{"spacedString", slog.StringValue("Cannot farm 0"), `"Cannot farm 0"`},
		{"error", slog.AnyValue(errors.New("Already distributed")), `"Already distributed"`},
		{"stringer", slog.AnyValue(symbol("RWD")), `"token RWD"`},
		{"bool", slog.BoolValue(true), "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(FormatSlogValue(tt.value, nil)))
		})
	}
}

var sink []byte

func BenchmarkFormatBigInt(b *testing.B) {
	buf := make([]byte, 100)
	n := new(big.Int).Lsh(big.NewInt(rand.Int64()), 64) //#nosec G404
	b.ReportAllocs()
	for b.Loop() {
		sink = appendBigInt(buf[:0], n)
	}
}
