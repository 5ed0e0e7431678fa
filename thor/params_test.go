// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeadline(t *testing.T) {
	tests := []struct {
		start, duration, want uint64
	}{
		{0, 0, 0},
		{1_000_000, Day, 1_000_000 + Day},
		{math.MaxUint64 - Day, Day, math.MaxUint64},
		{1_086_400, math.MaxUint64 - 1_086_400 + 1, math.MaxUint64},
		{math.MaxUint64, math.MaxUint64, math.MaxUint64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Deadline(tt.start, tt.duration), "%d+%d", tt.start, tt.duration)
	}
}
