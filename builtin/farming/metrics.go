// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farming

import (
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/metrics"
)

var (
	metricOperations = metrics.LazyLoadCounterVec("farming_operations_count", []string{"op"})
	metricRejections = metrics.LazyLoadCounterVec("farming_rejections_count", []string{"op", "reason"})
)

func rejectionReason(err error) string {
	if rev, ok := reverts.As(err); ok {
		return rev.Error()
	}
	return "internal"
}
