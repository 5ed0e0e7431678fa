// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import "github.com/whiteswap/farming/metrics"

var (
	metricOperations = metrics.LazyLoadCounterVec("treasure_operations_count", []string{"op"})
	metricRejections = metrics.LazyLoadCounterVec("treasure_rejections_count", []string{"op"})
)
