// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/whiteswap/farming/metrics"

var (
	metricExecutionDuration = metrics.LazyLoadHistogram("runtime_execution_duration_us", metrics.BucketExecution)
	metricClauses           = metrics.LazyLoadCounterVec("runtime_clauses_count", []string{"result"})
	metricDroppedReceipts   = metrics.LazyLoadCounter("runtime_dropped_receipts_count")
)
