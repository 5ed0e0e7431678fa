// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import "github.com/whiteswap/farming/metrics"

var (
	metricPoolsDeployed = metrics.LazyLoadCounter("factory_pools_deployed_count")
	metricRejections    = metrics.LazyLoadCounterVec("factory_rejections_count", []string{"op"})
)
