// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"fmt"
	"strings"

	"github.com/whiteswap/farming/metrics"
)

var (
	metricCriteriaLengthBucket = metrics.LazyLoadHistogram("logdb_criteria_length_bucket", []int64{0, 2, 5, 10, 25, 100})
	metricEventQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricOffsetBucket         = metrics.LazyLoadHistogram("logdb_query_offset_bucket", []int64{
		0, 1_000, 5_000, 10_000, 25_000, 50_000, 100_000,
	})
	metricLimitBucket = metrics.LazyLoadHistogram("logdb_query_limit_bucket", []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleEventsFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaLengthBucket().Observe(int64(len(filter.CriteriaSet)))

	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}

	if filter.Options != nil {
		metricOffsetBucket().Observe(int64(min(filter.Options.Offset, 100_001)))
		metricLimitBucket().Observe(int64(min(filter.Options.Limit, 1001)))
	}

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0)
		if c.Address != nil {
			paramsUsed = append(paramsUsed, "address")
		}
		if c.Name != "" {
			paramsUsed = append(paramsUsed, "name")
		}
		for i, topic := range c.Topics {
			if topic != nil {
				paramsUsed = append(paramsUsed, fmt.Sprintf("topic%d", i))
			}
		}
		metricEventQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}
}
