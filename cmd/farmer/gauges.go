// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/builtin/farming"
	"github.com/whiteswap/farming/cache"
	"github.com/whiteswap/farming/metrics"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
)

var (
	metricPoolCount      = metrics.LazyLoadGauge("pool_count")
	metricActiveAccounts = metrics.LazyLoadGaugeVec("pool_active_accounts", []string{"pool"})
	metricPoolRunning    = metrics.LazyLoadGaugeVec("pool_running", []string{"pool"})
	metricCacheHitRate   = metrics.LazyLoadGauge("state_cache_hit_permille")
)

type viewer interface {
	View(fn func(st *state.State, now uint64) error) error
}

// refreshGauges samples every pool deployed by the factory.
func refreshGauges(ledger viewer, factoryAddr thor.Address) error {
	return ledger.View(func(st *state.State, now uint64) error {
		f := factory.New(factoryAddr, st, token.StateResolver{})
		last, err := f.IteratorIDFarmingPools()
		if err != nil {
			return err
		}
		metricPoolCount().Set(int64(last))

		for id := uint64(1); id <= last; id++ {
			info, err := f.FarmingInfo(id)
			if err != nil {
				return err
			}
			active, err := farming.New(info.Pool, st, token.StateResolver{}).GetActiveAccountCount()
			if err != nil {
				return err
			}
			labels := map[string]string{"pool": info.Pool.String()}
			metricActiveAccounts().SetWithLabel(int64(active), labels)

			running := int64(0)
			if now >= info.StartDate && now <= info.EndDate {
				running = 1
			}
			metricPoolRunning().SetWithLabel(running, labels)
		}
		return nil
	})
}

// reportCache exports the state cache hit rate, logging it when it moved.
func reportCache(stats *cache.Stats) {
	s := stats.Snapshot()
	metricCacheHitRate().Set(int64(s.HitRate() * 1000))
	if s.RateChanged {
		logger.Debug("state cache stats", "hit", s.Hit, "miss", s.Miss, "rate", s.HitRate())
	}
}

// scheduleGauges refreshes the gauges on the cron schedule. The returned
// func stops the scheduler and waits for a running refresh.
func scheduleGauges(schedule string, ledger viewer, factoryAddr thor.Address, cacheStats *cache.Stats) (func(), error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := refreshGauges(ledger, factoryAddr); err != nil {
			logger.Warn("failed to refresh pool gauges", "err", err)
		}
		reportCache(cacheStats)
	}); err != nil {
		return nil, errors.Wrapf(err, "gauge schedule [%v]", schedule)
	}
	c.Start()
	return func() {
		<-c.Stop().Done()
	}, nil
}
