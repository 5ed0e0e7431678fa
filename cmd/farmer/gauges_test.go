// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/builtin/farming"
	"github.com/whiteswap/farming/cache"
	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/metrics"
	"github.com/whiteswap/farming/test/testchain"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func gaugeValue(t *testing.T, name string, labels map[string]string) (float64, bool) {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetGauge().GetValue(), true
		}
	}
	return 0, false
}

func TestRefreshGauges(t *testing.T) {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	var (
		dev    = genesis.DevAccounts()
		addrs  = chain.Addresses()
		amount = new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	)
	pool, err := chain.DeployPool(dev[0].Address, chain.Token("RWD"), addrs.Pairs[0], new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18)))
	require.NoError(t, err)

	for _, acc := range dev[1:3] {
		chain.MustExecute(acc.Address, "farm", func(env *xenv.Environment) error {
			if _, err := token.New(addrs.Pairs[0], env.State()).Approve(env, pool, amount); err != nil {
				return err
			}
			return farming.New(pool, env.State(), token.StateResolver{}).Farm(env, amount)
		})
	}

	require.NoError(t, refreshGauges(chain.Runtime(), addrs.Factory))

	labels := map[string]string{"pool": pool.String()}
	v, ok := gaugeValue(t, "farming_pool_active_accounts", labels)
	require.True(t, ok)
	assert.Equal(t, float64(2), v)

	v, ok = gaugeValue(t, "farming_pool_running", labels)
	require.True(t, ok)
	assert.Equal(t, float64(0), v) // not started yet

	chain.AddTime(thor.Day)
	chain.MustExecute(dev[1].Address, "tick", func(*xenv.Environment) error {
		return nil
	})
	require.NoError(t, refreshGauges(chain.Runtime(), addrs.Factory))
	v, _ = gaugeValue(t, "farming_pool_running", labels)
	assert.Equal(t, float64(1), v)

	v, ok = gaugeValue(t, "farming_pool_count", nil)
	require.True(t, ok)
	assert.Equal(t, float64(1), v)
}

func TestScheduleGauges(t *testing.T) {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	stats := chain.Stater().CacheStats()
	_, err = scheduleGauges("not a schedule", chain.Runtime(), chain.Addresses().Factory, stats)
	assert.ErrorContains(t, err, "gauge schedule")

	stop, err := scheduleGauges("@every 1h", chain.Runtime(), chain.Addresses().Factory, stats)
	require.NoError(t, err)
	stop()
}

func TestReportCache(t *testing.T) {
	var stats cache.Stats
	for range 3 {
		stats.Hit()
	}
	stats.Miss()
	reportCache(&stats)

	v, ok := gaugeValue(t, "farming_state_cache_hit_permille", nil)
	require.True(t, ok)
	assert.Equal(t, float64(750), v)
}
