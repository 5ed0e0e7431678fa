// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

func envVar(name string) string {
	return "FARMER_" + name
}

var (
	dataDirFlag = cli.StringFlag{
		Name:   "data-dir",
		Value:  defaultDataDir(),
		Usage:  "directory for ledger databases",
		EnvVar: envVar("DATA_DIR"),
	}
	onMemoryFlag = cli.BoolFlag{
		Name:   "on-memory",
		Usage:  "keep the ledger in memory, nothing is written to disk",
		EnvVar: envVar("ON_MEMORY"),
	}
	genesisFlag = cli.StringFlag{
		Name:   "genesis",
		Usage:  "path to genesis file, if not set, the default devnet genesis will be used",
		EnvVar: envVar("GENESIS"),
	}
	cacheFlag = cli.Uint64Flag{
		Name:   "cache",
		Usage:  "megabytes of ram allocated to the state cache",
		Value:  1024,
		EnvVar: envVar("CACHE"),
	}
	apiAddrFlag = cli.StringFlag{
		Name:   "api-addr",
		Value:  "localhost:8669",
		Usage:  "API service listening address",
		EnvVar: envVar("API_ADDR"),
	}
	apiCorsFlag = cli.StringFlag{
		Name:   "api-cors",
		Value:  "",
		Usage:  "comma separated list of domains from which to accept cross origin requests to API",
		EnvVar: envVar("API_CORS"),
	}
	apiWritesFlag = cli.BoolFlag{
		Name:   "api-writes",
		Usage:  "enable API endpoints executing clauses on behalf of any caller",
		EnvVar: envVar("API_WRITES"),
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:   "api-logs-limit",
		Value:  1000,
		Usage:  "limit the number of logs returned by /logs API",
		EnvVar: envVar("API_LOGS_LIMIT"),
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:   "enable-api-logs",
		Usage:  "enables API requests logging",
		EnvVar: envVar("ENABLE_API_LOGS"),
	}
	pprofFlag = cli.BoolFlag{
		Name:   "pprof",
		Usage:  "turn on go-pprof",
		EnvVar: envVar("PPROF"),
	}
	verbosityFlag = cli.Uint64Flag{
		Name:   "verbosity",
		Value:  3,
		Usage:  "log verbosity (0-9)",
		EnvVar: envVar("VERBOSITY"),
	}
	logFormatFlag = cli.StringFlag{
		Name:   "log-format",
		Value:  "terminal",
		Usage:  "log output format (terminal|json|logfmt)",
		EnvVar: envVar("LOG_FORMAT"),
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:   "enable-metrics",
		Usage:  "enables metrics collection",
		EnvVar: envVar("ENABLE_METRICS"),
	}
	metricsAddrFlag = cli.StringFlag{
		Name:   "metrics-addr",
		Value:  "localhost:2112",
		Usage:  "metrics service listening address",
		EnvVar: envVar("METRICS_ADDR"),
	}
	gaugeScheduleFlag = cli.StringFlag{
		Name:   "gauge-schedule",
		Value:  "@every 1m",
		Usage:  "cron schedule refreshing pool gauges",
		EnvVar: envVar("GAUGE_SCHEDULE"),
	}
	ntpServerFlag = cli.StringFlag{
		Name:   "ntp-server",
		Value:  "pool.ntp.org",
		Usage:  "NTP server checked for clock drift at start-up, empty to skip",
		EnvVar: envVar("NTP_SERVER"),
	}

	// simulate only flags
	reportAccountsFlag = cli.BoolFlag{
		Name:  "all-accounts",
		Usage: "report every genesis account, not only the scenario callers",
	}
)
