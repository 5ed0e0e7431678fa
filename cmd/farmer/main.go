// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/whiteswap/farming/api"
	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/cmd/farmer/httpserver"
	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/metrics"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/token"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "farmer")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	// flags may be provided by a .env file in the working directory
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fatal("load .env:", err)
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "Farmer",
		Usage:     "Whiteswap farming ledger",
		Copyright: "2025 The VeChainThor developers",
		Flags: []cli.Flag{
			dataDirFlag,
			onMemoryFlag,
			genesisFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiWritesFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			pprofFlag,
			verbosityFlag,
			logFormatFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			gaugeScheduleFlag,
			ntpServerFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:      "simulate",
				Usage:     "run a farming scenario on an in-memory ledger and report balances",
				ArgsUsage: "<scenario.yaml>",
				Flags: []cli.Flag{
					genesisFlag,
					verbosityFlag,
					logFormatFlag,
					reportAccountsFlag,
				},
				Action: simulateAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal, cancel := handleExitSignal()
	defer cancel()

	if _, err := initLogger(ctx); err != nil {
		return err
	}
	logger.Info("starting farmer", "version", fullVersion())

	checkClockOffset(ctx.String(ntpServerFlag.Name))

	gen, err := loadGenesis(ctx)
	if err != nil {
		return err
	}

	cacheMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse cache flag")
	}
	cacheMB = normalizeCacheSize(cacheMB)

	mainDB, logDB, dataDir, err := openDatabases(ctx, cacheMB)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing databases...")
		if err := logDB.Close(); err != nil {
			logger.Warn("failed to close log db", "err", err)
		}
		if err := mainDB.Close(); err != nil {
			logger.Warn("failed to close main db", "err", err)
		}
	}()

	stater := state.NewStater(mainDB, cacheMB/2)
	addrs, err := initLedger(gen, stater, logDB)
	if err != nil {
		return err
	}
	rt, err := runtime.New(stater, logDB, runtime.Options{})
	if err != nil {
		return err
	}

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	handler, closeSubs := api.New(rt, logDB, token.StateResolver{}, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		Factory:         addrs.Factory,
		Treasure:        addrs.Treasure,
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		AllowWrites:     ctx.Bool(apiWritesFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   enableMetrics,
	})
	defer closeSubs()

	group, groupCtx := errgroup.WithContext(exitSignal)
	group.Go(func() error {
		return api.StartServer(groupCtx, &http.Server{
			Addr:              ctx.String(apiAddrFlag.Name),
			Handler:           handler,
			ReadHeaderTimeout: time.Second,
			ReadTimeout:       5 * time.Second,
		})
	})

	if enableMetrics {
		metricsSrv := httpserver.NewMetricsServer(ctx.String(metricsAddrFlag.Name))
		group.Go(func() error {
			return api.StartServer(groupCtx, metricsSrv)
		})

		stopGauges, err := scheduleGauges(ctx.String(gaugeScheduleFlag.Name), rt, addrs.Factory, stater.CacheStats())
		if err != nil {
			return err
		}
		defer stopGauges()
	}

	head := rt.Head()
	logger.Info("ledger ready",
		"dataDir", dataDir,
		"head", head.Number,
		"headTime", time.Unix(int64(head.Time), 0).UTC(),
		"factory", addrs.Factory,
		"treasure", addrs.Treasure,
		"writes", ctx.Bool(apiWritesFlag.Name),
	)

	if err := group.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// initLedger builds the genesis into an empty ledger. An existing ledger must
// carry the factory of the given genesis.
func initLedger(gen *genesis.Genesis, stater *state.Stater, logDB *logdb.LogDB) (*genesis.Addresses, error) {
	head, err := runtime.LoadHead(stater.Store())
	if err != nil {
		return nil, errors.Wrap(err, "load head")
	}
	if head == nil {
		logger.Info("building genesis", "launchTime", gen.LaunchTime)
		return gen.Build(stater, logDB)
	}

	addrs := gen.Addresses()
	ok, err := factory.New(addrs.Factory, stater.NewState(), token.StateResolver{}).Exists()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("genesis mismatch: data dir was built from another genesis")
	}
	return addrs, nil
}
