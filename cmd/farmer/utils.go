// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/lvldb"
)

// maxClockOffset is the local clock drift tolerated before warning. Block times
// follow the local clock, so a drifting node accrues rewards at skewed times.
const maxClockOffset = 5 * time.Second

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("value %d exceeds the maximum int", val)
	}
	return int(val), nil
}

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	verbosity, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "parse verbosity flag")
	}
	level := new(slog.LevelVar)
	level.Set(log.FromLegacyLevel(verbosity))

	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	handler, err := log.NewHandler(ctx.String(logFormatFlag.Name), os.Stderr, level, useColor)
	if err != nil {
		return nil, errors.Wrap(err, "log-format")
	}
	log.SetDefault(log.NewLogger(handler))
	return level, nil
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.whiteswap.farmer")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.whiteswap.farmer")
		default:
			return filepath.Join(home, ".org.whiteswap.farmer")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// normalizeCacheSize clamps the cache size to [16, half of physical ram].
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem", "err", err)
	} else {
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func loadGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	return genesis.Load(path)
}

// openDatabases opens the state store and the log db, in memory when on-memory is set.
func openDatabases(ctx *cli.Context, cacheMB int) (*lvldb.LevelDB, *logdb.LogDB, string, error) {
	if ctx.Bool(onMemoryFlag.Name) {
		mainDB, err := lvldb.NewMem()
		if err != nil {
			return nil, nil, "", err
		}
		logDB, err := logdb.NewMem()
		if err != nil {
			mainDB.Close()
			return nil, nil, "", err
		}
		return mainDB, logDB, "Memory", nil
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return nil, nil, "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, nil, "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}

	dir := filepath.Join(dataDir, "main.db")
	mainDB, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: 500,
	})
	if err != nil {
		return nil, nil, "", errors.Wrapf(err, "open main database [%v]", dir)
	}
	dir = filepath.Join(dataDir, "logs.db")
	logDB, err := logdb.New(dir)
	if err != nil {
		mainDB.Close()
		return nil, nil, "", errors.Wrapf(err, "open log database [%v]", dir)
	}
	return mainDB, logDB, dataDir, nil
}

func checkClockOffset(server string) {
	if server == "" {
		return
	}
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		logger.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("exit signal received, shutting down")
	}()
	return ctx, cancel
}
