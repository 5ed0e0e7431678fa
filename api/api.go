// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the ledger over REST and websocket.
package api

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/whiteswap/farming/api/factory"
	"github.com/whiteswap/farming/api/logs"
	"github.com/whiteswap/farming/api/pools"
	"github.com/whiteswap/farming/api/subscriptions"
	"github.com/whiteswap/farming/api/tokens"
	"github.com/whiteswap/farming/api/treasure"
	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
)

var logger = log.WithContext("pkg", "api")

// Ledger is what the api serves.
type Ledger interface {
	utils.Ledger
	subscriptions.Source
	Head() runtime.Head
}

type Options struct {
	AllowedOrigins  string
	Factory         thor.Address
	Treasure        thor.Address
	LogsLimit       uint64
	AllowWrites     bool
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router
func New(
	ledger Ledger,
	logDB *logdb.LogDB,
	resolver token.Resolver,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.Path("/head").
		Methods(http.MethodGet).
		Name("GET /head").
		HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			head := ledger.Head()
			return utils.WriteJSON(w, utils.M{"number": head.Number, "time": head.Time})
		}))

	factory.New(ledger, opts.Factory, resolver, opts.LogsLimit, opts.AllowWrites).
		Mount(router, "/factory")
	pools.New(ledger, resolver, opts.AllowWrites).
		Mount(router, "/pools")
	treasure.New(ledger, opts.Treasure, resolver, opts.AllowWrites).
		Mount(router, "/treasure")
	tokens.New(ledger, resolver, opts.AllowWrites).
		Mount(router, "/tokens")
	if logDB != nil {
		logs.New(logDB, opts.LogsLimit).
			Mount(router, "/logs")
	}
	subs := subscriptions.New(ledger, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.ExposedHeaders([]string{headerRequestID}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	handler = requestIDHandler(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}

// StartServer serves handler on the listener address until ctx is done.
func StartServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server started", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
