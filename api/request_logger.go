// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/pborman/uuid"

	"github.com/whiteswap/farming/log"
)

const headerRequestID = "x-request-id"

// requestIDHandler tags every request with an id, the client's if given.
func requestIDHandler(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.New()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		handler.ServeHTTP(w, r)
	})
}

// RequestLoggerHandler returns a http handler to ensure requests are syphoned into the writer
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		// the body can only be read once, it is restored for the wrapped handler
		var bodyBytes []byte
		var err error
		if r.Body != nil {
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return // don't pass bad request to the next handler
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		logger.Info("API Request",
			"id", r.Header.Get(headerRequestID),
			"timestamp", time.Now().Unix(),
			"URI", r.URL.String(),
			"Method", r.Method,
			"Body", string(bodyBytes),
		)

		handler.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
