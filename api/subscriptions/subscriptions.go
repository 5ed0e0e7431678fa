// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10
)

// Source publishes executed receipts.
type Source interface {
	Subscribe() (<-chan *runtime.Receipt, func())
}

type Subscriptions struct {
	source   Source
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(source Source, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		source: source,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	filter := &EventFilter{Name: req.URL.Query().Get("name")}
	if addr := req.URL.Query().Get("address"); addr != "" {
		v, err := utils.ParseAddress(addr, "address")
		if err != nil {
			return err
		}
		filter.Address = &v
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has responded already
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	if err := s.pipe(conn, filter); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

// pipe writes matching events to conn until the peer leaves or Close is called.
func (s *Subscriptions) pipe(conn *websocket.Conn, filter *EventFilter) error {
	receipts, release := s.source.Subscribe()
	defer release()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		case <-closed:
			return nil
		case r, ok := <-receipts:
			if !ok {
				return nil
			}
			for _, msg := range eventMessages(r, filter) {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(msg); err != nil {
					return err
				}
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close ends all running subscriptions and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubjectEvent))
}
