// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{
		db,
		logsLimit,
	}
}

// parseFilter builds the event filter from query parameters.
// topic matches any position, topic0 to topic3 match their own position.
func (l *Logs) parseFilter(req *http.Request) (*logdb.EventFilter, error) {
	query := req.URL.Query()

	base := &logdb.EventCriteria{Name: query.Get("name")}
	if s := query.Get("address"); s != "" {
		addr, err := utils.ParseAddress(s, "address")
		if err != nil {
			return nil, err
		}
		base.Address = &addr
	}
	for i := range logdb.MaxTopics {
		name := "topic" + strconv.Itoa(i)
		if s := query.Get(name); s != "" {
			topic, err := utils.ParseAddress(s, name)
			if err != nil {
				return nil, err
			}
			base.Topics[i] = &topic
		}
	}

	filter := &logdb.EventFilter{CriteriaSet: []*logdb.EventCriteria{base}}
	if s := query.Get("topic"); s != "" {
		topic, err := utils.ParseAddress(s, "topic")
		if err != nil {
			return nil, err
		}
		filter.CriteriaSet = filter.CriteriaSet[:0]
		for i := range logdb.MaxTopics {
			if base.Topics[i] != nil {
				continue
			}
			c := *base
			c.Topics[i] = &topic
			filter.CriteriaSet = append(filter.CriteriaSet, &c)
		}
		if len(filter.CriteriaSet) == 0 {
			return nil, utils.BadRequest(errors.New("topic: every position is already set"))
		}
	}

	from, err := utils.ParseUint(query.Get("from"), "from", 0)
	if err != nil {
		return nil, err
	}
	to, err := utils.ParseUint(query.Get("to"), "to", math.MaxUint32)
	if err != nil {
		return nil, err
	}
	if from > to {
		return nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
	}
	filter.Range = &logdb.Range{From: uint32(min(from, math.MaxUint32)), To: uint32(min(to, math.MaxUint32))}

	offset, err := utils.ParseUint(query.Get("offset"), "offset", 0)
	if err != nil {
		return nil, err
	}
	if offset > math.MaxInt64 {
		return nil, utils.BadRequest(fmt.Errorf("offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	limit, err := utils.ParseUint(query.Get("limit"), "limit", l.limit)
	if err != nil {
		return nil, err
	}
	if limit > l.limit {
		return nil, utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", l.limit))
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}

	switch order := logdb.Order(query.Get("order")); order {
	case "", logdb.ASC:
		filter.Order = logdb.ASC
	case logdb.DESC:
		filter.Order = logdb.DESC
	default:
		return nil, utils.BadRequest(errors.Errorf("order: invalid value %q", order))
	}
	return filter, nil
}

func (l *Logs) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := l.parseFilter(req)
	if err != nil {
		return err
	}
	events, err := l.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = convertEvent(ev)
	}
	return utils.WriteJSON(w, fes)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("GET /logs/event").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilter))
}
