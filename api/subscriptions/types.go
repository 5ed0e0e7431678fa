// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

type LogMeta struct {
	BlockNumber uint32       `json:"blockNumber"`
	BlockTime   uint64       `json:"blockTime"`
	Caller      thor.Address `json:"caller"`
}

type EventMessage struct {
	*utils.Event
	Meta LogMeta `json:"meta"`
}

// EventFilter matches events on every non-empty field.
type EventFilter struct {
	Address *thor.Address
	Name    string
}

func (f *EventFilter) match(ev *xenv.Event) bool {
	if f.Address != nil && *f.Address != ev.Address {
		return false
	}
	return f.Name == "" || f.Name == ev.Name
}

func eventMessages(r *runtime.Receipt, filter *EventFilter) []any {
	var msgs []any
	for _, ev := range r.Events {
		if !filter.match(ev) {
			continue
		}
		msgs = append(msgs, &EventMessage{
			Event: utils.ConvertEvent(ev),
			Meta: LogMeta{
				BlockNumber: r.BlockNumber,
				BlockTime:   r.BlockTime,
				Caller:      r.Caller,
			},
		})
	}
	return msgs
}
