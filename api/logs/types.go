// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/thor"
)

type LogMeta struct {
	BlockNumber uint32       `json:"blockNumber"`
	BlockTime   uint64       `json:"blockTime"`
	Caller      thor.Address `json:"caller"`
	Index       uint32       `json:"index"`
}

type FilteredEvent struct {
	Address thor.Address   `json:"address"`
	Name    string         `json:"name"`
	Topics  []thor.Address `json:"topics"`
	Amount  string         `json:"amount"`
	Meta    LogMeta        `json:"meta"`
}

func convertEvent(ev *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: ev.Address,
		Name:    ev.Name,
		Topics:  make([]thor.Address, 0, logdb.MaxTopics),
		Amount:  ev.Amount.String(),
		Meta: LogMeta{
			BlockNumber: ev.BlockNumber,
			BlockTime:   ev.BlockTime,
			Caller:      ev.Caller,
			Index:       ev.Index,
		},
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, *topic)
		}
	}
	return fe
}
