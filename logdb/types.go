// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

// MaxTopics is the number of indexed topics kept per event.
const MaxTopics = 4

// Event is an emitted contract event as stored.
type Event struct {
	BlockNumber uint32
	Index       uint32
	BlockTime   uint64
	Caller      thor.Address // who initiated the clause
	Address     thor.Address // emitting contract
	Name        string
	Topics      [MaxTopics]*thor.Address
	Amount      *big.Int
}

func newEvent(blockNum uint32, index uint32, blockTime uint64, caller thor.Address, ev *xenv.Event) *Event {
	e := &Event{
		BlockNumber: blockNum,
		Index:       index,
		BlockTime:   blockTime,
		Caller:      caller,
		Address:     ev.Address,
		Name:        ev.Name,
		Amount:      ev.Amount,
	}
	for i := 0; i < len(ev.Topics) && i < MaxTopics; i++ {
		topic := ev.Topics[i]
		e.Topics[i] = &topic
	}
	if e.Amount == nil {
		e.Amount = new(big.Int)
	}
	return e
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive range of block numbers.
type Range struct {
	From uint32
	To   uint32
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-empty field.
type EventCriteria struct {
	Address *thor.Address
	Name    string
	Topics  [MaxTopics]*thor.Address
}

// EventFilter selects events matching any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
