// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"

	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

const insertEvent = "INSERT OR REPLACE INTO event(seq, blockTime, caller, address, name, topic0, topic1, topic2, topic3, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// Writer accumulates writes in a transaction until Commit or Rollback.
type Writer struct {
	db          *LogDB
	tx          *sql.Tx
	uncommitted int
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db}
}

func (w *Writer) exec(query string, args ...any) (sql.Result, error) {
	if w.tx == nil {
		tx, err := w.db.db.Begin()
		if err != nil {
			return nil, err
		}
		w.tx = tx
	}
	stmt, err := w.db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	return w.tx.Stmt(stmt).Exec(args...)
}

// Write writes the events emitted by the clause of a block.
func (w *Writer) Write(blockNum uint32, blockTime uint64, caller thor.Address, events []*xenv.Event) error {
	for i, ev := range events {
		event := newEvent(blockNum, uint32(i), blockTime, caller, ev)
		data, err := encodeAmount(event.Amount)
		if err != nil {
			return err
		}
		if _, err := w.exec(insertEvent,
			newSequence(blockNum, uint32(i)),
			event.BlockTime,
			event.Caller.Bytes(),
			event.Address.Bytes(),
			event.Name,
			topicValue(event.Topics[0]),
			topicValue(event.Topics[1]),
			topicValue(event.Topics[2]),
			topicValue(event.Topics[3]),
			data,
		); err != nil {
			return err
		}
		w.uncommitted++
	}
	return nil
}

// Truncate deletes events of blocks from blockNum on, included.
func (w *Writer) Truncate(blockNum uint32) error {
	if _, err := w.exec("DELETE FROM event WHERE seq >= ?", newSequence(blockNum, 0)); err != nil {
		return err
	}
	w.uncommitted++
	return nil
}

// Commit commits accumulated writes.
func (w *Writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx, w.uncommitted = nil, 0
	return err
}

// Rollback discards uncommitted writes.
func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Rollback()
	w.tx, w.uncommitted = nil, 0
	return err
}

// UncommittedCount returns the count of uncommitted writes.
func (w *Writer) UncommittedCount() int {
	return w.uncommitted
}

