// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb stores emitted contract events in sqlite for filtering.
package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/thor"
)

var logger = log.WithContext("pkg", "logdb")

const selectEvents = "SELECT seq, blockTime, caller, address, name, topic0, topic1, topic2, topic3, data FROM event"

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal_mode=WAL&_busy_timeout=5000", 0)
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	// every connection to :memory: is a distinct database
	return open(":memory:", ":memory:", 1)
}

func open(path, dsn string, maxConns int) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create event table")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// NewestBlockNumber returns the number of the newest block having events.
func (db *LogDB) NewestBlockNumber() (uint32, bool, error) {
	var seq sequence
	err := db.db.QueryRow("SELECT seq FROM event ORDER BY seq DESC LIMIT 1").Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return seq.BlockNumber(), true, nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, selectEvents+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := selectEvents + " WHERE 1"
	if filter.Range != nil {
		args = append(args, newSequence(filter.Range.From, 0))
		stmt += " AND seq >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, newSequence(filter.Range.To, math.MaxInt32))
			stmt += " AND seq <= ?"
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		if criteria.Name != "" {
			args = append(args, criteria.Name)
			stmt += " AND name = ?"
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += " )"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       sequence
			blockTime uint64
			caller    []byte
			address   []byte
			name      string
			topics    [MaxTopics][]byte
			data      []byte
		)
		if err := rows.Scan(
			&seq,
			&blockTime,
			&caller,
			&address,
			&name,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		amount, err := decodeAmount(data)
		if err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: seq.BlockNumber(),
			Index:       seq.Index(),
			BlockTime:   blockTime,
			Caller:      thor.BytesToAddress(caller),
			Address:     thor.BytesToAddress(address),
			Name:        name,
			Amount:      amount,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				addr := thor.BytesToAddress(topic)
				event.Topics[i] = &addr
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Event amounts are stored rlp encoded behind a format tag. Snappy is applied
// only when it shrinks the blob, as it does for unlimited approvals.
const (
	formatRaw    byte = 0
	formatSnappy byte = 1
)

func encodeAmount(amount *big.Int) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return nil, err
	}
	if packed := snappy.Encode(nil, raw); len(packed) < len(raw) {
		return append([]byte{formatSnappy}, packed...), nil
	}
	return append([]byte{formatRaw}, raw...), nil
}

func decodeAmount(data []byte) (*big.Int, error) {
	amount := new(big.Int)
	if len(data) == 0 {
		return amount, nil
	}
	raw := data[1:]
	switch data[0] {
	case formatRaw:
	case formatSnappy:
		var err error
		if raw, err = snappy.Decode(nil, raw); err != nil {
			return nil, errors.Wrap(err, "decompress event data")
		}
	default:
		return nil, errors.Errorf("unknown event data format %d", data[0])
	}
	if err := rlp.DecodeBytes(raw, amount); err != nil {
		return nil, errors.Wrap(err, "decode event data")
	}
	return amount, nil
}

func topicValue(topic *thor.Address) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}
