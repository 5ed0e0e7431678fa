// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes clauses against the ledger, one clause per block.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/kv"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/logdb"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	// HeadBucket holds the head block.
	HeadBucket = kv.Bucket("h")
	headKey    = []byte("head")

	// ErrTimeBackwards is returned when a clause is timed before the head.
	ErrTimeBackwards = errors.New("time goes backwards")
)

// Head is the latest executed block.
type Head struct {
	Number uint32
	Time   uint64
}

// Clause is one call into the ledger.
type Clause struct {
	Caller thor.Address
	Time   uint64 // block time, 0 means the clock
	Name   string // operation label
	Exec   func(env *xenv.Environment) error
}

// Receipt is the outcome of an executed clause.
type Receipt struct {
	BlockNumber  uint32
	BlockTime    uint64
	Caller       thor.Address
	Name         string
	Reverted     bool
	RevertReason string
	Output       []byte // Error(string) encoded reason when reverted
	Events       []*xenv.Event
}

type Options struct {
	// Clock returns the current unix time, time.Now by default.
	Clock func() uint64
	// SubscriberBuffer is the receipt buffer size of each subscriber.
	SubscriberBuffer int
}

// Runtime serializes clause execution and commits their effects.
type Runtime struct {
	stater *state.Stater
	logDB  *logdb.LogDB
	clock  func() uint64
	buffer int

	mu   sync.RWMutex
	head Head

	subsMu sync.Mutex
	subs   map[int]chan *Receipt
	nextID int
}

// New creates a runtime on top of the stater. Events are written to logDB when not nil.
func New(stater *state.Stater, logDB *logdb.LogDB, opts Options) (*Runtime, error) {
	rt := &Runtime{
		stater: stater,
		logDB:  logDB,
		clock:  opts.Clock,
		buffer: opts.SubscriberBuffer,
		subs:   make(map[int]chan *Receipt),
	}
	if rt.clock == nil {
		rt.clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if rt.buffer <= 0 {
		rt.buffer = 64
	}

	head, err := LoadHead(stater.Store())
	if err != nil {
		return nil, err
	}
	if head != nil {
		rt.head = *head
	}

	// drop events of blocks that never made it into the state
	if logDB != nil {
		w := logDB.NewWriter()
		if err := w.Truncate(rt.head.Number + 1); err != nil {
			_ = w.Rollback()
			return nil, errors.Wrap(err, "truncate logs")
		}
		if err := w.Commit(); err != nil {
			return nil, errors.Wrap(err, "truncate logs")
		}
	}
	logger.Debug("runtime ready", "number", rt.head.Number, "time", rt.head.Time)
	return rt, nil
}

// LoadHead reads the head block, nil if the ledger is empty.
func LoadHead(g kv.Getter) (*Head, error) {
	raw, err := kv.GetOr(HeadBucket.NewGetter(g), headKey, nil)
	if err != nil {
		return nil, errors.Wrap(err, "load head")
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var head Head
	if err := rlp.DecodeBytes(raw, &head); err != nil {
		return nil, errors.Wrap(err, "decode head")
	}
	return &head, nil
}

// PutHead writes the head block.
func PutHead(putter kv.Putter, head Head) error {
	raw, err := rlp.EncodeToBytes(&head)
	if err != nil {
		return err
	}
	return HeadBucket.NewPutter(putter).Put(headKey, raw)
}

// Head returns the latest executed block.
func (rt *Runtime) Head() Head {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.head
}

// View calls fn with a state at the head. The state must not be committed.
func (rt *Runtime) View(fn func(st *state.State, now uint64) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn(rt.stater.NewState(), rt.head.Time)
}

// Execute runs the clause as the next block. A reverted clause still takes a
// block, without any state change. Failures other than reverts leave the
// ledger untouched and are returned.
func (rt *Runtime) Execute(ctx context.Context, clause *Clause) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blockTime := clause.Time
	if blockTime == 0 {
		blockTime = max(rt.clock(), rt.head.Time)
	}
	if blockTime < rt.head.Time {
		return nil, errors.WithMessagef(ErrTimeBackwards, "head %v, clause %v", rt.head.Time, blockTime)
	}
	head := Head{Number: rt.head.Number + 1, Time: blockTime}

	st := rt.stater.NewState()
	env := xenv.New(st, &xenv.BlockContext{Number: head.Number, Time: head.Time}, clause.Caller)

	start := time.Now()
	err := env.Call(func() error { return clause.Exec(env) })
	metricExecutionDuration().Observe(time.Since(start).Microseconds())

	receipt := &Receipt{
		BlockNumber: head.Number,
		BlockTime:   head.Time,
		Caller:      clause.Caller,
		Name:        clause.Name,
	}
	if err != nil {
		revert, ok := reverts.As(err)
		if !ok {
			metricClauses().AddWithLabel(1, map[string]string{"result": "error"})
			logger.Warn("clause failed", "name", clause.Name, "caller", clause.Caller, "error", err)
			return nil, err
		}
		receipt.Reverted = true
		receipt.RevertReason = revert.Error()
		receipt.Output = revert.Bytes()
	} else {
		receipt.Events = env.Events()
	}

	if err := rt.commit(st, head, receipt); err != nil {
		metricClauses().AddWithLabel(1, map[string]string{"result": "error"})
		return nil, err
	}
	rt.head = head

	if receipt.Reverted {
		metricClauses().AddWithLabel(1, map[string]string{"result": "reverted"})
		logger.Debug("clause reverted", "number", head.Number, "name", clause.Name, "reason", receipt.RevertReason)
	} else {
		metricClauses().AddWithLabel(1, map[string]string{"result": "success"})
		logger.Debug("clause executed", "number", head.Number, "name", clause.Name, "events", len(receipt.Events))
	}
	rt.broadcast(receipt)
	return receipt, nil
}

// commit persists the state changes, the new head and the receipt events.
func (rt *Runtime) commit(st *state.State, head Head, receipt *Receipt) error {
	var w *logdb.Writer
	if rt.logDB != nil && len(receipt.Events) > 0 {
		w = rt.logDB.NewWriter()
		if err := w.Write(head.Number, head.Time, receipt.Caller, receipt.Events); err != nil {
			_ = w.Rollback()
			return errors.Wrap(err, "write logs")
		}
	}

	// a reverted clause leaves nothing staged but the head
	if err := st.Stage().CommitWith(func(putter kv.Putter) error {
		return PutHead(putter, head)
	}); err != nil {
		if w != nil {
			_ = w.Rollback()
		}
		return errors.Wrap(err, "commit state")
	}

	if w != nil {
		if err := w.Commit(); err != nil {
			// the state is committed, events of this block are lost
			logger.Error("failed to commit logs", "number", head.Number, "error", err)
		}
	}
	return nil
}

// Subscribe returns a channel receiving every receipt executed from now on
// and the function releasing it. Slow subscribers miss receipts.
func (rt *Runtime) Subscribe() (<-chan *Receipt, func()) {
	rt.subsMu.Lock()
	defer rt.subsMu.Unlock()

	id := rt.nextID
	rt.nextID++
	ch := make(chan *Receipt, rt.buffer)
	rt.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			rt.subsMu.Lock()
			defer rt.subsMu.Unlock()
			delete(rt.subs, id)
			close(ch)
		})
	}
}

func (rt *Runtime) broadcast(receipt *Receipt) {
	rt.subsMu.Lock()
	defer rt.subsMu.Unlock()

	for id, ch := range rt.subs {
		select {
		case ch <- receipt:
		default:
			metricDroppedReceipts().Add(1)
			logger.Debug("subscriber lagging, receipt dropped", "subscriber", id, "number", receipt.BlockNumber)
		}
	}
}
