// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"context"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

// Ledger reads and mutates the ledger.
type Ledger interface {
	View(fn func(st *state.State, now uint64) error) error
	Execute(ctx context.Context, clause *runtime.Clause) (*runtime.Receipt, error)
}

// Value is an integer amount with its human readable form.
type Value struct {
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

// NewValue formats v scaled down by decimals.
func NewValue(v *big.Int, decimals uint8) *Value {
	if v == nil {
		v = new(big.Int)
	}
	return &Value{
		Amount:  v.String(),
		Display: decimal.NewFromBigInt(v, -int32(decimals)).String(),
	}
}

// Decimals returns the decimals of the token at addr, 18 if unknown.
func Decimals(st *state.State, addr thor.Address) uint8 {
	meta, err := token.New(addr, st).Meta()
	if err != nil {
		return 18
	}
	return meta.Decimals
}

type Event struct {
	Address thor.Address   `json:"address"`
	Name    string         `json:"name"`
	Topics  []thor.Address `json:"topics"`
	Amount  string         `json:"amount"`
}

func ConvertEvent(ev *xenv.Event) *Event {
	amount := "0"
	if ev.Amount != nil {
		amount = ev.Amount.String()
	}
	topics := ev.Topics
	if topics == nil {
		topics = []thor.Address{}
	}
	return &Event{
		Address: ev.Address,
		Name:    ev.Name,
		Topics:  topics,
		Amount:  amount,
	}
}

// Receipt is the outcome of a write request.
type Receipt struct {
	BlockNumber  uint32       `json:"blockNumber"`
	BlockTime    uint64       `json:"blockTime"`
	Caller       thor.Address `json:"caller"`
	Name         string       `json:"name"`
	Reverted     bool         `json:"reverted"`
	RevertReason string       `json:"revertReason,omitempty"`
	Output       string       `json:"output,omitempty"`
	Events       []*Event     `json:"events"`
}

func ConvertReceipt(r *runtime.Receipt) *Receipt {
	rec := &Receipt{
		BlockNumber:  r.BlockNumber,
		BlockTime:    r.BlockTime,
		Caller:       r.Caller,
		Name:         r.Name,
		Reverted:     r.Reverted,
		RevertReason: r.RevertReason,
		Events:       make([]*Event, 0, len(r.Events)),
	}
	if len(r.Output) > 0 {
		rec.Output = hexutil.Encode(r.Output)
	}
	for _, ev := range r.Events {
		rec.Events = append(rec.Events, ConvertEvent(ev))
	}
	return rec
}

// ClauseOptions are the fields common to every write request.
type ClauseOptions struct {
	Caller thor.Address `json:"caller"`
	Time   uint64       `json:"time,omitempty"`
}

// Execute runs exec as a clause and responds the receipt.
// Reverted clauses are responded with status OK.
func Execute(
	w http.ResponseWriter,
	req *http.Request,
	ledger Ledger,
	opts *ClauseOptions,
	name string,
	exec func(env *xenv.Environment) error,
) error {
	if opts.Caller.IsZero() {
		return BadRequest(errors.New("caller: required"))
	}
	receipt, err := ledger.Execute(req.Context(), &runtime.Clause{
		Caller: opts.Caller,
		Time:   opts.Time,
		Name:   name,
		Exec:   exec,
	})
	if err != nil {
		if errors.Is(err, runtime.ErrTimeBackwards) {
			return BadRequest(errors.WithMessage(err, "time"))
		}
		return err
	}
	return WriteJSON(w, ConvertReceipt(receipt))
}

// ParseAddress parses s as the named address parameter.
func ParseAddress(s, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// ParseUint parses s as the named parameter, def if empty.
func ParseUint(s, name string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return v, nil
}

// ParseAmount parses s, decimal or 0x prefixed hex, as the named amount.
func ParseAmount(s, name string) (*big.Int, error) {
	v, ok := math.ParseBig256(s)
	if !ok || s == "" || v.Sign() < 0 {
		return nil, BadRequest(errors.Errorf("%v: invalid amount %q", name, s))
	}
	return v, nil
}
