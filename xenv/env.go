// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// Event is a log emitted by a contract.
type Event struct {
	Address thor.Address   `json:"address"`
	Name    string         `json:"name"`
	Topics  []thor.Address `json:"topics"`
	Amount  *big.Int       `json:"amount"`
}

// ID returns the event signature id.
func (e *Event) ID() thor.Bytes32 {
	return thor.Keccak256([]byte(e.Name))
}

// Environment an env to execute contract methods.
// Environments derived by WithCaller share state and event sink with their parent.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   thor.Address
	events   *[]*Event
}

// New create a new env.
func New(state *state.State, blockCtx *BlockContext, caller thor.Address) *Environment {
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		events:   new([]*Event),
	}
}

func (env *Environment) State() *state.State        { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Now() uint64                 { return env.blockCtx.Time }
func (env *Environment) Caller() thor.Address        { return env.caller }

// WithCaller returns an env for a nested call made by the contract at addr.
func (env *Environment) WithCaller(addr thor.Address) *Environment {
	return &Environment{
		state:    env.state,
		blockCtx: env.blockCtx,
		caller:   addr,
		events:   env.events,
	}
}

// Log appends an event.
func (env *Environment) Log(ev *Event) {
	*env.events = append(*env.events, ev)
}

// Events returns events logged so far.
func (env *Environment) Events() []*Event {
	return *env.events
}

// Call runs fn atomically: state changes and events made by fn are dropped if it fails.
func (env *Environment) Call(fn func() error) error {
	var (
		checkpoint = env.state.NewCheckpoint()
		nEvents    = len(*env.events)
	)
	if err := fn(); err != nil {
		env.state.RevertTo(checkpoint)
		*env.events = (*env.events)[:nEvents]
		return err
	}
	return nil
}
