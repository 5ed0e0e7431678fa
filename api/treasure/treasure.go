// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/treasure"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

type Treasure struct {
	ledger      utils.Ledger
	addr        thor.Address
	resolver    token.Resolver
	allowWrites bool
}

func New(ledger utils.Ledger, addr thor.Address, resolver token.Resolver, allowWrites bool) *Treasure {
	return &Treasure{
		ledger:      ledger,
		addr:        addr,
		resolver:    resolver,
		allowWrites: allowWrites,
	}
}

func (t *Treasure) handleGetTreasure(w http.ResponseWriter, _ *http.Request) error {
	var res *JSONTreasure
	if err := t.ledger.View(func(st *state.State, _ uint64) (err error) {
		tr := treasure.New(t.addr, st, t.resolver)
		res = &JSONTreasure{Address: t.addr}
		if res.Token, err = tr.Token(); err != nil {
			if r, ok := reverts.As(err); ok && r.Error() == treasure.ReasonNoTreasure {
				return utils.NotFound(err)
			}
			return err
		}
		if res.Factory, err = tr.Factory(); err != nil {
			return err
		}
		if res.FeeRecipient, err = tr.FeeRecipient(); err != nil {
			return err
		}
		if res.Owner, err = tr.Owner(); err != nil {
			return err
		}
		locked, err := tr.TotalLocked()
		if err != nil {
			return err
		}
		res.TotalLocked = utils.NewValue(locked, utils.Decimals(st, res.Token))
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (t *Treasure) handleGetLock(w http.ResponseWriter, req *http.Request) error {
	beneficiary, err := utils.ParseAddress(mux.Vars(req)["beneficiary"], "beneficiary")
	if err != nil {
		return err
	}
	depositor, err := utils.ParseAddress(mux.Vars(req)["depositor"], "depositor")
	if err != nil {
		return err
	}

	var res *JSONLock
	if err := t.ledger.View(func(st *state.State, _ uint64) error {
		tr := treasure.New(t.addr, st, t.resolver)
		lockToken, err := tr.Token()
		if err != nil {
			return err
		}
		l, err := tr.GetLock(beneficiary, depositor)
		if err != nil {
			return err
		}
		if l == nil {
			return utils.NotFound(errors.New("lock not found"))
		}
		res = &JSONLock{
			Beneficiary:   beneficiary,
			Depositor:     depositor,
			Amount:        utils.NewValue(l.Amount, utils.Decimals(st, lockToken)),
			StartDate:     l.StartDate,
			LockDuration:  l.LockDuration,
			EpochDuration: l.EpochDuration,
			Fee:           l.Fee,
			UnlockDate:    l.UnlockDate(),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (t *Treasure) handleUnlock(w http.ResponseWriter, req *http.Request) error {
	var body UnlockRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.Execute(w, req, t.ledger, &body.ClauseOptions, "unlock", func(env *xenv.Environment) error {
		return treasure.New(t.addr, env.State(), t.resolver).Unlock(env, body.Depositor)
	})
}

func (t *Treasure) handleChangeFeeRecipient(w http.ResponseWriter, req *http.Request) error {
	var body FeeRecipientRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.Execute(w, req, t.ledger, &body.ClauseOptions, "changeFeeRecipient", func(env *xenv.Environment) error {
		return treasure.New(t.addr, env.State(), t.resolver).ChangeFeeRecipient(env, body.Recipient)
	})
}

func (t *Treasure) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /treasure").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetTreasure))
	sub.Path("/locks/{beneficiary}/{depositor}").
		Methods(http.MethodGet).
		Name("GET /treasure/locks/{beneficiary}/{depositor}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetLock))

	if !t.allowWrites {
		return
	}
	sub.Path("/unlock").
		Methods(http.MethodPost).
		Name("POST /treasure/unlock").
		HandlerFunc(utils.WrapHandlerFunc(t.handleUnlock))
	sub.Path("/fee-recipient").
		Methods(http.MethodPost).
		Name("POST /treasure/fee-recipient").
		HandlerFunc(utils.WrapHandlerFunc(t.handleChangeFeeRecipient))
}
