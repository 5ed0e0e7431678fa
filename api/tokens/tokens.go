// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/cache"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

type JSONToken struct {
	Address     thor.Address `json:"address"`
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	Decimals    uint8        `json:"decimals"`
	Kind        string       `json:"kind"`
	Commission  uint8        `json:"commission"`
	Minter      thor.Address `json:"minter"`
	TotalSupply *utils.Value `json:"totalSupply"`
}

type JSONBalance struct {
	Account   thor.Address  `json:"account"`
	Balance   *utils.Value  `json:"balance"`
	Spender   *thor.Address `json:"spender,omitempty"`
	Allowance *utils.Value  `json:"allowance,omitempty"`
}

type TransferRequest struct {
	utils.ClauseOptions
	To     thor.Address `json:"to"`
	Amount string       `json:"amount"`
}

type ApproveRequest struct {
	utils.ClauseOptions
	Spender thor.Address `json:"spender"`
	Amount  string       `json:"amount"`
}

type Tokens struct {
	ledger      utils.Ledger
	resolver    token.Resolver
	allowWrites bool
	metas       *cache.LRU
}

func New(ledger utils.Ledger, resolver token.Resolver, allowWrites bool) *Tokens {
	metas, _ := cache.NewLRU(256)
	return &Tokens{
		ledger:      ledger,
		resolver:    resolver,
		allowWrites: allowWrites,
		metas:       metas,
	}
}

func (t *Tokens) meta(st *state.State, addr thor.Address) (*token.Meta, error) {
	v, err := t.metas.GetOrLoad(addr, func(any) (any, error) {
		meta, err := token.New(addr, st).Meta()
		if reverts.IsRevertErr(err) {
			return nil, utils.NotFound(errors.New("token not found"))
		}
		return meta, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*token.Meta), nil
}

func kindName(kind token.Kind) string {
	if kind == token.KindVoid {
		return "void"
	}
	return "standard"
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}

	var res *JSONToken
	if err := t.ledger.View(func(st *state.State, _ uint64) error {
		meta, err := t.meta(st, addr)
		if err != nil {
			return err
		}
		supply, err := token.New(addr, st).TotalSupply()
		if err != nil {
			return err
		}
		res = &JSONToken{
			Address:     addr,
			Name:        meta.Name,
			Symbol:      meta.Symbol,
			Decimals:    meta.Decimals,
			Kind:        kindName(meta.Kind),
			Commission:  meta.Commission,
			Minter:      meta.Minter,
			TotalSupply: utils.NewValue(supply, meta.Decimals),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	account, err := utils.ParseAddress(mux.Vars(req)["account"], "account")
	if err != nil {
		return err
	}
	var spender *thor.Address
	if s := req.URL.Query().Get("spender"); s != "" {
		v, err := utils.ParseAddress(s, "spender")
		if err != nil {
			return err
		}
		spender = &v
	}

	var res *JSONBalance
	if err := t.ledger.View(func(st *state.State, _ uint64) error {
		meta, err := t.meta(st, addr)
		if err != nil {
			return err
		}
		tok := token.New(addr, st)
		bal, err := tok.BalanceOf(account)
		if err != nil {
			return err
		}
		res = &JSONBalance{Account: account, Balance: utils.NewValue(bal, meta.Decimals)}
		if spender != nil {
			allowance, err := tok.Allowance(account, *spender)
			if err != nil {
				return err
			}
			res.Spender = spender
			res.Allowance = utils.NewValue(allowance, meta.Decimals)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount, "amount")
	if err != nil {
		return err
	}
	return utils.Execute(w, req, t.ledger, &body.ClauseOptions, "transfer", func(env *xenv.Environment) error {
		tok, err := t.resolver.Resolve(env.State(), addr)
		if err != nil {
			return err
		}
		return token.SafeTransfer(env, tok, body.To, amount)
	})
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount, "amount")
	if err != nil {
		return err
	}
	return utils.Execute(w, req, t.ledger, &body.ClauseOptions, "approve", func(env *xenv.Environment) error {
		tok, err := t.resolver.Resolve(env.State(), addr)
		if err != nil {
			return err
		}
		return token.SafeApprove(env, tok, body.Spender, amount)
	})
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{address}/balances/{account}").
		Methods(http.MethodGet).
		Name("GET /tokens/{address}/balances/{account}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))

	if !t.allowWrites {
		return
	}
	sub.Path("/{address}/transfer").
		Methods(http.MethodPost).
		Name("POST /tokens/{address}/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{address}/approve").
		Methods(http.MethodPost).
		Name("POST /tokens/{address}/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
}
