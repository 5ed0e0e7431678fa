// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/builtin/farming"
	"github.com/whiteswap/farming/cache"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

type Pools struct {
	ledger      utils.Ledger
	resolver    token.Resolver
	allowWrites bool
	params      *cache.LRU
}

func New(ledger utils.Ledger, resolver token.Resolver, allowWrites bool) *Pools {
	params, _ := cache.NewLRU(1024)
	return &Pools{
		ledger:      ledger,
		resolver:    resolver,
		allowWrites: allowWrites,
		params:      params,
	}
}

// bind returns the pool at addr with its construction params, which never change.
func (p *Pools) bind(st *state.State, addr thor.Address) (*farming.Pool, *farming.Params, error) {
	pool := farming.New(addr, st, p.resolver)
	v, err := p.params.GetOrLoad(addr, func(any) (any, error) {
		exists, err := pool.Exists()
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, utils.NotFound(errors.New("pool not found"))
		}
		return pool.Params()
	})
	if err != nil {
		return nil, nil, err
	}
	return pool, v.(*farming.Params), nil
}

// viewTime returns the time query parameter, the head time if absent.
func viewTime(req *http.Request, head uint64) (uint64, error) {
	return utils.ParseUint(req.URL.Query().Get("time"), "time", head)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}

	var res *JSONPool
	if err := p.ledger.View(func(st *state.State, head uint64) error {
		now, err := viewTime(req, head)
		if err != nil {
			return err
		}
		pool, params, err := p.bind(st, addr)
		if err != nil {
			return err
		}
		var (
			rewardDecimals  = utils.Decimals(st, params.RewardToken)
			stakingDecimals = utils.Decimals(st, params.StakingToken)
		)
		res = &JSONPool{
			Address:          addr,
			Factory:          params.Factory,
			Deployer:         params.Deployer,
			RewardToken:      params.RewardToken,
			StakingToken:     params.StakingToken,
			RewardAmount:     utils.NewValue(params.RewardAmount, rewardDecimals),
			StartDate:        params.StartDate,
			EndDate:          params.EndDate,
			EpochDuration:    params.EpochDuration,
			MinimumExitDelay: params.MinimumExitDelay,
			Time:             now,
		}

		rate, err := pool.RewardRate()
		if err != nil {
			return err
		}
		res.RewardRate = rate.String()
		rpt, err := pool.RewardPerToken(now)
		if err != nil {
			return err
		}
		res.RewardPerToken = rpt.String()
		if res.LastUpdateTime, err = pool.LastUpdateTime(); err != nil {
			return err
		}
		if res.LastTimeRewardApplicable, err = pool.LastTimeRewardApplicable(now); err != nil {
			return err
		}
		forDuration, err := pool.GetRewardForDuration()
		if err != nil {
			return err
		}
		res.RewardForDuration = utils.NewValue(forDuration, rewardDecimals)
		supply, err := pool.TotalSupply()
		if err != nil {
			return err
		}
		res.TotalSupply = utils.NewValue(supply, stakingDecimals)
		distributed, err := pool.DistributedTokens()
		if err != nil {
			return err
		}
		res.DistributedTokens = utils.NewValue(distributed, rewardDecimals)
		if res.CurrentCountAccounts, err = pool.CurrentCountAccounts(); err != nil {
			return err
		}
		res.ActiveAccounts, err = pool.GetActiveAccountCount()
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	account, err := utils.ParseAddress(mux.Vars(req)["account"], "account")
	if err != nil {
		return err
	}

	var res *JSONAccount
	if err := p.ledger.View(func(st *state.State, head uint64) error {
		now, err := viewTime(req, head)
		if err != nil {
			return err
		}
		pool, params, err := p.bind(st, addr)
		if err != nil {
			return err
		}
		acc, err := pool.Account(account)
		if err != nil {
			return err
		}
		earned, err := pool.Earned(account, now)
		if err != nil {
			return err
		}
		res = &JSONAccount{
			Address:            account,
			ID:                 acc.ID,
			Balance:            utils.NewValue(acc.Balance, utils.Decimals(st, params.StakingToken)),
			Earned:             utils.NewValue(earned, utils.Decimals(st, params.RewardToken)),
			RewardPerTokenPaid: acc.RewardPerTokenPaid.String(),
			EnterTime:          acc.EnterTime,
			Time:               now,
		}
		if acc.EnterTime > 0 {
			res.ExitAvailableAt = thor.Deadline(acc.EnterTime, params.MinimumExitDelay)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetAccountByID(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	id, err := utils.ParseUint(mux.Vars(req)["id"], "id", 0)
	if err != nil {
		return err
	}

	var account thor.Address
	if err := p.ledger.View(func(st *state.State, _ uint64) error {
		pool, _, err := p.bind(st, addr)
		if err != nil {
			return err
		}
		account, err = pool.AccountAddressByID(id)
		return err
	}); err != nil {
		return err
	}
	if account.IsZero() {
		return utils.NotFound(errors.Errorf("account %d not found", id))
	}
	return utils.WriteJSON(w, utils.M{"id": id, "address": account})
}

func (p *Pools) handleAction(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], "address")
	if err != nil {
		return err
	}
	action := mux.Vars(req)["action"]

	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	var exec func(env *xenv.Environment, pool *farming.Pool) error
	switch action {
	case "farm", "withdraw":
		amount, err := utils.ParseAmount(body.Amount, "amount")
		if err != nil {
			return err
		}
		if action == "farm" {
			exec = func(env *xenv.Environment, pool *farming.Pool) error { return pool.Farm(env, amount) }
		} else {
			exec = func(env *xenv.Environment, pool *farming.Pool) error { return pool.Withdraw(env, amount) }
		}
	case "reward":
		exec = func(env *xenv.Environment, pool *farming.Pool) error { return pool.GetReward(env) }
	case "exit":
		exec = func(env *xenv.Environment, pool *farming.Pool) error { return pool.Exit(env) }
	default:
		return utils.NotFound(errors.Errorf("unknown action %q", action))
	}
	return utils.Execute(w, req, p.ledger, &body.ClauseOptions, action, func(env *xenv.Environment) error {
		return exec(env, farming.New(addr, env.State(), p.resolver))
	})
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /pools/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{address}/accounts/{account}").
		Methods(http.MethodGet).
		Name("GET /pools/{address}/accounts/{account}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccount))
	sub.Path("/{address}/ids/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /pools/{address}/ids/{id}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetAccountByID))

	if p.allowWrites {
		sub.Path("/{address}/{action:farm|withdraw|reward|exit}").
			Methods(http.MethodPost).
			Name("POST /pools/{address}/{action}").
			HandlerFunc(utils.WrapHandlerFunc(p.handleAction))
	}
}
