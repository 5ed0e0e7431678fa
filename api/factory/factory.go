// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factory

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/builtin/factory"
	"github.com/whiteswap/farming/cache"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

const defaultPageSize = 20

type Factory struct {
	ledger      utils.Ledger
	addr        thor.Address
	resolver    token.Resolver
	limit       uint64
	allowWrites bool
	infos       *cache.LRU
}

func New(ledger utils.Ledger, addr thor.Address, resolver token.Resolver, limit uint64, allowWrites bool) *Factory {
	infos, _ := cache.NewLRU(1024)
	return &Factory{
		ledger:      ledger,
		addr:        addr,
		resolver:    resolver,
		limit:       limit,
		allowWrites: allowWrites,
		infos:       infos,
	}
}

func (f *Factory) bind(st *state.State) (*factory.Factory, error) {
	fac := factory.New(f.addr, st, f.resolver)
	exists, err := fac.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.NotFound(errors.New("factory not deployed"))
	}
	return fac, nil
}

// farmingInfo returns the record of a deployed pool. Records never change once written.
func (f *Factory) farmingInfo(fac *factory.Factory, id uint64) (*factory.FarmingInfo, error) {
	v, err := f.infos.GetOrLoad(id, func(any) (any, error) {
		return fac.FarmingInfo(id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*factory.FarmingInfo), nil
}

func (f *Factory) handleGetFactory(w http.ResponseWriter, _ *http.Request) error {
	var res *JSONFactory
	if err := f.ledger.View(func(st *state.State, _ uint64) (err error) {
		fac, err := f.bind(st)
		if err != nil {
			return err
		}
		res = &JSONFactory{Address: f.addr}
		if res.Wsd, err = fac.Wsd(); err != nil {
			return err
		}
		if res.TimeLock, err = fac.TimeLock(); err != nil {
			return err
		}
		if res.SwapRegistry, err = fac.WhiteswapV2Factory(); err != nil {
			return err
		}
		if res.Treasure, err = fac.Treasure(); err != nil {
			return err
		}
		if res.Owner, err = fac.Owner(); err != nil {
			return err
		}
		lockAmount, err := fac.LockAmount()
		if err != nil {
			return err
		}
		res.LockAmount = utils.NewValue(lockAmount, utils.Decimals(st, res.Wsd))
		if res.UnlockCommissionPercent, err = fac.WsUnlockCommissionPercent(); err != nil {
			return err
		}
		if res.PoolCount, err = fac.IteratorIDFarmingPools(); err != nil {
			return err
		}
		limits, err := fac.Limits()
		if err != nil {
			return err
		}
		epoch, lock, exitDelay, err := fac.MinimumTerms()
		if err != nil {
			return err
		}
		res.Limits = &JSONLimits{
			MinEpochDuration:           epoch,
			MinLockDuration:            lock,
			MinExitDelay:               exitDelay,
			MaxExitDelay:               limits.MaxExitDelay,
			MaxUnlockCommissionPercent: limits.MaxUnlockCommissionPercent,
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (f *Factory) handleGetPools(w http.ResponseWriter, req *http.Request) error {
	offset, err := utils.ParseUint(req.URL.Query().Get("offset"), "offset", 0)
	if err != nil {
		return err
	}
	limit, err := utils.ParseUint(req.URL.Query().Get("limit"), "limit", defaultPageSize)
	if err != nil {
		return err
	}
	if limit > f.limit {
		return utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", f.limit))
	}

	infos := make([]*JSONFarmingInfo, 0, limit)
	if err := f.ledger.View(func(st *state.State, _ uint64) error {
		fac, err := f.bind(st)
		if err != nil {
			return err
		}
		count, err := fac.IteratorIDFarmingPools()
		if err != nil {
			return err
		}
		for id := offset + 1; id <= count && uint64(len(infos)) < limit; id++ {
			info, err := f.farmingInfo(fac, id)
			if err != nil {
				return err
			}
			infos = append(infos, convertFarmingInfo(st, info))
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, infos)
}

func (f *Factory) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseUint(mux.Vars(req)["id"], "id", 0)
	if err != nil {
		return err
	}

	var res *JSONFarmingInfo
	if err := f.ledger.View(func(st *state.State, _ uint64) error {
		fac, err := f.bind(st)
		if err != nil {
			return err
		}
		count, err := fac.IteratorIDFarmingPools()
		if err != nil {
			return err
		}
		if id == 0 || id > count {
			return utils.NotFound(errors.Errorf("pool %d not found", id))
		}
		info, err := f.farmingInfo(fac, id)
		if err != nil {
			return err
		}
		res = convertFarmingInfo(st, info)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (f *Factory) handleGetAddress(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	creator, err := utils.ParseAddress(query.Get("creator"), "creator")
	if err != nil {
		return err
	}
	rewardToken, err := utils.ParseAddress(query.Get("rewardToken"), "rewardToken")
	if err != nil {
		return err
	}
	stakingToken, err := utils.ParseAddress(query.Get("stakingToken"), "stakingToken")
	if err != nil {
		return err
	}
	totalReward, err := utils.ParseAmount(query.Get("totalReward"), "totalReward")
	if err != nil {
		return err
	}
	var durations [3]uint64
	for i, name := range []string{"startDate", "epochDuration", "minExit"} {
		if durations[i], err = utils.ParseUint(query.Get(name), name, 0); err != nil {
			return err
		}
	}
	addr := factory.New(f.addr, nil, f.resolver).
		GetAddress(creator, rewardToken, stakingToken, totalReward, durations[0], durations[1], durations[2])
	return utils.WriteJSON(w, utils.M{"address": addr})
}

func (f *Factory) handleDeployPool(w http.ResponseWriter, req *http.Request) error {
	var body DeployPoolRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	totalReward, err := utils.ParseAmount(body.TotalReward, "totalReward")
	if err != nil {
		return err
	}
	params := &factory.DeployParams{
		RewardToken:      body.RewardToken,
		StakingToken:     body.StakingToken,
		TotalReward:      totalReward,
		StartDate:        body.StartDate,
		EpochDuration:    body.EpochDuration,
		LockDuration:     body.LockDuration,
		MinimumExitDelay: body.MinimumExitDelay,
	}
	return utils.Execute(w, req, f.ledger, &body.ClauseOptions, "deployPool", func(env *xenv.Environment) error {
		_, err := factory.New(f.addr, env.State(), f.resolver).DeployPool(env, params)
		return err
	})
}

func (f *Factory) handleChangeLockAmount(w http.ResponseWriter, req *http.Request) error {
	var body LockAmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount, "amount")
	if err != nil {
		return err
	}
	return utils.Execute(w, req, f.ledger, &body.ClauseOptions, "changeLockAmount", func(env *xenv.Environment) error {
		return factory.New(f.addr, env.State(), f.resolver).ChangeLockAmount(env, amount)
	})
}

func (f *Factory) handleChangeCommission(w http.ResponseWriter, req *http.Request) error {
	var body CommissionRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return utils.Execute(w, req, f.ledger, &body.ClauseOptions, "changeWsUnlockCommissionPercent", func(env *xenv.Environment) error {
		return factory.New(f.addr, env.State(), f.resolver).ChangeWsUnlockCommissionPercent(env, body.Percent)
	})
}

func (f *Factory) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /factory").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFactory))
	sub.Path("/pools").
		Methods(http.MethodGet).
		Name("GET /factory/pools").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPools))
	sub.Path("/pools/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("GET /factory/pools/{id}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPool))
	sub.Path("/address").
		Methods(http.MethodGet).
		Name("GET /factory/address").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetAddress))

	if !f.allowWrites {
		return
	}
	sub.Path("/pools").
		Methods(http.MethodPost).
		Name("POST /factory/pools").
		HandlerFunc(utils.WrapHandlerFunc(f.handleDeployPool))
	sub.Path("/lock-amount").
		Methods(http.MethodPost).
		Name("POST /factory/lock-amount").
		HandlerFunc(utils.WrapHandlerFunc(f.handleChangeLockAmount))
	sub.Path("/commission").
		Methods(http.MethodPost).
		Name("POST /factory/commission").
		HandlerFunc(utils.WrapHandlerFunc(f.handleChangeCommission))
}
