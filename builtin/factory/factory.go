// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factory implements the pool factory. It deploys farming pools at
// deterministic addresses, funds them and bonds a lock amount per pool in
// the treasure.
package factory

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/whiteswap/farming/builtin/guard"
	"github.com/whiteswap/farming/builtin/ownable"
	"github.com/whiteswap/farming/builtin/reverts"
	"github.com/whiteswap/farming/builtin/solidity"
	"github.com/whiteswap/farming/builtin/treasure"
	"github.com/whiteswap/farming/log"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

var logger = log.WithContext("pkg", "factory")

const (
	ReasonZeroLock       = "Lock can not be zero"
	ReasonZeroWsd        = "Wsd can not be zero"
	ReasonZeroTimeLock   = "TimeLock can not be zero"
	ReasonZeroSwap       = "WhiteswapV2Factory can not be zero"
	ReasonTooHighPercent = "Too high percent"
	ReasonInvalidLimits  = "Invalid limits"

	ReasonZeroReward       = "TotalReward can not be zero"
	ReasonShortEpoch       = "Epoch duration less than min epoch duration"
	ReasonZeroStaking      = "Staking token can not be zero"
	ReasonZeroRewardToken  = "Reward token can not be zero"
	ReasonShortExitDelay   = "Can not be min staking time less than 14 days"
	ReasonLongExitDelay    = "Can not be max staking time greater than 30 days"
	ReasonRewardBelowEpoch = "Total reward must be greater than epoch duration"
	ReasonNotPair          = "Not valid LP token"
	ReasonCreate2          = "Create2: Failed on deploy"
	ReasonInvalidAmount    = "Invalid amount"

	ReasonZeroAmount = "Can not be zero"
	ReasonNoFactory  = "Factory does not exist"

	EventFarmingPoolDeployed = "FarmingPoolDeployed"
	EventLockAmountChanged   = "LockAmountChanged"
	EventCommissionChanged   = "WsUnlockCommissionPercentChanged"
)

var (
	slotConfig     = thor.BytesToBytes32([]byte("config"))
	slotLimits     = thor.BytesToBytes32([]byte("limits"))
	slotLockAmount = thor.BytesToBytes32([]byte("lockAmount"))
	slotCommission = thor.BytesToBytes32([]byte("wsUnlockCommissionPercent"))
	slotIterator   = thor.BytesToBytes32([]byte("iteratorIdFarmingPools"))
	slotInfos      = thor.BytesToBytes32([]byte("farmingInfo"))
)

// Config holds the constructor arguments of a factory.
type Config struct {
	UnlockCommissionPercent uint64
	LockAmount              *big.Int
	LockToken               thor.Address
	TimeLock                thor.Address
	SwapRegistry            thor.Address
	Limits                  Limits
	TreasureLimits          treasure.Limits
}

// Limits bound the pools a factory deploys. Zero fields take the thor defaults.
type Limits struct {
	MinEpochDuration           uint64
	MinExitDelay               uint64
	MaxExitDelay               uint64
	MaxUnlockCommissionPercent uint64
}

// DefaultLimits returns the limits of a factory deployed without any.
func DefaultLimits() Limits {
	return Limits{
		MinEpochDuration:           thor.MinEpochDuration,
		MinExitDelay:               thor.MinExitDelay,
		MaxExitDelay:               thor.MaxExitDelay,
		MaxUnlockCommissionPercent: thor.MaxUnlockCommissionPercent,
	}
}

func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MinEpochDuration == 0 {
		l.MinEpochDuration = def.MinEpochDuration
	}
	if l.MinExitDelay == 0 {
		l.MinExitDelay = def.MinExitDelay
	}
	if l.MaxExitDelay == 0 {
		l.MaxExitDelay = def.MaxExitDelay
	}
	if l.MaxUnlockCommissionPercent == 0 {
		l.MaxUnlockCommissionPercent = def.MaxUnlockCommissionPercent
	}
	return l
}

// addresses is the immutable part of the factory, stored once.
type addresses struct {
	LockToken    thor.Address
	TimeLock     thor.Address
	SwapRegistry thor.Address
	Treasure     thor.Address
}

// DeployParams describe a pool requested by its deployer.
type DeployParams struct {
	RewardToken      thor.Address
	StakingToken     thor.Address
	TotalReward      *big.Int
	StartDate        uint64
	EpochDuration    uint64
	LockDuration     uint64
	MinimumExitDelay uint64
}

// FarmingInfo records a deployed pool.
type FarmingInfo struct {
	ID            uint64
	Pool          thor.Address
	StakingToken  thor.Address
	RewardToken   thor.Address
	StartDate     uint64
	EndDate       uint64
	EpochDuration uint64
	TotalReward   *big.Int
	Deployer      thor.Address
}

// Factory binds the factory contract living at an address.
type Factory struct {
	addr       thor.Address
	state      *state.State
	resolver   token.Resolver
	ownable    *ownable.Ownable
	guard      *guard.Guard
	lockAmount *solidity.Uint256
	commission *solidity.Uint256
	iterator   *solidity.Uint256
	infos      *solidity.Mapping[solidity.Uint64Key, *FarmingInfo]
}

func New(addr thor.Address, st *state.State, resolver token.Resolver) *Factory {
	ctx := solidity.NewContext(addr, st)
	return &Factory{
		addr:       addr,
		state:      st,
		resolver:   resolver,
		ownable:    ownable.New(ctx),
		guard:      guard.New(ctx),
		lockAmount: solidity.NewUint256(ctx, slotLockAmount),
		commission: solidity.NewUint256(ctx, slotCommission),
		iterator:   solidity.NewUint256(ctx, slotIterator),
		infos:      solidity.NewMapping[solidity.Uint64Key, *FarmingInfo](ctx, slotInfos),
	}
}

// Deploy creates a factory at addr together with its treasure. The time lock
// owns both and receives the unlock commissions.
func Deploy(env *xenv.Environment, addr thor.Address, cfg *Config, resolver token.Resolver) (*Factory, error) {
	f := New(addr, env.State(), resolver)
	treasureAddr := thor.CreateContractAddress(addr, 0)
	limits := cfg.Limits.withDefaults()
	err := env.Call(func() error {
		switch {
		case cfg.LockAmount == nil || cfg.LockAmount.Sign() <= 0:
			return reverts.New(ReasonZeroLock)
		case cfg.LockToken.IsZero():
			return reverts.New(ReasonZeroWsd)
		case cfg.TimeLock.IsZero():
			return reverts.New(ReasonZeroTimeLock)
		case cfg.SwapRegistry.IsZero():
			return reverts.New(ReasonZeroSwap)
		case cfg.UnlockCommissionPercent >= thor.UnlockCommissionPercentLimit,
			limits.MaxUnlockCommissionPercent >= thor.UnlockCommissionPercentLimit:
			return reverts.New(ReasonTooHighPercent)
		case limits.MinExitDelay > limits.MaxExitDelay:
			return reverts.New(ReasonInvalidLimits)
		}

		if _, err := treasure.Deploy(env.WithCaller(addr), treasureAddr,
			cfg.LockToken, cfg.TimeLock, addr, cfg.TimeLock, cfg.TreasureLimits, resolver); err != nil {
			return err
		}
		if err := f.state.EncodeStorage(addr, slotLimits, func() ([]byte, error) {
			return rlp.EncodeToBytes(&limits)
		}); err != nil {
			return err
		}
		if err := f.state.EncodeStorage(addr, slotConfig, func() ([]byte, error) {
			return rlp.EncodeToBytes(&addresses{
				LockToken:    cfg.LockToken,
				TimeLock:     cfg.TimeLock,
				SwapRegistry: cfg.SwapRegistry,
				Treasure:     treasureAddr,
			})
		}); err != nil {
			return err
		}
		if err := f.lockAmount.Set(cfg.LockAmount); err != nil {
			return err
		}
		if err := f.commission.Set(new(big.Int).SetUint64(cfg.UnlockCommissionPercent)); err != nil {
			return err
		}
		return f.ownable.Init(env, cfg.TimeLock)
	})
	if err != nil {
		logger.Info("factory deployment rejected", "factory", addr, "error", err)
		return nil, err
	}
	logger.Info("factory deployed", "factory", addr, "treasure", treasureAddr, "timeLock", cfg.TimeLock)
	return f, nil
}

func (f *Factory) Address() thor.Address { return f.addr }

func (f *Factory) addresses() (*addresses, error) {
	raw, err := f.state.GetRawStorage(f.addr, slotConfig)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, reverts.New(ReasonNoFactory)
	}
	var a addresses
	if err := rlp.DecodeBytes(raw, &a); err != nil {
		return nil, errors.Wrap(err, "decode factory addresses")
	}
	return &a, nil
}

// Exists returns whether a factory was deployed at the address.
func (f *Factory) Exists() (bool, error) {
	raw, err := f.state.GetRawStorage(f.addr, slotConfig)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Limits returns the bounds applied to new pools and commission changes.
func (f *Factory) Limits() (Limits, error) {
	raw, err := f.state.GetRawStorage(f.addr, slotLimits)
	if err != nil {
		return Limits{}, err
	}
	if len(raw) == 0 {
		return Limits{}, reverts.New(ReasonNoFactory)
	}
	var l Limits
	if err := rlp.DecodeBytes(raw, &l); err != nil {
		return Limits{}, errors.Wrap(err, "decode factory limits")
	}
	return l, nil
}

// MinimumTerms returns the shortest epoch, lock and exit delay a pool of the factory may have.
func (f *Factory) MinimumTerms() (epoch, lock, exitDelay uint64, err error) {
	limits, err := f.Limits()
	if err != nil {
		return 0, 0, 0, err
	}
	a, err := f.addresses()
	if err != nil {
		return 0, 0, 0, err
	}
	tl, err := treasure.New(a.Treasure, f.state, f.resolver).Limits()
	if err != nil {
		return 0, 0, 0, err
	}
	return limits.MinEpochDuration, max(tl.MinLockDuration, limits.MinEpochDuration), limits.MinExitDelay, nil
}

func (f *Factory) Wsd() (thor.Address, error) {
	a, err := f.addresses()
	if err != nil {
		return thor.Address{}, err
	}
	return a.LockToken, nil
}

func (f *Factory) TimeLock() (thor.Address, error) {
	a, err := f.addresses()
	if err != nil {
		return thor.Address{}, err
	}
	return a.TimeLock, nil
}

// WhiteswapV2Factory returns the pair registry used to validate staking tokens.
func (f *Factory) WhiteswapV2Factory() (thor.Address, error) {
	a, err := f.addresses()
	if err != nil {
		return thor.Address{}, err
	}
	return a.SwapRegistry, nil
}

func (f *Factory) Treasure() (thor.Address, error) {
	a, err := f.addresses()
	if err != nil {
		return thor.Address{}, err
	}
	return a.Treasure, nil
}

func (f *Factory) Owner() (thor.Address, error) {
	return f.ownable.Owner()
}

func (f *Factory) LockAmount() (*big.Int, error) {
	return f.lockAmount.Get()
}

func (f *Factory) WsUnlockCommissionPercent() (uint64, error) {
	v, err := f.commission.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// IteratorIDFarmingPools returns the id of the last deployed pool, 0 if none.
func (f *Factory) IteratorIDFarmingPools() (uint64, error) {
	v, err := f.iterator.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// FarmingInfo returns the record of pool id. Unknown ids read as zero values.
func (f *Factory) FarmingInfo(id uint64) (*FarmingInfo, error) {
	info, err := f.infos.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, err
	}
	if info.TotalReward == nil {
		info.TotalReward = new(big.Int)
	}
	return info, nil
}

func (f *Factory) PoolByID(id uint64) (thor.Address, error) {
	info, err := f.FarmingInfo(id)
	if err != nil {
		return thor.Address{}, err
	}
	return info.Pool, nil
}

// GetAddress returns the address a pool with the given parameters is deployed at.
func (f *Factory) GetAddress(
	creator, rewardToken, stakingToken thor.Address,
	totalReward *big.Int,
	startDate, epochDuration, minExit uint64,
) thor.Address {
	salt := thor.PoolSalt(creator, rewardToken, stakingToken, totalReward, startDate, epochDuration, minExit)
	return thor.CreateContractAddress2(f.addr, salt, thor.FarmingPoolCodeHash)
}
