// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Code identifiers of the contracts deployed with CREATE2.
var (
	FarmingPoolCodeHash = Keccak256([]byte("whiteswap/farming-pool"))
	SwapPairCodeHash    = Keccak256([]byte("whiteswap/v2-pair"))
)

// CreateContractAddress returns the address of the nonce-th contract created by creator.
func CreateContractAddress(creator Address, nonce uint64) Address {
	return Address(crypto.CreateAddress(common.Address(creator), nonce))
}

// CreateContractAddress2 returns the address of a contract created by creator with
// the given salt and init code hash, as CREATE2 does.
func CreateContractAddress2(creator Address, salt Bytes32, codeHash Bytes32) Address {
	return Address(crypto.CreateAddress2(common.Address(creator), salt, codeHash[:]))
}

// PoolSalt packs the deployment parameters of a farming pool into its CREATE2 salt.
func PoolSalt(
	creator, rewardToken, stakingToken Address,
	totalReward *big.Int,
	startDate, epochDuration, exitDelay uint64,
) Bytes32 {
	var (
		reward   = BigToBytes32(totalReward)
		start    = Uint64ToBytes32(startDate)
		duration = Uint64ToBytes32(epochDuration)
		delay    = Uint64ToBytes32(exitDelay)
	)
	return Keccak256(
		creator[:],
		rewardToken[:],
		stakingToken[:],
		reward[:],
		start[:],
		duration[:],
		delay[:],
	)
}

// PairSalt returns the CREATE2 salt of the liquidity pair of two tokens.
// The tokens are expected to be sorted.
func PairSalt(token0, token1 Address) Bytes32 {
	return Keccak256(token0[:], token1[:])
}
