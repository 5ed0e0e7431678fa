// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/whiteswap/farming/thor"
)

// DevAccount account for development.
type DevAccount struct {
	Address    thor.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the devnet.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{thor.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet creates the genesis of a local ledger.
// The first dev account owns the factory, every account is funded.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // 2025-01-01 00:00:00 UTC

	var (
		accs    = DevAccounts()
		million = new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18))
		lp      = new(big.Int).Mul(big.NewInt(1_000), big.NewInt(1e18))
	)
	balances := func(amount *big.Int) []*Balance {
		var bals []*Balance
		for _, acc := range accs {
			bals = append(bals, &Balance{Address: acc.Address, Amount: NewAmount(amount)})
		}
		return bals
	}

	return &Genesis{
		LaunchTime: launchTime,
		Owner:      accs[0].Address,
		Tokens: []*Token{
			{Symbol: "WSD", Name: "Whiteswap", Decimals: 18, Balances: balances(million)},
			{Symbol: "RWD", Name: "Reward", Decimals: 18, Balances: balances(million)},
			{Symbol: "TAX", Name: "Taxed", Decimals: 18, Commission: 10, Balances: balances(million)},
			{Symbol: "VOID", Name: "Void", Decimals: 6, Kind: "void", Balances: balances(million)},
		},
		Pairs: []*Pair{
			{TokenA: "WSD", TokenB: "RWD", Balances: balances(lp)},
		},
		Factory: &Factory{
			LockToken:               "WSD",
			LockAmount:              NewAmount(lp),
			UnlockCommissionPercent: 5,
		},
	}
}
