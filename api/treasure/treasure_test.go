// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package treasure

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/builtin/ownable"
	"github.com/whiteswap/farming/builtin/treasure"
	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/state"
	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/test/testchain"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
)

var (
	ts       *httptest.Server
	chain    *testchain.Chain
	pool     thor.Address
	deployer = genesis.DevAccounts()[1].Address
	feeTaker = genesis.DevAccounts()[3].Address
)

func TestTreasure(t *testing.T) {
	initTreasureServer(t)
	defer ts.Close()
	defer chain.Close()

	for _, tt := range []struct {
		name string
		test func(*testing.T)
	}{
		{"getTreasure", getTreasure},
		{"getLock", getLock},
		{"getLockNotFound", getLockNotFound},
		{"changeFeeRecipient", changeFeeRecipient},
		{"unlockEarly", unlockEarly},
		{"unlock", unlock},
	} {
		t.Run(tt.name, tt.test)
	}
}

func TestTreasureNotDeployed(t *testing.T) {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	router := mux.NewRouter()
	New(chain.Runtime(), datagen.RandAddress(), token.StateResolver{}, false).Mount(router, "/treasure")
	ts := httptest.NewServer(router)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/treasure")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// read only
	res, err = http.Post(ts.URL+"/treasure/unlock", "application/json", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	res.Body.Close()
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, res.StatusCode)
}

func getTreasure(t *testing.T) {
	res, statusCode := httpGet(t, ts.URL+"/treasure")
	require.Equal(t, http.StatusOK, statusCode)

	var tr JSONTreasure
	require.NoError(t, json.Unmarshal(res, &tr))
	assert.Equal(t, chain.Addresses().Treasure, tr.Address)
	assert.Equal(t, chain.Token("WSD"), tr.Token)
	assert.Equal(t, chain.Addresses().Factory, tr.Factory)
	assert.Equal(t, chain.Genesis().Owner, tr.Owner)
	assert.Equal(t, chain.Genesis().Owner, tr.FeeRecipient)
	assert.Equal(t, "1000", tr.TotalLocked.Display)
}

func getLock(t *testing.T) {
	res, statusCode := httpGet(t, ts.URL+"/treasure/locks/"+deployer.String()+"/"+pool.String())
	require.Equal(t, http.StatusOK, statusCode)

	var l JSONLock
	require.NoError(t, json.Unmarshal(res, &l))
	assert.Equal(t, deployer, l.Beneficiary)
	assert.Equal(t, pool, l.Depositor)
	assert.Equal(t, "1000", l.Amount.Display)
	assert.Equal(t, chain.Now()+thor.Day, l.StartDate)
	assert.Equal(t, thor.MinLockDuration, l.LockDuration)
	assert.Equal(t, thor.MinEpochDuration, l.EpochDuration)
	assert.Equal(t, chain.Genesis().Factory.UnlockCommissionPercent, l.Fee)
	assert.Equal(t, l.StartDate+l.LockDuration, l.UnlockDate)
}

func getLockNotFound(t *testing.T) {
	_, statusCode := httpGet(t, ts.URL+"/treasure/locks/"+pool.String()+"/"+deployer.String())
	assert.Equal(t, http.StatusNotFound, statusCode)
	_, statusCode = httpGet(t, ts.URL+"/treasure/locks/"+deployer.String()+"/0x01")
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func changeFeeRecipient(t *testing.T) {
	receipt := postReceipt(t, "/treasure/fee-recipient", utils.M{"caller": deployer, "recipient": feeTaker})
	assert.True(t, receipt.Reverted)
	assert.Equal(t, ownable.ReasonNotOwner, receipt.RevertReason)

	receipt = postReceipt(t, "/treasure/fee-recipient", utils.M{"caller": chain.Genesis().Owner, "recipient": thor.Address{}})
	assert.Equal(t, treasure.ReasonZeroRecipient, receipt.RevertReason)

	receipt = postReceipt(t, "/treasure/fee-recipient", utils.M{"caller": chain.Genesis().Owner, "recipient": feeTaker})
	require.False(t, receipt.Reverted, receipt.RevertReason)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, treasure.EventFeeRecipientChanged, receipt.Events[0].Name)

	res, _ := httpGet(t, ts.URL+"/treasure")
	var tr JSONTreasure
	require.NoError(t, json.Unmarshal(res, &tr))
	assert.Equal(t, feeTaker, tr.FeeRecipient)
}

func unlockEarly(t *testing.T) {
	receipt := postReceipt(t, "/treasure/unlock", utils.M{"caller": deployer, "depositor": pool})
	assert.True(t, receipt.Reverted)
	assert.Equal(t, treasure.ReasonNotFinished, receipt.RevertReason)

	receipt = postReceipt(t, "/treasure/unlock", utils.M{"caller": feeTaker, "depositor": pool})
	assert.Equal(t, treasure.ReasonNotContributed, receipt.RevertReason)

	_, statusCode := httpPost(t, ts.URL+"/treasure/unlock", utils.M{"depositor": pool})
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func unlock(t *testing.T) {
	wsd := chain.Token("WSD")
	balances := func() (payout, fee *big.Int) {
		require.NoError(t, chain.Runtime().View(func(st *state.State, _ uint64) (err error) {
			tok := token.New(wsd, st)
			if payout, err = tok.BalanceOf(deployer); err != nil {
				return err
			}
			fee, err = tok.BalanceOf(feeTaker)
			return err
		}))
		return
	}
	payoutBefore, feeBefore := balances()

	chain.AddTime(thor.Day + thor.MinLockDuration)
	receipt := postReceipt(t, "/treasure/unlock", utils.M{"caller": deployer, "depositor": pool})
	require.False(t, receipt.Reverted, receipt.RevertReason)

	var names []string
	for _, ev := range receipt.Events {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, treasure.EventFundsUnlocked)

	payoutAfter, feeAfter := balances()
	e18 := big.NewInt(1e18)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(950), e18), new(big.Int).Sub(payoutAfter, payoutBefore))
	assert.Equal(t, new(big.Int).Mul(big.NewInt(50), e18), new(big.Int).Sub(feeAfter, feeBefore))

	// distributed locks are gone
	_, statusCode := httpGet(t, ts.URL+"/treasure/locks/"+deployer.String()+"/"+pool.String())
	assert.Equal(t, http.StatusNotFound, statusCode)

	res, _ := httpGet(t, ts.URL+"/treasure")
	var tr JSONTreasure
	require.NoError(t, json.Unmarshal(res, &tr))
	assert.Equal(t, "0", tr.TotalLocked.Amount)

	receipt = postReceipt(t, "/treasure/unlock", utils.M{"caller": deployer, "depositor": pool})
	assert.Equal(t, treasure.ReasonDistributed, receipt.RevertReason)
}

func initTreasureServer(t *testing.T) {
	var err error
	chain, err = testchain.NewDefault()
	require.NoError(t, err)

	reward := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18))
	pool, err = chain.DeployPool(deployer, chain.Token("RWD"), chain.Addresses().Pairs[0], reward)
	require.NoError(t, err)

	router := mux.NewRouter()
	New(chain.Runtime(), chain.Addresses().Treasure, token.StateResolver{}, true).Mount(router, "/treasure")
	ts = httptest.NewServer(router)
}

func postReceipt(t *testing.T, path string, body any) *utils.Receipt {
	res, statusCode := httpPost(t, ts.URL+path, body)
	require.Equal(t, http.StatusOK, statusCode, string(res))
	var receipt utils.Receipt
	require.NoError(t, json.Unmarshal(res, &receipt))
	return &receipt
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
