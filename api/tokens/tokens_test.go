// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/api/utils"
	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/test/testchain"
	"github.com/whiteswap/farming/token"
)

var (
	ts    *httptest.Server
	chain *testchain.Chain
	dev   = genesis.DevAccounts()
)

func TestTokens(t *testing.T) {
	var err error
	chain, err = testchain.NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	router := mux.NewRouter()
	New(chain.Runtime(), token.StateResolver{}, true).Mount(router, "/tokens")
	ts = httptest.NewServer(router)
	defer ts.Close()

	for _, tt := range []struct {
		name string
		test func(*testing.T)
	}{
		{"getToken", getToken},
		{"getVoidToken", getVoidToken},
		{"getTokenNotFound", getTokenNotFound},
		{"transfer", transfer},
		{"transferWithCommission", transferWithCommission},
		{"transferExceedsBalance", transferExceedsBalance},
		{"approve", approve},
		{"badRequests", badRequests},
	} {
		t.Run(tt.name, tt.test)
	}
}

func getToken(t *testing.T) {
	res, statusCode := httpGet(t, ts.URL+"/tokens/"+chain.Token("WSD").String())
	require.Equal(t, http.StatusOK, statusCode)

	var tok JSONToken
	require.NoError(t, json.Unmarshal(res, &tok))
	assert.Equal(t, chain.Token("WSD"), tok.Address)
	assert.Equal(t, "Whiteswap", tok.Name)
	assert.Equal(t, "WSD", tok.Symbol)
	assert.Equal(t, uint8(18), tok.Decimals)
	assert.Equal(t, "standard", tok.Kind)
	assert.Equal(t, chain.Genesis().Owner, tok.Minter)
	assert.Equal(t, "5000000", tok.TotalSupply.Display)
}

func getVoidToken(t *testing.T) {
	res, statusCode := httpGet(t, ts.URL+"/tokens/"+chain.Token("VOID").String())
	require.Equal(t, http.StatusOK, statusCode)

	var tok JSONToken
	require.NoError(t, json.Unmarshal(res, &tok))
	assert.Equal(t, "void", tok.Kind)
	assert.Equal(t, uint8(6), tok.Decimals)
}

func getTokenNotFound(t *testing.T) {
	_, statusCode := httpGet(t, ts.URL+"/tokens/"+datagen.RandAddress().String())
	assert.Equal(t, http.StatusNotFound, statusCode)
	_, statusCode = httpGet(t, ts.URL+"/tokens/"+datagen.RandAddress().String()+"/balances/"+dev[0].Address.String())
	assert.Equal(t, http.StatusNotFound, statusCode)
}

func transfer(t *testing.T) {
	to := datagen.RandAddress()
	receipt := postReceipt(t, "/tokens/"+chain.Token("VOID").String()+"/transfer",
		utils.M{"caller": dev[1].Address, "to": to, "amount": "1500000"})
	require.False(t, receipt.Reverted, receipt.RevertReason)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, token.EventTransfer, receipt.Events[0].Name)
	assert.Equal(t, "1500000", receipt.Events[0].Amount)

	res, statusCode := httpGet(t, ts.URL+"/tokens/"+chain.Token("VOID").String()+"/balances/"+to.String())
	require.Equal(t, http.StatusOK, statusCode)
	var bal JSONBalance
	require.NoError(t, json.Unmarshal(res, &bal))
	assert.Equal(t, to, bal.Account)
	assert.Equal(t, "1.5", bal.Balance.Display)
	assert.Nil(t, bal.Spender)
	assert.Nil(t, bal.Allowance)
}

func transferWithCommission(t *testing.T) {
	to := datagen.RandAddress()
	receipt := postReceipt(t, "/tokens/"+chain.Token("TAX").String()+"/transfer",
		utils.M{"caller": dev[1].Address, "to": to, "amount": "1000"})
	require.False(t, receipt.Reverted, receipt.RevertReason)

	res, _ := httpGet(t, ts.URL+"/tokens/"+chain.Token("TAX").String()+"/balances/"+to.String())
	var bal JSONBalance
	require.NoError(t, json.Unmarshal(res, &bal))
	assert.Equal(t, "900", bal.Balance.Amount)
}

func transferExceedsBalance(t *testing.T) {
	receipt := postReceipt(t, "/tokens/"+chain.Token("WSD").String()+"/transfer",
		utils.M{"caller": datagen.RandAddress(), "to": dev[0].Address, "amount": "1"})
	assert.True(t, receipt.Reverted)
	assert.Equal(t, token.ReasonExceedsBalance, receipt.RevertReason)
	assert.Empty(t, receipt.Events)
}

func approve(t *testing.T) {
	spender := datagen.RandAddress()
	receipt := postReceipt(t, "/tokens/"+chain.Token("RWD").String()+"/approve",
		utils.M{"caller": dev[2].Address, "spender": spender, "amount": "0x64"})
	require.False(t, receipt.Reverted, receipt.RevertReason)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, token.EventApproval, receipt.Events[0].Name)

	res, statusCode := httpGet(t, ts.URL+"/tokens/"+chain.Token("RWD").String()+"/balances/"+dev[2].Address.String()+"?spender="+spender.String())
	require.Equal(t, http.StatusOK, statusCode)
	var bal JSONBalance
	require.NoError(t, json.Unmarshal(res, &bal))
	require.NotNil(t, bal.Spender)
	assert.Equal(t, spender, *bal.Spender)
	assert.Equal(t, "100", bal.Allowance.Amount)
	assert.Equal(t, "1000000", bal.Balance.Display)
}

func badRequests(t *testing.T) {
	wsd := chain.Token("WSD").String()
	_, statusCode := httpGet(t, ts.URL+"/tokens/"+wsd+"/balances/"+dev[0].Address.String()+"?spender=0x1")
	assert.Equal(t, http.StatusBadRequest, statusCode)

	_, statusCode = httpPost(t, ts.URL+"/tokens/"+wsd+"/transfer", utils.M{"caller": dev[0].Address, "to": dev[1].Address, "amount": "-1"})
	assert.Equal(t, http.StatusBadRequest, statusCode)

	_, statusCode = httpPost(t, ts.URL+"/tokens/"+wsd+"/transfer", utils.M{"to": dev[1].Address, "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, statusCode)

	_, statusCode = httpPost(t, ts.URL+"/tokens/"+wsd+"/approve", utils.M{"caller": dev[0].Address, "unknown": true})
	assert.Equal(t, http.StatusBadRequest, statusCode)
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
