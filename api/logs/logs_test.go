// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/test/testchain"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

const logsLimit = 10

var (
	ts        *httptest.Server
	chain     *testchain.Chain
	sender    = genesis.DevAccounts()[1].Address
	recipient = datagen.RandAddress()
)

func TestLogs(t *testing.T) {
	initLogsServer(t)
	defer ts.Close()
	defer chain.Close()

	for _, tt := range []struct {
		name string
		test func(*testing.T)
	}{
		{"filterByPosition", filterByPosition},
		{"filterByAnyTopic", filterByAnyTopic},
		{"filterByAddressAndName", filterByAddressAndName},
		{"filterRange", filterRange},
		{"order", order},
		{"pagination", pagination},
		{"badRequests", badRequests},
	} {
		t.Run(tt.name, tt.test)
	}
}

func filterByPosition(t *testing.T) {
	events := filter(t, "topic1="+recipient.String())
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, token.EventTransfer, ev.Name)
		assert.Equal(t, []thor.Address{sender, recipient}, ev.Topics)
		assert.Equal(t, fmt.Sprint(i+1), ev.Amount)
		assert.Equal(t, sender, ev.Meta.Caller)
	}

	assert.Empty(t, filter(t, "topic0="+recipient.String()))
}

func filterByAnyTopic(t *testing.T) {
	assert.Len(t, filter(t, "topic="+recipient.String()), 3)
	assert.Len(t, filter(t, "topic="+recipient.String()+"&topic0="+sender.String()), 3)
	assert.Empty(t, filter(t, "topic="+recipient.String()+"&topic1="+sender.String()))
}

func filterByAddressAndName(t *testing.T) {
	rwd := chain.Token("RWD")
	assert.Len(t, filter(t, "address="+rwd.String()+"&topic1="+recipient.String()), 2)
	assert.Len(t, filter(t, "address="+chain.Token("WSD").String()+"&topic1="+recipient.String()), 1)
	assert.Len(t, filter(t, "name=Transfer&topic1="+recipient.String()), 3)
	assert.Empty(t, filter(t, "name=Approval&topic1="+recipient.String()))

	// genesis mints are logged at block zero
	minted := filter(t, "address="+rwd.String()+"&topic0="+thor.Address{}.String()+"&to=0")
	assert.Len(t, minted, len(genesis.DevAccounts()))
	for _, ev := range minted {
		assert.Equal(t, uint32(0), ev.Meta.BlockNumber)
		assert.Equal(t, genesis.Deployer, ev.Meta.Caller)
	}
}

func filterRange(t *testing.T) {
	all := filter(t, "topic1="+recipient.String())
	from := all[1].Meta.BlockNumber
	events := filter(t, fmt.Sprintf("topic1=%v&from=%v", recipient, from))
	require.Len(t, events, 2)
	assert.Equal(t, from, events[0].Meta.BlockNumber)

	events = filter(t, fmt.Sprintf("topic1=%v&from=%v&to=%v", recipient, from, from))
	assert.Len(t, events, 1)
}

func order(t *testing.T) {
	asc := filter(t, "topic1="+recipient.String()+"&order=asc")
	desc := filter(t, "topic1="+recipient.String()+"&order=desc")
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func pagination(t *testing.T) {
	events := filter(t, "topic1="+recipient.String()+"&offset=1&limit=1")
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].Amount)

	// the limit defaults to the maximum
	assert.Len(t, filter(t, "name=Transfer"), logsLimit)
}

func badRequests(t *testing.T) {
	allTopics := "topic=" + recipient.String()
	for i := range 4 {
		allTopics += fmt.Sprintf("&topic%v=%v", i, recipient)
	}

	for _, tt := range []struct {
		query  string
		status int
	}{
		{"address=0x1", http.StatusBadRequest},
		{"topic2=zz", http.StatusBadRequest},
		{"topic=0x", http.StatusBadRequest},
		{"from=2&to=1", http.StatusBadRequest},
		{"from=-1", http.StatusBadRequest},
		{"order=random", http.StatusBadRequest},
		{"offset=18446744073709551615", http.StatusBadRequest},
		{fmt.Sprintf("limit=%v", logsLimit+1), http.StatusForbidden},
		{allTopics, http.StatusBadRequest},
	} {
		_, statusCode := httpGet(t, ts.URL+"/logs/event?"+tt.query)
		assert.Equal(t, tt.status, statusCode, tt.query)
	}
}

func filter(t *testing.T, query string) []*FilteredEvent {
	res, statusCode := httpGet(t, ts.URL+"/logs/event?"+query)
	require.Equal(t, http.StatusOK, statusCode, string(res))
	var events []*FilteredEvent
	require.NoError(t, json.Unmarshal(res, &events))
	return events
}

func initLogsServer(t *testing.T) {
	var err error
	chain, err = testchain.NewDefault()
	require.NoError(t, err)

	for i, symbol := range []string{"RWD", "WSD", "RWD"} {
		addr := chain.Token(symbol)
		chain.MustExecute(sender, "transfer", func(env *xenv.Environment) error {
			tok, err := token.StateResolver{}.Resolve(env.State(), addr)
			if err != nil {
				return err
			}
			return token.SafeTransfer(env, tok, recipient, big.NewInt(int64(i+1)))
		})
		chain.AddTime(10)
	}

	router := mux.NewRouter()
	New(chain.LogDB(), logsLimit).Mount(router, "/logs")
	ts = httptest.NewServer(router)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}
