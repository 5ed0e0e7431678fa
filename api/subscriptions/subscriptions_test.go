// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteswap/farming/genesis"
	"github.com/whiteswap/farming/runtime"
	"github.com/whiteswap/farming/test/datagen"
	"github.com/whiteswap/farming/test/testchain"
	"github.com/whiteswap/farming/thor"
	"github.com/whiteswap/farming/token"
	"github.com/whiteswap/farming/xenv"
)

// notifySource reports every new subscriber.
type notifySource struct {
	Source
	subscribed chan struct{}
}

func (n *notifySource) Subscribe() (<-chan *runtime.Receipt, func()) {
	ch, release := n.Source.Subscribe()
	n.subscribed <- struct{}{}
	return ch, release
}

type fixture struct {
	chain  *testchain.Chain
	source *notifySource
	subs   *Subscriptions
	ts     *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	chain, err := testchain.NewDefault()
	require.NoError(t, err)

	source := &notifySource{Source: chain.Runtime(), subscribed: make(chan struct{}, 8)}
	subs := New(source, []string{"http://allowed.example"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	return &fixture{chain, source, subs, httptest.NewServer(router)}
}

func (f *fixture) close() {
	f.subs.Close()
	f.ts.Close()
	f.chain.Close()
}

func (f *fixture) dial(t *testing.T, query string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/subscriptions/event?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)

	select {
	case <-f.source.subscribed:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription not registered")
	}
	return conn
}

func (f *fixture) transfer(caller, tokenAddr, to thor.Address, amount int64) {
	f.chain.MustExecute(caller, "transfer", func(env *xenv.Environment) error {
		tok, err := token.StateResolver{}.Resolve(env.State(), tokenAddr)
		if err != nil {
			return err
		}
		return token.SafeTransfer(env, tok, to, big.NewInt(amount))
	})
}

func readEvent(t *testing.T, conn *websocket.Conn) *EventMessage {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	conn := f.dial(t, "")
	defer conn.Close()

	var (
		caller = genesis.DevAccounts()[1].Address
		to     = datagen.RandAddress()
		wsd    = f.chain.Token("WSD")
	)
	f.transfer(caller, wsd, to, 42)

	msg := readEvent(t, conn)
	assert.Equal(t, wsd, msg.Address)
	assert.Equal(t, token.EventTransfer, msg.Name)
	assert.Equal(t, []thor.Address{caller, to}, msg.Topics)
	assert.Equal(t, "42", msg.Amount)
	assert.Equal(t, f.chain.Runtime().Head().Number, msg.Meta.BlockNumber)
	assert.Equal(t, f.chain.Now(), msg.Meta.BlockTime)
	assert.Equal(t, caller, msg.Meta.Caller)
}

func TestSubscribeFiltered(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	rwd := f.chain.Token("RWD")
	conn := f.dial(t, "address="+rwd.String()+"&name=Transfer")
	defer conn.Close()

	caller := genesis.DevAccounts()[2].Address
	f.transfer(caller, f.chain.Token("WSD"), datagen.RandAddress(), 1)
	f.chain.MustExecute(caller, "approve", func(env *xenv.Environment) error {
		_, err := token.New(rwd, env.State()).Approve(env, datagen.RandAddress(), big.NewInt(1))
		return err
	})
	f.transfer(caller, rwd, datagen.RandAddress(), 2)

	msg := readEvent(t, conn)
	assert.Equal(t, rwd, msg.Address)
	assert.Equal(t, token.EventTransfer, msg.Name)
	assert.Equal(t, "2", msg.Amount)
}

func TestSubscriptionsClose(t *testing.T) {
	f := newFixture(t)
	defer f.ts.Close()
	defer f.chain.Close()

	conn := f.dial(t, "")
	defer conn.Close()

	f.subs.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "%v", err)
}

func TestSubscribeRejected(t *testing.T) {
	f := newFixture(t)
	defer f.close()

	base := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/subscriptions/event"

	_, resp, err := websocket.DefaultDialer.Dial(base+"?address=0xbad", nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base, http.Header{"Origin": {"http://denied.example"}})
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base, http.Header{"Origin": {"http://allowed.example"}})
	require.NoError(t, err)
	conn.Close()
}

func TestEventFilter(t *testing.T) {
	addr := datagen.RandAddress()
	ev := &xenv.Event{Address: addr, Name: "Transfer"}

	assert.True(t, (&EventFilter{}).match(ev))
	assert.True(t, (&EventFilter{Address: &addr, Name: "Transfer"}).match(ev))
	assert.False(t, (&EventFilter{Name: "Approval"}).match(ev))
	other := datagen.RandAddress()
	assert.False(t, (&EventFilter{Address: &other}).match(ev))
}
