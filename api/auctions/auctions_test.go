// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/auctions"
	"github.com/meterio/meter-auction/ledger"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisTime = uint64(1700000000)

var (
	seller     = meter.BytesToAddress([]byte("seller"))
	alice      = meter.BytesToAddress([]byte("alice"))
	collection = meter.BytesToAddress([]byte("collection"))
)

type testServer struct {
	*httptest.Server
	bank *ledger.Bank
	reg  *ledger.Registry
	now  uint64
}

func newTestServer(t *testing.T) *testServer {
	st, err := state.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ts := &testServer{
		bank: ledger.NewBank(meter.AuctionModuleAddr),
		reg:  ledger.NewRegistry(),
		now:  genesisTime,
	}
	engine := auction.NewAuction(st, ts.reg, ts.bank, auction.ClockFunc(func() uint64 { return ts.now }), nil)
	router := mux.NewRouter()
	auctions.New(engine, script.NewScriptEngine(engine), ts.bank).Mount(router, "/auctions")
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Close)

	require.NoError(t, ts.reg.Mint(meter.AssetRef{Contract: collection, TokenID: big.NewInt(7)}, seller))
	require.NoError(t, ts.bank.Deposit(alice, big.NewInt(5000)))
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, caller *meter.Address, body interface{}) (int, []byte) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, r)
	require.NoError(t, err)
	if caller != nil {
		req.Header.Set(auctions.CallerHeader, caller.String())
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func (ts *testServer) create(t *testing.T) uint64 {
	status, data := ts.do(t, http.MethodPost, "/auctions", &seller, map[string]interface{}{
		"type":            "english",
		"contract":        collection.String(),
		"tokenID":         "7",
		"startPrice":      "100",
		"endPrice":        "1000",
		"startTime":       ts.now,
		"endTime":         ts.now + 3600,
		"minBidIncrement": "10",
	})
	require.Equal(t, http.StatusOK, status, string(data))
	var res auctions.CreateResult
	require.NoError(t, json.Unmarshal(data, &res))
	return res.ID
}

func path(id uint64, suffix string) string {
	return "/auctions/" + strconv.FormatUint(id, 10) + suffix
}

func decodeAuction(t *testing.T, data []byte) *auctions.Auction {
	var a auctions.Auction
	require.NoError(t, json.Unmarshal(data, &a), string(data))
	return &a
}

func TestEnglishFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)

	status, data := ts.do(t, http.MethodPost, path(id, "/start"), &seller, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, "ACTIVE", decodeAuction(t, data).Status)

	status, data = ts.do(t, http.MethodPost, path(id, "/bid"), &alice, map[string]string{"amount": "150"})
	require.Equal(t, http.StatusOK, status, string(data))
	a := decodeAuction(t, data)
	assert.Equal(t, uint32(1), a.BidCount)
	assert.Equal(t, "150", (*big.Int)(a.HighestBid).String())
	assert.Equal(t, "4850", ts.bank.BalanceOf(alice).String())

	status, data = ts.do(t, http.MethodGet, path(id, "/price"), nil, nil)
	require.Equal(t, http.StatusOK, status)
	var price auctions.Price
	require.NoError(t, json.Unmarshal(data, &price))
	assert.Equal(t, "150", (*big.Int)(price.Price).String())
	assert.Equal(t, "160", (*big.Int)(price.MinimumBid).String())

	status, data = ts.do(t, http.MethodGet, path(id, "/escrow/"+alice.String()), nil, nil)
	require.Equal(t, http.StatusOK, status)
	var esc auctions.Escrow
	require.NoError(t, json.Unmarshal(data, &esc))
	assert.Equal(t, "150", (*big.Int)(esc.Amount).String())

	status, data = ts.do(t, http.MethodGet, path(id, "/bids"), nil, nil)
	require.Equal(t, http.StatusOK, status)
	var bids []*auctions.Bid
	require.NoError(t, json.Unmarshal(data, &bids))
	require.Len(t, bids, 1)
	assert.Equal(t, alice, bids[0].Bidder)

	ts.now += 3601
	status, data = ts.do(t, http.MethodPost, path(id, "/settle"), &alice, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, "ENDED", decodeAuction(t, data).Status)

	owner, ok := ts.reg.OwnerOf(meter.AssetRef{Contract: collection, TokenID: big.NewInt(7)})
	require.True(t, ok)
	assert.Equal(t, alice, owner)
	assert.Equal(t, "150", ts.bank.BalanceOf(seller).String())
}

func TestErrorStatus(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)

	status, _ := ts.do(t, http.MethodGet, path(99, ""), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodPost, path(id, "/start"), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, data := ts.do(t, http.MethodPost, path(id, "/start"), &alice, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(data), "Unauthorized")

	status, data = ts.do(t, http.MethodPost, path(id, "/bid"), &alice, map[string]string{"amount": "150"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, string(data), "InvalidState")
	assert.Equal(t, "5000", ts.bank.BalanceOf(alice).String(), "rejected bid is refunded")

	ts.do(t, http.MethodPost, path(id, "/start"), &seller, nil)
	status, data = ts.do(t, http.MethodPost, path(id, "/bid"), &alice, map[string]string{"amount": "50"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(data), "BidTooLow")
	assert.Equal(t, "5000", ts.bank.BalanceOf(alice).String())

	status, _ = ts.do(t, http.MethodPost, path(id, "/bid"), &alice, map[string]string{"amount": "999999"})
	assert.Equal(t, http.StatusBadRequest, status, "wallet cannot cover the bid")

	status, _ = ts.do(t, http.MethodPost, path(id, "/withdraw"), &alice, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/auctions", &seller, map[string]interface{}{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExec(t *testing.T) {
	ts := newTestServer(t)
	id := ts.create(t)
	ts.do(t, http.MethodPost, path(id, "/start"), &seller, nil)

	data, err := script.EncodeScriptData(&auction.AuctionBody{
		Opcode:    meter.OP_BID,
		AuctionID: id,
		Amount:    big.NewInt(200),
	})
	require.NoError(t, err)

	status, body := ts.do(t, http.MethodPost, "/auctions/exec", &alice, &auctions.ExecRequest{Data: hexutil.Encode(data)})
	require.Equal(t, http.StatusOK, status, string(body))
	var res auctions.ExecResult
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Events, 1)
	assert.Equal(t, "BidPlaced", res.Events[0].Type)
	assert.Equal(t, "4800", ts.bank.BalanceOf(alice).String())

	status, _ = ts.do(t, http.MethodPost, "/auctions/exec", &alice, &auctions.ExecRequest{Data: "0x01020304"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "4800", ts.bank.BalanceOf(alice).String())
}
