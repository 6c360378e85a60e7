// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/meterio/meter-auction/ledger"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisTime = uint64(1700000000)

var (
	ctx        = context.Background()
	seller     = meter.BytesToAddress([]byte("seller"))
	alice      = meter.BytesToAddress([]byte("alice"))
	bob        = meter.BytesToAddress([]byte("bob"))
	collection = meter.BytesToAddress([]byte("collection"))
	engineAddr = meter.AuctionModuleAddr
)

type fixture struct {
	t      *testing.T
	engine *auction.Auction
	reg    *ledger.Registry
	bank   *ledger.Bank
	now    uint64
	events []*meter.AuctionEvent
}

func (f *fixture) Emit(ev *meter.AuctionEvent) {
	f.events = append(f.events, ev)
}

func newFixture(t *testing.T) *fixture {
	st, err := state.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := &fixture{
		t:    t,
		reg:  ledger.NewRegistry(),
		bank: ledger.NewBank(engineAddr),
		now:  genesisTime,
	}
	f.engine = auction.NewAuction(st, f.reg, f.bank, auction.ClockFunc(func() uint64 { return f.now }), f)
	for _, addr := range []meter.Address{alice, bob} {
		require.NoError(t, f.bank.Deposit(addr, big.NewInt(100000)))
	}
	return f
}

func token(id int64) meter.AssetRef {
	return meter.AssetRef{Contract: collection, TokenID: big.NewInt(id)}
}

// mint gives a fresh asset to seller.
func (f *fixture) mint(id int64) meter.AssetRef {
	ref := token(id)
	require.NoError(f.t, f.reg.Mint(ref, seller))
	return ref
}

func englishParams(ref meter.AssetRef, start uint64) *auction.CreateParams {
	return &auction.CreateParams{
		Asset:           ref,
		Type:            meter.ENGLISH,
		StartPrice:      big.NewInt(100),
		EndPrice:        big.NewInt(1000),
		StartTime:       start,
		EndTime:         start + 3600,
		MinBidIncrement: big.NewInt(10),
	}
}

func dutchParams(ref meter.AssetRef, start uint64) *auction.CreateParams {
	return &auction.CreateParams{
		Asset:             ref,
		Type:              meter.DUTCH,
		StartPrice:        big.NewInt(1000),
		EndPrice:          big.NewInt(100),
		StartTime:         start,
		EndTime:           start + 900,
		PriceDropInterval: 100,
	}
}

// started creates and starts an auction from p.
func (f *fixture) started(p *auction.CreateParams) uint64 {
	id, err := f.engine.Create(ctx, seller, p)
	require.NoError(f.t, err)
	require.NoError(f.t, f.engine.Start(ctx, id, seller))
	return id
}

// bid charges the bidder like a wallet would, and refunds on rejection.
func (f *fixture) bid(id uint64, who meter.Address, amount int64) error {
	v := big.NewInt(amount)
	require.NoError(f.t, f.bank.Charge(who, v))
	err := f.engine.PlaceBid(ctx, id, who, v)
	if err != nil {
		require.NoError(f.t, f.bank.SendValue(who, v))
	}
	return err
}

func (f *fixture) buy(id uint64, who meter.Address, amount int64) error {
	v := big.NewInt(amount)
	require.NoError(f.t, f.bank.Charge(who, v))
	err := f.engine.BuyNow(ctx, id, who, v)
	if err != nil {
		require.NoError(f.t, f.bank.SendValue(who, v))
	}
	return err
}

func (f *fixture) get(id uint64) *meter.Auction {
	rec, ok, err := f.engine.GetAuction(id)
	require.NoError(f.t, err)
	require.True(f.t, ok)
	return rec
}

func (f *fixture) owner(ref meter.AssetRef) meter.Address {
	o, ok := f.reg.OwnerOf(ref)
	require.True(f.t, ok)
	return o
}

func (f *fixture) escrow(id uint64, who meter.Address) *big.Int {
	v, err := f.engine.Escrow(id, who)
	require.NoError(f.t, err)
	return v
}

func (f *fixture) eventTypes() []meter.EventType {
	types := make([]meter.EventType, 0, len(f.events))
	for _, ev := range f.events {
		types = append(types, ev.Type)
	}
	return types
}

func assertAmount(t *testing.T, expected int64, actual *big.Int, msgAndArgs ...interface{}) bool {
	t.Helper()
	if !assert.NotNil(t, actual, msgAndArgs...) {
		return false
	}
	return assert.Equal(t, big.NewInt(expected).String(), actual.String(), msgAndArgs...)
}
