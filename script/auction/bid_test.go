// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidPreconditions(t *testing.T) {
	f := newFixture(t)
	notStarted, err := f.engine.Create(ctx, seller, englishParams(f.mint(1), genesisTime))
	require.NoError(t, err)
	dutch := f.started(dutchParams(f.mint(2), genesisTime))
	english := f.started(englishParams(f.mint(3), genesisTime))

	assert.True(t, errors.Is(f.bid(42, alice, 100), auction.ErrNotFound))
	assert.True(t, errors.Is(f.bid(notStarted, alice, 100), auction.ErrInvalidState))
	assert.True(t, errors.Is(f.bid(dutch, alice, 1000), auction.ErrInvalidState))
	assert.True(t, errors.Is(f.engine.PlaceBid(ctx, english, alice, nil), auction.ErrInvalidParameters))

	f.now = f.get(english).EndTime + 1
	assert.True(t, errors.Is(f.bid(english, alice, 100), auction.ErrTooLate))
	assertAmount(t, 100000, f.bank.BalanceOf(alice))
}

func TestBidMinimumAndEscrow(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))

	err := f.bid(id, alice, 99)
	assert.True(t, errors.Is(err, auction.ErrBidTooLow), "got %v", err)

	require.NoError(t, f.bid(id, alice, 100))
	minBid, err := f.engine.MinimumBid(id)
	require.NoError(t, err)
	assertAmount(t, 110, minBid)

	require.NoError(t, f.bid(id, bob, 110))
	require.NoError(t, f.bid(id, alice, 120))
	require.NoError(t, f.bid(id, bob, 130))

	// every outbid amount accumulates in the escrow of its bidder
	assertAmount(t, 220, f.escrow(id, alice))
	assertAmount(t, 110, f.escrow(id, bob))

	rec := f.get(id)
	require.NotNil(t, rec.HighestBidder)
	assert.Equal(t, bob, *rec.HighestBidder)
	assertAmount(t, 130, rec.HighestBid)
	assert.Equal(t, uint32(4), rec.BidCount)

	bids, err := f.engine.Bids(id)
	require.NoError(t, err)
	require.Len(t, bids, 4)
	for i, b := range bids {
		assert.Equal(t, uint32(i+1), b.Seq)
	}
	assert.Equal(t, alice, bids[0].Bidder)
	assertAmount(t, 130, bids[3].Amount)
}

func TestBidAntiSnipe(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))
	end := f.get(id).EndTime

	// exactly one window left: no extension
	f.now = end - 900
	require.NoError(t, f.bid(id, alice, 100))
	assert.Equal(t, end, f.get(id).EndTime)

	f.now = end - 60
	require.NoError(t, f.bid(id, bob, 110))
	rec := f.get(id)
	assert.Equal(t, f.now+900, rec.EndTime)
	assert.Equal(t, uint32(1), rec.Extensions)

	last := f.events[len(f.events)-1]
	assert.Equal(t, meter.AuctionExtended, last.Type)
	assert.Equal(t, rec.EndTime, last.EndTime)
}

func TestBidExtensionsAreUnbounded(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))
	require.NoError(t, f.bid(id, alice, 100))

	amount := int64(100)
	for i := 0; i < 20; i++ {
		f.now = f.get(id).EndTime
		amount += 10
		who := bob
		if i%2 == 1 {
			who = alice
		}
		require.NoError(t, f.bid(id, who, amount))
	}
	rec := f.get(id)
	assert.Equal(t, uint32(20), rec.Extensions)
	assert.Equal(t, f.now+900, rec.EndTime)
}

func TestBidEventCarriesDetails(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))
	f.now += 5
	require.NoError(t, f.bid(id, alice, 150))

	ev := f.events[len(f.events)-1]
	assert.Equal(t, meter.BidPlaced, ev.Type)
	assert.Equal(t, id, ev.AuctionID)
	assert.Equal(t, alice, ev.Account)
	assertAmount(t, 150, ev.Amount)
	assert.Equal(t, f.now, ev.Timestamp)
}

func TestBidDoesNotMoveValue(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))
	before := f.bank.BalanceOf(engineAddr)
	require.NoError(t, f.engine.PlaceBid(ctx, id, alice, big.NewInt(100)))
	assert.Equal(t, before.String(), f.bank.BalanceOf(engineAddr).String())
}
