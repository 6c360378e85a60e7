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

func TestScenarioEnglish(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(englishParams(ref, genesisTime))

	require.NoError(t, f.bid(id, alice, 100))
	err := f.bid(id, bob, 105)
	assert.True(t, errors.Is(err, auction.ErrBidTooLow), "got %v", err)
	require.NoError(t, f.bid(id, bob, 110))

	f.now = f.get(id).EndTime
	assert.True(t, errors.Is(f.engine.Settle(ctx, id, alice), auction.ErrTooEarly))

	f.now++
	require.NoError(t, f.engine.Settle(ctx, id, alice))
	assert.Equal(t, bob, f.owner(ref))
	assertAmount(t, 110, f.bank.BalanceOf(seller))
	assertAmount(t, 100, f.escrow(id, alice))
	assert.Equal(t, meter.ENDED, f.get(id).Status)

	require.NoError(t, f.engine.Withdraw(ctx, id, alice))
	assertAmount(t, 0, f.escrow(id, alice))
	assertAmount(t, 100000, f.bank.BalanceOf(alice))
	assertAmount(t, 0, f.bank.BalanceOf(engineAddr))

	err = f.engine.Withdraw(ctx, id, alice)
	assert.True(t, errors.Is(err, auction.ErrNothingToWithdraw), "got %v", err)
	assert.True(t, errors.Is(f.engine.Settle(ctx, id, alice), auction.ErrInvalidState))
}

func TestSettleWithoutBids(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(englishParams(ref, genesisTime))

	f.now = f.get(id).EndTime + 1
	require.NoError(t, f.engine.Settle(ctx, id, bob))
	assert.Equal(t, seller, f.owner(ref))
	// status is ENDED while the published event is a cancellation
	assert.Equal(t, meter.ENDED, f.get(id).Status)
	assert.Equal(t, meter.AuctionCancelled, f.events[len(f.events)-1].Type)
	assertAmount(t, 0, f.bank.BalanceOf(seller))
}

func TestSettleRejectsDutch(t *testing.T) {
	f := newFixture(t)
	id := f.started(dutchParams(f.mint(1), genesisTime))
	f.now += 1000
	assert.True(t, errors.Is(f.engine.Settle(ctx, id, seller), auction.ErrInvalidState))
	assert.True(t, errors.Is(f.engine.Settle(ctx, 42, seller), auction.ErrNotFound))
}

func TestSettleSellerRejectsPayment(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(englishParams(ref, genesisTime))
	require.NoError(t, f.bid(id, alice, 100))
	f.now = f.get(id).EndTime + 1

	f.bank.OnReceive(seller, func(*big.Int) error { return errors.New("no thanks") })
	err := f.engine.Settle(ctx, id, bob)
	assert.True(t, errors.Is(err, auction.ErrValueTransferFailed), "got %v", err)
	assert.Equal(t, meter.ACTIVE, f.get(id).Status)
	assert.Equal(t, engineAddr, f.owner(ref))
	assertAmount(t, 100, f.bank.BalanceOf(engineAddr))

	f.bank.OnReceive(seller, nil)
	require.NoError(t, f.engine.Settle(ctx, id, bob))
	assert.Equal(t, alice, f.owner(ref))
}

func TestSettleWinnerRejectsAsset(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(englishParams(ref, genesisTime))
	require.NoError(t, f.bid(id, alice, 100))
	f.now = f.get(id).EndTime + 1

	f.reg.OnReceive(alice, func(meter.AssetRef, meter.Address) error { return errors.New("closed") })
	err := f.engine.Settle(ctx, id, bob)
	assert.True(t, errors.Is(err, auction.ErrCustodyTransferFailed), "got %v", err)
	assert.Equal(t, meter.ACTIVE, f.get(id).Status)
	assertAmount(t, 0, f.bank.BalanceOf(seller))
}

func TestSettleReentrancy(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(englishParams(ref, genesisTime))
	require.NoError(t, f.bid(id, alice, 100))
	require.NoError(t, f.bid(id, bob, 110))
	f.now = f.get(id).EndTime + 1

	var (
		seen      meter.AuctionStatus
		settleErr error
		cancelErr error
	)
	f.bank.OnReceive(seller, func(*big.Int) error {
		rec, _, _ := f.engine.GetAuction(id)
		seen = rec.Status
		settleErr = f.engine.Settle(ctx, id, seller)
		cancelErr = f.engine.Cancel(ctx, id, seller)
		return nil
	})
	require.NoError(t, f.engine.Settle(ctx, id, alice))

	assert.Equal(t, meter.ENDED, seen)
	assert.True(t, errors.Is(settleErr, auction.ErrOperationInProgress), "got %v", settleErr)
	assert.True(t, errors.Is(cancelErr, auction.ErrOperationInProgress), "got %v", cancelErr)
	assertAmount(t, 110, f.bank.BalanceOf(seller))
}

func TestWithdrawReentrancy(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))
	require.NoError(t, f.bid(id, alice, 100))
	require.NoError(t, f.bid(id, bob, 110))

	var (
		inner   error
		balance *big.Int
	)
	f.bank.OnReceive(alice, func(*big.Int) error {
		balance = f.escrow(id, alice)
		inner = f.engine.Withdraw(ctx, id, alice)
		return nil
	})
	require.NoError(t, f.engine.Withdraw(ctx, id, alice))

	assertAmount(t, 0, balance)
	assert.True(t, errors.Is(inner, auction.ErrOperationInProgress), "got %v", inner)
	assertAmount(t, 100000, f.bank.BalanceOf(alice))
	assert.Equal(t, meter.Withdrawal, f.events[len(f.events)-1].Type)
}

func TestWithdrawFailureRestoresBalance(t *testing.T) {
	f := newFixture(t)
	id := f.started(englishParams(f.mint(1), genesisTime))
	require.NoError(t, f.bid(id, alice, 100))
	require.NoError(t, f.bid(id, bob, 110))

	assert.True(t, errors.Is(f.engine.Withdraw(ctx, 42, alice), auction.ErrNotFound))
	assert.True(t, errors.Is(f.engine.Withdraw(ctx, id, bob), auction.ErrNothingToWithdraw))

	f.bank.OnReceive(alice, func(*big.Int) error { return errors.New("rejected") })
	err := f.engine.Withdraw(ctx, id, alice)
	assert.True(t, errors.Is(err, auction.ErrValueTransferFailed), "got %v", err)
	assertAmount(t, 100, f.escrow(id, alice))

	f.bank.OnReceive(alice, nil)
	require.NoError(t, f.engine.Withdraw(ctx, id, alice))
	assertAmount(t, 0, f.escrow(id, alice))
}

func TestScenarioDutch(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(dutchParams(ref, genesisTime))

	f.now = genesisTime + 250
	price, err := f.engine.Price(id)
	require.NoError(t, err)
	assertAmount(t, 800, price)

	err = f.buy(id, alice, 799)
	assert.True(t, errors.Is(err, auction.ErrInsufficientFunds), "got %v", err)

	require.NoError(t, f.buy(id, alice, 800))
	assert.Equal(t, alice, f.owner(ref))
	assertAmount(t, 800, f.bank.BalanceOf(seller))
	assertAmount(t, 100000-800, f.bank.BalanceOf(alice))

	rec := f.get(id)
	assert.Equal(t, meter.ENDED, rec.Status)
	require.NotNil(t, rec.HighestBidder)
	assert.Equal(t, alice, *rec.HighestBidder)
	assertAmount(t, 800, rec.HighestBid)

	// only the first buyer wins
	err = f.buy(id, bob, 1000)
	assert.True(t, errors.Is(err, auction.ErrInvalidState), "got %v", err)
	assertAmount(t, 100000, f.bank.BalanceOf(bob))
}

func TestBuyNowRefundsExcess(t *testing.T) {
	f := newFixture(t)
	id := f.started(dutchParams(f.mint(1), genesisTime))
	f.now = genesisTime + 100

	require.NoError(t, f.buy(id, alice, 1000))
	assertAmount(t, 900, f.bank.BalanceOf(seller))
	assertAmount(t, 100000-900, f.bank.BalanceOf(alice))
	assertAmount(t, 0, f.escrow(id, alice))
}

func TestBuyNowRejectedRefundGoesToEscrow(t *testing.T) {
	f := newFixture(t)
	id := f.started(dutchParams(f.mint(1), genesisTime))
	f.now = genesisTime + 100

	require.NoError(t, f.bank.Charge(alice, big.NewInt(1000)))
	f.bank.OnReceive(alice, func(*big.Int) error { return errors.New("no refunds") })
	require.NoError(t, f.engine.BuyNow(ctx, id, alice, big.NewInt(1000)))
	assertAmount(t, 100, f.escrow(id, alice))
	assert.Equal(t, meter.ENDED, f.get(id).Status)

	f.bank.OnReceive(alice, nil)
	require.NoError(t, f.engine.Withdraw(ctx, id, alice))
	assertAmount(t, 100000-900, f.bank.BalanceOf(alice))
}

func TestBuyNowSellerRejectsPayment(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)
	id := f.started(dutchParams(ref, genesisTime))
	f.now = genesisTime + 100

	f.bank.OnReceive(seller, func(*big.Int) error { return errors.New("no") })
	err := f.buy(id, alice, 900)
	assert.True(t, errors.Is(err, auction.ErrValueTransferFailed), "got %v", err)

	rec := f.get(id)
	assert.Equal(t, meter.ACTIVE, rec.Status)
	assert.Nil(t, rec.HighestBidder)
	assert.Equal(t, engineAddr, f.owner(ref))
	bids, err := f.engine.Bids(id)
	require.NoError(t, err)
	assert.Empty(t, bids)
	assertAmount(t, 100000, f.bank.BalanceOf(alice))
}

func TestBuyNowWindow(t *testing.T) {
	f := newFixture(t)
	english := f.started(englishParams(f.mint(1), genesisTime))
	dutch := f.started(dutchParams(f.mint(2), genesisTime))

	assert.True(t, errors.Is(f.buy(english, alice, 1000), auction.ErrInvalidState))
	f.now = f.get(dutch).EndTime + 1
	assert.True(t, errors.Is(f.buy(dutch, alice, 1000), auction.ErrTooLate))

	// an unsold dutch auction can still be taken back by its seller
	require.NoError(t, f.engine.Cancel(ctx, dutch, seller))
}
