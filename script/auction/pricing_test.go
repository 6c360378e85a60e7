// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"math/big"
	"testing"

	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/stretchr/testify/assert"
)

func dutchRecord(start, end int64, duration, interval uint64) *meter.Auction {
	return &meter.Auction{
		Type:              meter.DUTCH,
		Status:            meter.ACTIVE,
		StartPrice:        big.NewInt(start),
		EndPrice:          big.NewInt(end),
		StartTime:         genesisTime,
		EndTime:           genesisTime + duration,
		PriceDropInterval: interval,
		HighestBid:        new(big.Int),
		MinBidIncrement:   new(big.Int),
	}
}

func TestDutchPriceSteps(t *testing.T) {
	a := dutchRecord(1000, 100, 900, 100)
	tests := []struct {
		elapsed int64
		price   int64
	}{
		{-1, 1000},
		{0, 1000},
		{99, 1000},
		{100, 900},
		{250, 800},
		{899, 200},
		{900, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		now := uint64(int64(genesisTime) + tt.elapsed)
		assertAmount(t, tt.price, auction.CurrentPrice(a, now), "elapsed %d", tt.elapsed)
	}
}

func TestDutchPriceResidualGap(t *testing.T) {
	// (10-0)/3 leaves a gap that is only closed by the end price
	a := dutchRecord(10, 0, 900, 300)
	assertAmount(t, 4, auction.CurrentPrice(a, genesisTime+899))
	assertAmount(t, 0, auction.CurrentPrice(a, genesisTime+900))
}

func TestDutchIntervalLongerThanWindow(t *testing.T) {
	a := dutchRecord(1000, 100, 900, 1000)
	assertAmount(t, 100, auction.CurrentPrice(a, genesisTime+1))
}

func TestDutchPriceMonotonic(t *testing.T) {
	a := dutchRecord(997, 13, 3600, 7)
	prev := auction.CurrentPrice(a, genesisTime-10)
	for now := genesisTime - 10; now <= a.EndTime+10; now++ {
		p := auction.CurrentPrice(a, now)
		assert.True(t, p.Cmp(prev) <= 0, "price rose at %d", now)
		assert.True(t, p.Cmp(a.EndPrice) >= 0 && p.Cmp(a.StartPrice) <= 0, "price %v out of range at %d", p, now)
		prev = p
	}
}

func TestEnglishPrice(t *testing.T) {
	a := &meter.Auction{
		Type:            meter.ENGLISH,
		Status:          meter.ACTIVE,
		StartPrice:      big.NewInt(100),
		EndPrice:        big.NewInt(1000),
		StartTime:       genesisTime,
		EndTime:         genesisTime + 3600,
		HighestBid:      new(big.Int),
		MinBidIncrement: big.NewInt(10),
	}
	assertAmount(t, 100, auction.CurrentPrice(a, genesisTime+10))
	assertAmount(t, 100, auction.MinimumBid(a, genesisTime+10))

	a.HighestBid = big.NewInt(150)
	for now := genesisTime; now < a.EndTime; now += 60 {
		assertAmount(t, 160, auction.CurrentPrice(a, now))
	}
	assertAmount(t, 1000, auction.CurrentPrice(a, a.EndTime))
	assertAmount(t, 160, auction.MinimumBid(a, a.EndTime))
}

func TestPriceWhenNotActive(t *testing.T) {
	a := dutchRecord(1000, 100, 900, 100)
	a.Status = meter.NOT_STARTED
	assertAmount(t, 1000, auction.CurrentPrice(a, genesisTime-1))
	assertAmount(t, 100, auction.CurrentPrice(a, genesisTime+10))
	a.Status = meter.ENDED
	assertAmount(t, 100, auction.CurrentPrice(a, genesisTime+10))
}

func TestCurrentPriceReturnsFreshValue(t *testing.T) {
	a := dutchRecord(1000, 100, 900, 100)
	p := auction.CurrentPrice(a, genesisTime)
	p.SetInt64(1)
	assertAmount(t, 1000, a.StartPrice)
}
