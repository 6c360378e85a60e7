// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// CurrentPrice is the price of the auction at time now. It has no side
// effects and is the only pricing rule in the engine.
//
// Dutch prices fall in equal steps, one per elapsed interval. Integer
// division may leave the last step above the end price; the end price is
// reached once the final interval is over.
func CurrentPrice(a *meter.Auction, now uint64) *big.Int {
	if now < a.StartTime {
		return new(big.Int).Set(a.StartPrice)
	}
	if now >= a.EndTime || a.Status != meter.ACTIVE {
		return new(big.Int).Set(a.EndPrice)
	}

	switch a.Type {
	case meter.ENGLISH:
		if a.HighestBid != nil && a.HighestBid.Sign() > 0 {
			return new(big.Int).Add(a.HighestBid, a.MinBidIncrement)
		}
		return new(big.Int).Set(a.StartPrice)

	case meter.DUTCH:
		if a.PriceDropInterval == 0 {
			return new(big.Int).Set(a.EndPrice)
		}
		drops := (now - a.StartTime) / a.PriceDropInterval
		totalDrops := (a.EndTime - a.StartTime) / a.PriceDropInterval
		if drops >= totalDrops {
			return new(big.Int).Set(a.EndPrice)
		}
		step := new(big.Int).Sub(a.StartPrice, a.EndPrice)
		step.Div(step, new(big.Int).SetUint64(totalDrops))
		step.Mul(step, new(big.Int).SetUint64(drops))
		return step.Sub(a.StartPrice, step)
	}
	return new(big.Int).Set(a.EndPrice)
}

// MinimumBid is the lowest amount an English bid must reach at time now.
func MinimumBid(a *meter.Auction, now uint64) *big.Int {
	if a.HighestBid == nil || a.HighestBid.Sign() == 0 {
		return CurrentPrice(a, now)
	}
	return new(big.Int).Add(a.HighestBid, a.MinBidIncrement)
}
