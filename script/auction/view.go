// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// GetAuction returns a copy of the record.
func (a *Auction) GetAuction(id uint64) (*meter.Auction, bool, error) {
	return a.state.GetAuction(id)
}

// Price is CurrentPrice at the engine clock.
func (a *Auction) Price(id uint64) (*big.Int, error) {
	rec, err := a.load(id)
	if err != nil {
		return nil, err
	}
	return CurrentPrice(rec, a.clock.Now()), nil
}

// MinimumBid is the lowest acceptable English bid at the engine clock.
func (a *Auction) MinimumBid(id uint64) (*big.Int, error) {
	rec, err := a.load(id)
	if err != nil {
		return nil, err
	}
	return MinimumBid(rec, a.clock.Now()), nil
}

func (a *Auction) Escrow(id uint64, account meter.Address) (*big.Int, error) {
	return a.state.GetEscrow(id, account)
}

func (a *Auction) Bids(id uint64) ([]*meter.Bid, error) {
	if _, err := a.load(id); err != nil {
		return nil, err
	}
	return a.state.GetBids(id)
}

// LastAuctionID is the highest id handed out, 0 before the first auction.
func (a *Auction) LastAuctionID() uint64 {
	return a.state.LastAuctionID()
}

func (a *Auction) Now() uint64 {
	return a.clock.Now()
}
