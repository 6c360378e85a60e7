// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
)

// Bid is one accepted bid in the history of an English auction.
type Bid struct {
	ID        Bytes32
	AuctionID uint64
	Bidder    Address
	Amount    *big.Int
	Timestamp uint64
	Seq       uint32
}

func (b *Bid) ToString() string {
	return fmt.Sprintf("Bid(auction=%v, bidder=%v, amount=%v, seq=%v, time=%v)",
		b.AuctionID, b.Bidder, b.Amount.String(), b.Seq, time.Unix(int64(b.Timestamp), 0).UTC())
}

func (b *Bid) hash() (hash Bytes32) {
	hw := NewBlake2b()
	err := rlp.Encode(hw, []interface{}{
		b.AuctionID,
		b.Bidder,
		b.Amount,
		b.Timestamp,
		b.Seq,
	})
	if err != nil {
		slog.Error("rlp encode failed", "err", err)
		return Bytes32{}
	}
	hw.Sum(hash[:0])
	return
}

func NewBid(auctionID uint64, bidder Address, amount *big.Int, ts uint64, seq uint32) *Bid {
	b := &Bid{
		AuctionID: auctionID,
		Bidder:    bidder,
		Amount:    new(big.Int).Set(amount),
		Timestamp: ts,
		Seq:       seq,
	}
	b.ID = b.hash()
	return b
}
