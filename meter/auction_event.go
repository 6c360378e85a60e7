// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"fmt"
	"math/big"
)

type EventType uint8

const (
	AuctionCreated EventType = iota + 1
	AuctionStarted
	BidPlaced
	AuctionExtended
	AuctionSettled
	AuctionCancelled
	Withdrawal
)

func (t EventType) String() string {
	switch t {
	case AuctionCreated:
		return "AuctionCreated"
	case AuctionStarted:
		return "AuctionStarted"
	case BidPlaced:
		return "BidPlaced"
	case AuctionExtended:
		return "AuctionExtended"
	case AuctionSettled:
		return "AuctionSettled"
	case AuctionCancelled:
		return "AuctionCancelled"
	case Withdrawal:
		return "Withdrawal"
	default:
		return "Unknown"
	}
}

// ParseEventType is the inverse of String.
func ParseEventType(s string) (EventType, bool) {
	for t := AuctionCreated; t <= Withdrawal; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// AuctionEvent is the notification emitted after an operation commits.
// Account is the party the event concerns: seller on create/start/cancel,
// bidder on bid, winner on settle, withdrawer on withdrawal. Settlements
// without a winner carry the seller.
type AuctionEvent struct {
	Type      EventType
	AuctionID uint64
	Account   Address
	Amount    *big.Int
	Timestamp uint64
	// EndTime is populated on BidPlaced and AuctionExtended.
	EndTime uint64
	Asset   AssetRef
}

func (e *AuctionEvent) ToString() string {
	amount := "0"
	if e.Amount != nil {
		amount = e.Amount.String()
	}
	return fmt.Sprintf("%v(auction=%v, account=%v, amount=%v, time=%v)", e.Type, e.AuctionID, e.Account, amount, e.Timestamp)
}

func (e *AuctionEvent) String() string {
	return e.ToString()
}

// ID identifies the event for external indexing.
func (e *AuctionEvent) ID() Bytes32 {
	amount := new(big.Int)
	if e.Amount != nil {
		amount = e.Amount
	}
	return Blake2b(
		[]byte{byte(e.Type)},
		new(big.Int).SetUint64(e.AuctionID).Bytes(),
		e.Account.Bytes(),
		amount.Bytes(),
		new(big.Int).SetUint64(e.Timestamp).Bytes(),
	)
}
