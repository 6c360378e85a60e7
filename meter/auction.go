// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"fmt"
	"math/big"
	"strings"
)

type AuctionType uint8

const (
	ENGLISH AuctionType = iota
	DUTCH
)

func (t AuctionType) String() string {
	switch t {
	case ENGLISH:
		return "ENGLISH"
	case DUTCH:
		return "DUTCH"
	default:
		return "UNKNOWN"
	}
}

// ParseAuctionType accepts the names returned by String, case insensitive.
func ParseAuctionType(s string) (AuctionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENGLISH":
		return ENGLISH, nil
	case "DUTCH":
		return DUTCH, nil
	default:
		return 0, fmt.Errorf("unknown auction type %q", s)
	}
}

type AuctionStatus uint8

const (
	NOT_STARTED AuctionStatus = iota
	ACTIVE
	ENDED
	CANCELLED
)

func (s AuctionStatus) String() string {
	switch s {
	case NOT_STARTED:
		return "NOT_STARTED"
	case ACTIVE:
		return "ACTIVE"
	case ENDED:
		return "ENDED"
	case CANCELLED:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s AuctionStatus) IsTerminal() bool {
	return s == ENDED || s == CANCELLED
}

// AssetRef identifies one non-fungible asset: the collection it belongs to
// and its token id inside that collection.
type AssetRef struct {
	Contract Address
	TokenID  *big.Int
}

func (r AssetRef) String() string {
	tokenID := "0"
	if r.TokenID != nil {
		tokenID = r.TokenID.String()
	}
	return r.Contract.String() + "/" + tokenID
}

// Key is the asset identity used for custody bookkeeping.
func (r AssetRef) Key() string {
	return r.String()
}

type Auction struct {
	ID                uint64
	Seller            Address
	Asset             AssetRef
	StartPrice        *big.Int
	EndPrice          *big.Int
	StartTime         uint64
	EndTime           uint64
	Type              AuctionType
	Status            AuctionStatus
	HighestBidder     *Address `rlp:"nil"`
	HighestBid        *big.Int
	MinBidIncrement   *big.Int
	PriceDropInterval uint64

	CreateTime uint64
	SettleTime uint64
	BidCount   uint32
	Extensions uint32
}

func (a *Auction) ToString() string {
	bidder := "none"
	if a.HighestBidder != nil {
		bidder = a.HighestBidder.String()
	}
	return fmt.Sprintf("Auction(%v) type=%v, status=%v, seller=%v, asset=%v, startPrice=%v, endPrice=%v, startTime=%v, endTime=%v, highestBidder=%v, highestBid=%v, minBidIncrement=%v, priceDropInterval=%v, bids=%v, extensions=%v",
		a.ID, a.Type, a.Status, a.Seller, a.Asset, a.StartPrice, a.EndPrice, a.StartTime, a.EndTime, bidder, a.HighestBid, a.MinBidIncrement, a.PriceDropInterval, a.BidCount, a.Extensions)
}

func (a *Auction) String() string {
	return a.ToString()
}

// HasBids reports whether a bid was ever accepted. The highest bidder is never
// cleared once set, so outbid auctions still count.
func (a *Auction) HasBids() bool {
	return a.HighestBidder != nil
}

// Duration is the scheduled window length in seconds.
func (a *Auction) Duration() uint64 {
	if a.EndTime < a.StartTime {
		return 0
	}
	return a.EndTime - a.StartTime
}

// Copy returns a deep copy, so callers never alias stored records.
func (a *Auction) Copy() *Auction {
	c := *a
	c.Asset.TokenID = copyInt(a.Asset.TokenID)
	c.StartPrice = copyInt(a.StartPrice)
	c.EndPrice = copyInt(a.EndPrice)
	c.HighestBid = copyInt(a.HighestBid)
	c.MinBidIncrement = copyInt(a.MinBidIncrement)
	if a.HighestBidder != nil {
		bidder := *a.HighestBidder
		c.HighestBidder = &bidder
	}
	return &c
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
