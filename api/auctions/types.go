// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

type Auction struct {
	ID                uint64                `json:"id"`
	Seller            meter.Address         `json:"seller"`
	Contract          meter.Address         `json:"contract"`
	TokenID           *math.HexOrDecimal256 `json:"tokenID"`
	Type              string                `json:"type"`
	Status            string                `json:"status"`
	StartPrice        *math.HexOrDecimal256 `json:"startPrice"`
	EndPrice          *math.HexOrDecimal256 `json:"endPrice"`
	StartTime         uint64                `json:"startTime"`
	EndTime           uint64                `json:"endTime"`
	HighestBidder     *meter.Address        `json:"highestBidder"`
	HighestBid        *math.HexOrDecimal256 `json:"highestBid"`
	MinBidIncrement   *math.HexOrDecimal256 `json:"minBidIncrement"`
	PriceDropInterval uint64                `json:"priceDropInterval"`
	CreateTime        uint64                `json:"createTime"`
	SettleTime        uint64                `json:"settleTime"`
	BidCount          uint32                `json:"bidCount"`
	Extensions        uint32                `json:"extensions"`
}

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

func convertAuction(a *meter.Auction) *Auction {
	return &Auction{
		ID:                a.ID,
		Seller:            a.Seller,
		Contract:          a.Asset.Contract,
		TokenID:           amount(a.Asset.TokenID),
		Type:              a.Type.String(),
		Status:            a.Status.String(),
		StartPrice:        amount(a.StartPrice),
		EndPrice:          amount(a.EndPrice),
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		HighestBidder:     a.HighestBidder,
		HighestBid:        amount(a.HighestBid),
		MinBidIncrement:   amount(a.MinBidIncrement),
		PriceDropInterval: a.PriceDropInterval,
		CreateTime:        a.CreateTime,
		SettleTime:        a.SettleTime,
		BidCount:          a.BidCount,
		Extensions:        a.Extensions,
	}
}

type CreateRequest struct {
	Type              string                `json:"type"`
	Contract          meter.Address         `json:"contract"`
	TokenID           *math.HexOrDecimal256 `json:"tokenID"`
	StartPrice        *math.HexOrDecimal256 `json:"startPrice"`
	EndPrice          *math.HexOrDecimal256 `json:"endPrice"`
	StartTime         uint64                `json:"startTime"`
	EndTime           uint64                `json:"endTime"`
	MinBidIncrement   *math.HexOrDecimal256 `json:"minBidIncrement"`
	PriceDropInterval uint64                `json:"priceDropInterval"`
}

func (r *CreateRequest) params() (*auction.CreateParams, error) {
	typ, err := meter.ParseAuctionType(r.Type)
	if err != nil {
		return nil, errors.WithMessage(err, "type")
	}
	return &auction.CreateParams{
		Asset:             meter.AssetRef{Contract: r.Contract, TokenID: bigOf(r.TokenID)},
		Type:              typ,
		StartPrice:        bigOf(r.StartPrice),
		EndPrice:          bigOf(r.EndPrice),
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		MinBidIncrement:   bigOf(r.MinBidIncrement),
		PriceDropInterval: r.PriceDropInterval,
	}, nil
}

type CreateResult struct {
	ID uint64 `json:"id"`
}

type AmountRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Price struct {
	Price      *math.HexOrDecimal256 `json:"price"`
	MinimumBid *math.HexOrDecimal256 `json:"minimumBid,omitempty"`
	Now        uint64                `json:"now"`
}

type Escrow struct {
	Account meter.Address         `json:"account"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type Bid struct {
	ID        meter.Bytes32         `json:"id"`
	Seq       uint32                `json:"seq"`
	Bidder    meter.Address         `json:"bidder"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Timestamp uint64                `json:"timestamp"`
}

func convertBids(bids []*meter.Bid) []*Bid {
	res := make([]*Bid, 0, len(bids))
	for _, b := range bids {
		res = append(res, &Bid{
			ID:        b.ID,
			Seq:       b.Seq,
			Bidder:    b.Bidder,
			Amount:    amount(b.Amount),
			Timestamp: b.Timestamp,
		})
	}
	return res
}

type ExecRequest struct {
	Data string `json:"data"`
}

type Event struct {
	Type      string                `json:"type"`
	AuctionID uint64                `json:"auctionID"`
	Account   meter.Address         `json:"account"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Timestamp uint64                `json:"timestamp"`
}

type Transfer struct {
	Sender    meter.Address         `json:"sender"`
	Recipient meter.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount,omitempty"`
	Asset     string                `json:"asset,omitempty"`
}

type ExecResult struct {
	Data      string      `json:"data"`
	Events    []*Event    `json:"events"`
	Transfers []*Transfer `json:"transfers"`
}

func convertOutput(out *setypes.ScriptEngineOutput) *ExecResult {
	res := &ExecResult{
		Data:      hexutil.Encode(out.GetData()),
		Events:    make([]*Event, 0),
		Transfers: make([]*Transfer, 0),
	}
	for _, ev := range out.GetEvents() {
		res.Events = append(res.Events, &Event{
			Type:      ev.Type.String(),
			AuctionID: ev.AuctionID,
			Account:   ev.Account,
			Amount:    amount(ev.Amount),
			Timestamp: ev.Timestamp,
		})
	}
	for _, t := range out.GetTransfers() {
		tr := &Transfer{Sender: t.Sender, Recipient: t.Recipient}
		if t.Asset != nil {
			tr.Asset = t.Asset.String()
		} else {
			tr.Amount = amount(t.Amount)
		}
		res.Transfers = append(res.Transfers, tr)
	}
	return res
}
