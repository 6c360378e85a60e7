// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// Event is an auction notification as stored in the db.
type Event struct {
	Seq       uint64
	ID        meter.Bytes32
	Type      meter.EventType
	AuctionID uint64
	Account   meter.Address
	Amount    *big.Int
	Timestamp uint64
	EndTime   uint64
	Asset     meter.AssetRef
}

func newEvent(ev *meter.AuctionEvent) *Event {
	amount := new(big.Int)
	if ev.Amount != nil {
		amount.Set(ev.Amount)
	}
	tokenID := new(big.Int)
	if ev.Asset.TokenID != nil {
		tokenID.Set(ev.Asset.TokenID)
	}
	return &Event{
		ID:        ev.ID(),
		Type:      ev.Type,
		AuctionID: ev.AuctionID,
		Account:   ev.Account,
		Amount:    amount,
		Timestamp: ev.Timestamp,
		EndTime:   ev.EndTime,
		Asset:     meter.AssetRef{Contract: ev.Asset.Contract, TokenID: tokenID},
	}
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds the event timestamp. To is ignored when below From.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria fields are and-ed, nil means any.
type EventCriteria struct {
	AuctionID *uint64
	Account   *meter.Address
	Type      *meter.EventType
}

//EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order //default asc
}
