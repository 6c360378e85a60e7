// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math/big"
	"net/url"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// EventMessage is pushed to subscribers for every matching event.
type EventMessage struct {
	ID        meter.Bytes32         `json:"id"`
	Type      string                `json:"type"`
	AuctionID uint64                `json:"auctionID"`
	Account   meter.Address         `json:"account"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Timestamp uint64                `json:"timestamp"`
	EndTime   uint64                `json:"endTime,omitempty"`
	Contract  meter.Address         `json:"contract"`
	TokenID   *math.HexOrDecimal256 `json:"tokenID"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return (*math.HexOrDecimal256)(new(big.Int))
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func convertEvent(ev *meter.AuctionEvent) *EventMessage {
	return &EventMessage{
		ID:        ev.ID(),
		Type:      ev.Type.String(),
		AuctionID: ev.AuctionID,
		Account:   ev.Account,
		Amount:    hexOrDecimal(ev.Amount),
		Timestamp: ev.Timestamp,
		EndTime:   ev.EndTime,
		Contract:  ev.Asset.Contract,
		TokenID:   hexOrDecimal(ev.Asset.TokenID),
	}
}

// EventFilter fields are and-ed, nil means any.
type EventFilter struct {
	AuctionID *uint64
	Account   *meter.Address
	Type      *meter.EventType
}

func (f *EventFilter) Match(ev *meter.AuctionEvent) bool {
	if f.AuctionID != nil && *f.AuctionID != ev.AuctionID {
		return false
	}
	if f.Account != nil && *f.Account != ev.Account {
		return false
	}
	if f.Type != nil && *f.Type != ev.Type {
		return false
	}
	return true
}

func parseEventFilter(query url.Values) (*EventFilter, error) {
	f := &EventFilter{}
	if s := query.Get("auctionID"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "auctionID")
		}
		f.AuctionID = &id
	}
	if s := query.Get("account"); s != "" {
		addr, err := meter.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "account")
		}
		f.Account = &addr
	}
	if s := query.Get("type"); s != "" {
		typ, ok := meter.ParseEventType(s)
		if !ok {
			return nil, errors.Errorf("type: unknown value %q", s)
		}
		f.Type = &typ
	}
	return f, nil
}
