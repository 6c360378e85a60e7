// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

type FilteredEvent struct {
	ID        meter.Bytes32         `json:"id"`
	Seq       uint64                `json:"seq"`
	Type      string                `json:"type"`
	AuctionID uint64                `json:"auctionID"`
	Account   meter.Address         `json:"account"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Timestamp uint64                `json:"timestamp"`
	EndTime   uint64                `json:"endTime,omitempty"`
	Contract  meter.Address         `json:"contract"`
	TokenID   *math.HexOrDecimal256 `json:"tokenID"`
}

// convert a logdb.Event into a json format Event
func convertEvent(event *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		ID:        event.ID,
		Seq:       event.Seq,
		Type:      event.Type.String(),
		AuctionID: event.AuctionID,
		Account:   event.Account,
		Amount:    (*math.HexOrDecimal256)(new(big.Int).Set(event.Amount)),
		Timestamp: event.Timestamp,
		EndTime:   event.EndTime,
		Contract:  event.Asset.Contract,
		TokenID:   (*math.HexOrDecimal256)(new(big.Int).Set(event.Asset.TokenID)),
	}
}

func (e *FilteredEvent) String() string {
	return fmt.Sprintf("Event(%v auction=%v account=%v amount=%v ts=%v)",
		e.Type, e.AuctionID, e.Account, (*big.Int)(e.Amount), e.Timestamp)
}

type EventCriteria struct {
	AuctionID *uint64        `json:"auctionID"`
	Account   *meter.Address `json:"account"`
	Type      string         `json:"type"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *logdb.Range     `json:"range"`
	Options     *logdb.Options   `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertEventFilter(filter *EventFilter) (*logdb.EventFilter, error) {
	f := &logdb.EventFilter{
		Range:   filter.Range,
		Options: filter.Options,
		Order:   filter.Order,
	}
	if len(filter.CriteriaSet) > 0 {
		criterias := make([]*logdb.EventCriteria, len(filter.CriteriaSet))
		for i, criteria := range filter.CriteriaSet {
			c := &logdb.EventCriteria{
				AuctionID: criteria.AuctionID,
				Account:   criteria.Account,
			}
			if criteria.Type != "" {
				typ, ok := meter.ParseEventType(criteria.Type)
				if !ok {
					return nil, errors.Errorf("unknown event type %q", criteria.Type)
				}
				c.Type = &typ
			}
			criterias[i] = c
		}
		f.CriteriaSet = criterias
	}
	return f, nil
}
