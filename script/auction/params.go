// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

var (
	minDuration = uint64(meter.MinAuctionDuration.Seconds())
	maxDuration = uint64(meter.MaxAuctionDuration.Seconds())
	extWindow   = uint64(meter.ExtensionWindow.Seconds())
)

// CreateParams are the seller supplied inputs of a new auction. The seller is
// the caller of Create.
type CreateParams struct {
	Asset             meter.AssetRef
	Type              meter.AuctionType
	StartPrice        *big.Int
	EndPrice          *big.Int
	StartTime         uint64
	EndTime           uint64
	MinBidIncrement   *big.Int
	PriceDropInterval uint64
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameters, format, args...)
}

// Validate checks the creation invariants against the creation time now.
func (p *CreateParams) Validate(now uint64) error {
	if p.Asset.Contract.IsZero() {
		return invalid("asset contract is empty")
	}
	if p.Asset.TokenID == nil || p.Asset.TokenID.Sign() < 0 {
		return invalid("bad token id %v", p.Asset.TokenID)
	}
	if p.StartPrice == nil || p.StartPrice.Sign() <= 0 {
		return invalid("start price must be positive")
	}
	if p.EndPrice == nil || p.EndPrice.Sign() < 0 {
		return invalid("end price must not be negative")
	}
	if p.EndTime < p.StartTime {
		return invalid("end time %d before start time %d", p.EndTime, p.StartTime)
	}
	if d := p.EndTime - p.StartTime; d < minDuration || d > maxDuration {
		return invalid("duration %s outside [%v, %v]", meter.PrettySeconds(d), meter.MinAuctionDuration, meter.MaxAuctionDuration)
	}
	if p.StartTime < now {
		return invalid("start time %d is in the past (now %d)", p.StartTime, now)
	}

	switch p.Type {
	case meter.ENGLISH:
		if p.EndPrice.Cmp(p.StartPrice) <= 0 {
			return invalid("english end price %v must exceed start price %v", p.EndPrice, p.StartPrice)
		}
		if p.MinBidIncrement == nil || p.MinBidIncrement.Sign() <= 0 {
			return invalid("english auction needs a positive bid increment")
		}
	case meter.DUTCH:
		if p.EndPrice.Cmp(p.StartPrice) >= 0 {
			return invalid("dutch end price %v must be below start price %v", p.EndPrice, p.StartPrice)
		}
		if p.PriceDropInterval == 0 {
			return invalid("dutch auction needs a positive price drop interval")
		}
	default:
		return invalid("unknown auction type %d", p.Type)
	}
	return nil
}

func (p *CreateParams) newAuction(seller meter.Address, now uint64) *meter.Auction {
	a := &meter.Auction{
		Seller:     seller,
		Asset:      meter.AssetRef{Contract: p.Asset.Contract, TokenID: new(big.Int).Set(p.Asset.TokenID)},
		StartPrice: new(big.Int).Set(p.StartPrice),
		EndPrice:   new(big.Int).Set(p.EndPrice),
		StartTime:  p.StartTime,
		EndTime:    p.EndTime,
		Type:       p.Type,
		Status:     meter.NOT_STARTED,
		HighestBid: new(big.Int),
		CreateTime: now,
	}
	if p.Type == meter.ENGLISH {
		a.MinBidIncrement = new(big.Int).Set(p.MinBidIncrement)
	} else {
		a.MinBidIncrement = new(big.Int)
		a.PriceDropInterval = p.PriceDropInterval
	}
	return a
}
