// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"
	"time"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// checkWindow verifies an auction of type typ is live at now.
func checkWindow(rec *meter.Auction, typ meter.AuctionType, now uint64) error {
	switch {
	case rec.Status != meter.ACTIVE:
		return errors.Wrapf(ErrInvalidState, "auction %d is %v", rec.ID, rec.Status)
	case rec.Type != typ:
		return errors.Wrapf(ErrInvalidState, "auction %d is %v", rec.ID, rec.Type)
	case now < rec.StartTime:
		return errors.Wrapf(ErrTooEarly, "auction %d opens at %d", rec.ID, rec.StartTime)
	case now > rec.EndTime:
		return errors.Wrapf(ErrTooLate, "auction %d closed at %d", rec.ID, rec.EndTime)
	}
	return nil
}

// HandleBid places an English bid. The outbid amount moves into the escrow of
// the previous bidder; no value leaves the engine here.
func (a *Auction) HandleBid(env *setypes.ScriptEnv, id uint64, amount *big.Int) (err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Bid completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if amount == nil || amount.Sign() <= 0 {
		return invalid("bid amount must be positive")
	}

	release, err := a.guard.acquire(auctionLock(id))
	if err != nil {
		return
	}
	defer release()

	rec, err := a.load(id)
	if err != nil {
		return
	}
	now := env.GetTime()
	if err = checkWindow(rec, meter.ENGLISH, now); err != nil {
		return
	}
	if minBid := MinimumBid(rec, now); amount.Cmp(minBid) < 0 {
		a.logger.Info("bid too low", "id", id, "bidder", env.GetCaller(), "amount", amount, "min", minBid)
		return errors.Wrapf(ErrBidTooLow, "amount %v, minimum %v", amount, minBid)
	}

	bidder := env.GetCaller()
	stage := a.state.NewStage()
	if rec.HighestBidder != nil {
		stage.AddEscrow(id, *rec.HighestBidder, rec.HighestBid)
	}
	rec.HighestBidder = &bidder
	rec.HighestBid = new(big.Int).Set(amount)
	rec.BidCount++

	extended := false
	if rec.EndTime-now < extWindow {
		rec.EndTime = now + extWindow
		rec.Extensions++
		extended = true
	}
	stage.AppendBid(meter.NewBid(id, bidder, amount, now, rec.BidCount))
	stage.SetAuction(rec)
	if err = stage.Commit(); err != nil {
		return
	}

	env.AddEvent(&meter.AuctionEvent{
		Type:      meter.BidPlaced,
		AuctionID: id,
		Account:   bidder,
		Amount:    rec.HighestBid,
		EndTime:   rec.EndTime,
		Asset:     rec.Asset,
	})
	if extended {
		env.AddEvent(&meter.AuctionEvent{
			Type:      meter.AuctionExtended,
			AuctionID: id,
			Account:   bidder,
			Amount:    rec.HighestBid,
			EndTime:   rec.EndTime,
			Asset:     rec.Asset,
		})
		a.logger.Info("auction extended", "id", id, "endTime", rec.EndTime, "extensions", rec.Extensions)
	}
	a.logger.Info("bid placed", "id", id, "bidder", bidder, "amount", amount)
	return
}
