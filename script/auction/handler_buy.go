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

// HandleBuyNow accepts the current Dutch price. The record is closed before
// any transfer; a failed asset delivery or seller payment puts it back.
func (a *Auction) HandleBuyNow(env *setypes.ScriptEnv, id uint64, amount *big.Int) (err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Buy completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if amount == nil || amount.Sign() < 0 {
		return invalid("bad amount %v", amount)
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
	if err = checkWindow(rec, meter.DUTCH, now); err != nil {
		return
	}
	price := CurrentPrice(rec, now)
	if amount.Cmp(price) < 0 {
		return errors.Wrapf(ErrInsufficientFunds, "amount %v, price %v", amount, price)
	}

	releaseAsset, err := a.guard.acquire(assetLock(rec.Asset))
	if err != nil {
		return
	}
	defer releaseAsset()

	buyer := env.GetCaller()
	prev := rec.Copy()
	rec.HighestBidder = &buyer
	rec.HighestBid = price
	rec.Status = meter.ENDED
	rec.SettleTime = now
	rec.BidCount++

	stage := a.state.NewStage()
	stage.AppendBid(meter.NewBid(id, buyer, price, now, rec.BidCount))
	stage.SetAuction(rec)
	if err = stage.Commit(); err != nil {
		return
	}

	if terr := a.custody.TransferAsset(rec.Asset, a.Address(), buyer); terr != nil {
		a.logger.Info("deliver asset failed, buy reverted", "id", id, "buyer", buyer, "err", terr)
		a.restore(prev)
		return errors.Wrapf(ErrCustodyTransferFailed, "deliver %v: %v", rec.Asset, terr)
	}
	if verr := a.value.SendValue(rec.Seller, price); verr != nil {
		a.logger.Info("pay seller failed, buy reverted", "id", id, "seller", rec.Seller, "err", verr)
		a.undoAsset(rec.Asset, buyer)
		a.restore(prev)
		return errors.Wrapf(ErrValueTransferFailed, "pay seller: %v", verr)
	}
	env.AddAssetTransfer(a.Address(), buyer, rec.Asset)
	env.AddValueTransfer(a.Address(), rec.Seller, price)

	if excess := new(big.Int).Sub(amount, price); excess.Sign() > 0 {
		a.refundExcess(env, id, buyer, excess)
	}

	env.AddEvent(&meter.AuctionEvent{
		Type:      meter.AuctionSettled,
		AuctionID: id,
		Account:   buyer,
		Amount:    price,
		Asset:     rec.Asset,
	})
	a.logger.Info("auction bought", "id", id, "buyer", buyer, "price", price)
	return
}

// refundExcess returns the overpaid part of a purchase. The sale is already
// final at this point, so a rejected refund is parked in the buyer's escrow.
func (a *Auction) refundExcess(env *setypes.ScriptEnv, id uint64, buyer meter.Address, excess *big.Int) {
	err := a.value.SendValue(buyer, excess)
	if err == nil {
		env.AddValueTransfer(a.Address(), buyer, excess)
		return
	}
	a.logger.Info("refund excess failed, credited to escrow", "id", id, "buyer", buyer, "excess", excess, "err", err)
	stage := a.state.NewStage()
	stage.AddEscrow(id, buyer, excess)
	if err = stage.Commit(); err != nil {
		a.logger.Error("credit excess to escrow failed", "id", id, "buyer", buyer, "excess", excess, "err", err)
	}
}
