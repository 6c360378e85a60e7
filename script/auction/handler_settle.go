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

// HandleSettle closes an English auction after its end time. The winner gets
// the asset and the seller is paid the winning bid directly. Without any bid
// the asset goes back to the seller, the record is ENDED and the emitted
// event is AuctionCancelled.
func (a *Auction) HandleSettle(env *setypes.ScriptEnv, id uint64) (err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Settle completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

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
	switch {
	case rec.Status != meter.ACTIVE:
		return errors.Wrapf(ErrInvalidState, "auction %d is %v", id, rec.Status)
	case rec.Type != meter.ENGLISH:
		return errors.Wrapf(ErrInvalidState, "auction %d is %v", id, rec.Type)
	case now <= rec.EndTime:
		return errors.Wrapf(ErrTooEarly, "auction %d ends at %d", id, rec.EndTime)
	}

	releaseAsset, err := a.guard.acquire(assetLock(rec.Asset))
	if err != nil {
		return
	}
	defer releaseAsset()

	prev := rec.Copy()
	rec.Status = meter.ENDED
	rec.SettleTime = now
	stage := a.state.NewStage()
	stage.SetAuction(rec)
	if err = stage.Commit(); err != nil {
		return
	}

	if !rec.HasBids() {
		if terr := a.custody.TransferAsset(rec.Asset, a.Address(), rec.Seller); terr != nil {
			a.logger.Info("return asset failed, settle reverted", "id", id, "err", terr)
			a.restore(prev)
			return errors.Wrapf(ErrCustodyTransferFailed, "return %v to seller: %v", rec.Asset, terr)
		}
		env.AddAssetTransfer(a.Address(), rec.Seller, rec.Asset)
		env.AddEvent(&meter.AuctionEvent{
			Type:      meter.AuctionCancelled,
			AuctionID: id,
			Account:   rec.Seller,
			Amount:    new(big.Int),
			Asset:     rec.Asset,
		})
		a.logger.Info("auction ended without bids", "id", id)
		return
	}

	winner := *rec.HighestBidder
	if terr := a.custody.TransferAsset(rec.Asset, a.Address(), winner); terr != nil {
		a.logger.Info("deliver asset failed, settle reverted", "id", id, "winner", winner, "err", terr)
		a.restore(prev)
		return errors.Wrapf(ErrCustodyTransferFailed, "deliver %v: %v", rec.Asset, terr)
	}
	if verr := a.value.SendValue(rec.Seller, rec.HighestBid); verr != nil {
		a.logger.Info("pay seller failed, settle reverted", "id", id, "seller", rec.Seller, "err", verr)
		a.undoAsset(rec.Asset, winner)
		a.restore(prev)
		return errors.Wrapf(ErrValueTransferFailed, "pay seller: %v", verr)
	}
	env.AddAssetTransfer(a.Address(), winner, rec.Asset)
	env.AddValueTransfer(a.Address(), rec.Seller, rec.HighestBid)

	env.AddEvent(&meter.AuctionEvent{
		Type:      meter.AuctionSettled,
		AuctionID: id,
		Account:   winner,
		Amount:    rec.HighestBid,
		Asset:     rec.Asset,
	})
	a.logger.Info("auction settled", "id", id, "winner", winner, "amount", rec.HighestBid)
	return
}
