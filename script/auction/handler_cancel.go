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

// HandleCancel withdraws an auction that never received a bid and hands the
// asset back to the seller.
func (a *Auction) HandleCancel(env *setypes.ScriptEnv, id uint64) (err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Cancel completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
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
	switch {
	case env.GetCaller() != rec.Seller:
		return errors.Wrapf(ErrUnauthorized, "only the seller may cancel auction %d", id)
	case rec.Status.IsTerminal():
		return errors.Wrapf(ErrInvalidState, "auction %d is %v", id, rec.Status)
	case rec.HasBids():
		return errors.Wrapf(ErrBidsAlreadyExist, "auction %d", id)
	}

	releaseAsset, err := a.guard.acquire(assetLock(rec.Asset))
	if err != nil {
		return
	}
	defer releaseAsset()

	prev := rec.Copy()
	rec.Status = meter.CANCELLED
	rec.SettleTime = env.GetTime()
	stage := a.state.NewStage()
	stage.SetAuction(rec)
	if err = stage.Commit(); err != nil {
		return
	}

	if terr := a.custody.TransferAsset(rec.Asset, a.Address(), rec.Seller); terr != nil {
		a.logger.Info("return asset failed, cancel reverted", "id", id, "err", terr)
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
	a.logger.Info("auction cancelled", "id", id)
	return
}
