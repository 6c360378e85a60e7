// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"time"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

// HandleCreate lists a new auction for the caller. Custody of the asset is
// taken before the record is stored; no record exists if that fails.
func (a *Auction) HandleCreate(env *setypes.ScriptEnv, p *CreateParams) (id uint64, err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Create completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	if p == nil {
		err = invalid("missing parameters")
		return
	}
	seller := env.GetCaller()
	now := env.GetTime()
	if err = p.Validate(now); err != nil {
		a.logger.Info("create rejected", "seller", seller, "err", err)
		return
	}

	release, err := a.guard.acquire(assetLock(p.Asset))
	if err != nil {
		return
	}
	defer release()

	if terr := a.custody.TransferAsset(p.Asset, seller, a.Address()); terr != nil {
		a.logger.Info("take custody failed", "asset", p.Asset, "seller", seller, "err", terr)
		err = errors.Wrapf(ErrCustodyTransferFailed, "take %v: %v", p.Asset, terr)
		return
	}
	env.AddAssetTransfer(seller, a.Address(), p.Asset)

	rec := p.newAuction(seller, now)
	stage := a.state.NewStage()
	rec.ID = stage.AllocateID()
	stage.SetAuction(rec)
	if err = stage.Commit(); err != nil {
		a.logger.Error("store auction failed", "id", rec.ID, "err", err)
		if uerr := a.custody.TransferAsset(p.Asset, a.Address(), seller); uerr != nil {
			a.logger.Error("return asset to seller failed", "asset", p.Asset, "err", uerr)
		}
		return
	}

	id = rec.ID
	env.AddEvent(&meter.AuctionEvent{
		Type:      meter.AuctionCreated,
		AuctionID: id,
		Account:   seller,
		Amount:    rec.StartPrice,
		EndTime:   rec.EndTime,
		Asset:     rec.Asset,
	})
	a.logger.Info("auction created", "id", id, "type", rec.Type, "seller", seller, "asset", rec.Asset)
	return
}
