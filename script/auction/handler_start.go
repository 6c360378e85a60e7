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

func (a *Auction) HandleStart(env *setypes.ScriptEnv, id uint64) (err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Start completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
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
	case env.GetCaller() != rec.Seller:
		return errors.Wrapf(ErrUnauthorized, "only the seller may start auction %d", id)
	case rec.Status == meter.ACTIVE:
		return errors.Wrapf(ErrAlreadyStarted, "auction %d", id)
	case rec.Status != meter.NOT_STARTED:
		return errors.Wrapf(ErrInvalidState, "auction %d is %v", id, rec.Status)
	case now < rec.StartTime:
		return errors.Wrapf(ErrTooEarly, "auction %d starts in %v", id, meter.PrettySeconds(rec.StartTime-now))
	}

	rec.Status = meter.ACTIVE
	stage := a.state.NewStage()
	stage.SetAuction(rec)
	if err = stage.Commit(); err != nil {
		return
	}

	env.AddEvent(&meter.AuctionEvent{
		Type:      meter.AuctionStarted,
		AuctionID: id,
		Account:   rec.Seller,
		Amount:    rec.StartPrice,
		EndTime:   rec.EndTime,
		Asset:     rec.Asset,
	})
	a.logger.Info("auction started", "id", id, "endTime", rec.EndTime)
	return
}
