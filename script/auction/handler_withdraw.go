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

// HandleWithdraw pays out the caller's escrow balance in one auction. The
// entry is zeroed and committed before the value is sent.
func (a *Auction) HandleWithdraw(env *setypes.ScriptEnv, id uint64) (err error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("Withdraw completed", "id", id, "elapsed", meter.PrettyDuration(time.Since(start)))
	}()

	release, err := a.guard.acquire(auctionLock(id))
	if err != nil {
		return
	}
	defer release()

	if _, err = a.load(id); err != nil {
		return
	}
	caller := env.GetCaller()
	balance, err := a.state.GetEscrow(id, caller)
	if err != nil {
		return
	}
	if balance.Sign() == 0 {
		return errors.Wrapf(ErrNothingToWithdraw, "%v in auction %d", caller, id)
	}

	stage := a.state.NewStage()
	stage.SetEscrow(id, caller, new(big.Int))
	if err = stage.Commit(); err != nil {
		return
	}

	if verr := a.value.SendValue(caller, balance); verr != nil {
		a.logger.Info("withdraw transfer failed, balance restored", "id", id, "account", caller, "err", verr)
		back := a.state.NewStage()
		back.SetEscrow(id, caller, balance)
		if cerr := back.Commit(); cerr != nil {
			a.logger.Error("restore escrow failed", "id", id, "account", caller, "amount", balance, "err", cerr)
		}
		return errors.Wrapf(ErrValueTransferFailed, "withdraw %v: %v", balance, verr)
	}
	env.AddValueTransfer(a.Address(), caller, balance)

	env.AddEvent(&meter.AuctionEvent{
		Type:      meter.Withdrawal,
		AuctionID: id,
		Account:   caller,
		Amount:    balance,
	})
	a.logger.Info("escrow withdrawn", "id", id, "account", caller, "amount", balance)
	return
}
