// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "auction")

// Handle decodes an AuctionBody and runs it for the caller bound to env.
// Create returns the rlp encoded auction id as data.
func (a *Auction) Handle(env *setypes.ScriptEnv, payload []byte) (*setypes.ScriptEngineOutput, error) {
	ab, err := DecodeFromBytes(payload)
	if err != nil {
		a.logger.Error("Decode script message failed", "error", err)
		return nil, errors.Wrap(ErrInvalidParameters, err.Error())
	}

	start := time.Now()
	a.logger.Debug("received auction", "body", ab.ToString())
	switch ab.Opcode {
	case meter.OP_CREATE:
		var id uint64
		if id, err = a.HandleCreate(env, ab.CreateParams()); err == nil {
			ret, _ := rlp.EncodeToBytes(id)
			env.SetReturnData(ret)
		}
	case meter.OP_START:
		err = a.HandleStart(env, ab.AuctionID)
	case meter.OP_CANCEL:
		err = a.HandleCancel(env, ab.AuctionID)
	case meter.OP_BID:
		err = a.HandleBid(env, ab.AuctionID, ab.Amount)
	case meter.OP_BUY:
		err = a.HandleBuyNow(env, ab.AuctionID, ab.Amount)
	case meter.OP_SETTLE:
		err = a.HandleSettle(env, ab.AuctionID)
	case meter.OP_WITHDRAW:
		err = a.HandleWithdraw(env, ab.AuctionID)
	default:
		a.logger.Error("unknown Opcode", "Opcode", ab.Opcode)
		err = errors.Wrapf(ErrInvalidParameters, "unknown opcode %d", ab.Opcode)
	}
	a.finish(env, ab.Opcode, start, err)
	a.logger.Debug("Leaving script handler for operation", "op", meter.GetOpName(ab.Opcode), "err", err)
	if err != nil {
		return nil, err
	}
	return env.GetOutput(), nil
}
