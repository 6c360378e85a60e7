// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import "time"

const (
	OP_CREATE   = uint32(1)
	OP_START    = uint32(2)
	OP_CANCEL   = uint32(3)
	OP_BID      = uint32(4)
	OP_BUY      = uint32(5)
	OP_SETTLE   = uint32(6)
	OP_WITHDRAW = uint32(7)
)

// Policy constants, shared by every auction.
const (
	MinAuctionDuration = 15 * time.Minute
	MaxAuctionDuration = 30 * 24 * time.Hour
	ExtensionWindow    = 15 * time.Minute
)

func GetOpName(op uint32) string {
	switch op {
	case OP_CREATE:
		return "Create"
	case OP_START:
		return "Start"
	case OP_CANCEL:
		return "Cancel"
	case OP_BID:
		return "Bid"
	case OP_BUY:
		return "Buy"
	case OP_SETTLE:
		return "Settle"
	case OP_WITHDRAW:
		return "Withdraw"
	default:
		return "Unknown"
	}
}
