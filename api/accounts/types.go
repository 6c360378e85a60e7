// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/meter-auction/meter"
)

// Account is the ledger view of one address.
type Account struct {
	Balance math.HexOrDecimal256 `json:"balance"`
	Assets  []*Asset             `json:"assets"`
}

type Asset struct {
	Contract meter.Address         `json:"contract"`
	TokenID  *math.HexOrDecimal256 `json:"tokenID"`
}

type DepositRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type MintRequest struct {
	Contract meter.Address         `json:"contract"`
	TokenID  *math.HexOrDecimal256 `json:"tokenID"`
}
