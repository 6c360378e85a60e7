// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"fmt"
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// Transfer records one external movement performed by the engine. Exactly
// one of Amount and Asset is set.
type Transfer struct {
	Sender    meter.Address
	Recipient meter.Address
	Amount    *big.Int
	Asset     *meter.AssetRef
}

func (t *Transfer) String() string {
	if t.Asset != nil {
		return fmt.Sprintf("Transfer(asset=%v, %v -> %v)", t.Asset, t.Sender, t.Recipient)
	}
	return fmt.Sprintf("Transfer(amount=%v, %v -> %v)", t.Amount, t.Sender, t.Recipient)
}

type ScriptEngineOutput struct {
	data      []byte
	transfers []*Transfer
	events    []*meter.AuctionEvent
}

func NewScriptEngineOutput(data []byte) *ScriptEngineOutput {
	return &ScriptEngineOutput{
		data:      data,
		transfers: make([]*Transfer, 0),
		events:    make([]*meter.AuctionEvent, 0),
	}
}

func (o *ScriptEngineOutput) SetData(d []byte) {
	o.data = d
}

func (o *ScriptEngineOutput) GetTransfers() []*Transfer {
	return o.transfers
}

func (o *ScriptEngineOutput) GetEvents() []*meter.AuctionEvent {
	return o.events
}

func (o *ScriptEngineOutput) GetData() []byte {
	if len(o.data) == 0 {
		return nil
	}
	return o.data
}
