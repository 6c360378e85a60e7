// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"context"
	"math/big"

	"github.com/meterio/meter-auction/meter"
)

// ScriptEnv carries the execution context of one operation: who calls, at
// what time, and what the operation emitted so far.
type ScriptEnv struct {
	ctx    context.Context
	caller meter.Address
	now    uint64

	returnData []byte
	transfers  []*Transfer
	events     []*meter.AuctionEvent
}

func NewScriptEnv(ctx context.Context, caller meter.Address, now uint64) *ScriptEnv {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ScriptEnv{
		ctx:        ctx,
		caller:     caller,
		now:        now,
		returnData: make([]byte, 0),
		transfers:  make([]*Transfer, 0),
		events:     make([]*meter.AuctionEvent, 0),
	}
}

func (env *ScriptEnv) GetContext() context.Context { return env.ctx }
func (env *ScriptEnv) GetCaller() meter.Address     { return env.caller }
func (env *ScriptEnv) GetTime() uint64              { return env.now }

func (env *ScriptEnv) SetReturnData(data []byte) {
	env.returnData = data
}

func (env *ScriptEnv) GetReturnData() []byte {
	if len(env.returnData) == 0 {
		return nil
	}
	return env.returnData
}

func (env *ScriptEnv) AddValueTransfer(sender, recipient meter.Address, amount *big.Int) {
	env.transfers = append(env.transfers, &Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})
}

func (env *ScriptEnv) AddAssetTransfer(sender, recipient meter.Address, asset meter.AssetRef) {
	ref := asset
	env.transfers = append(env.transfers, &Transfer{
		Sender:    sender,
		Recipient: recipient,
		Asset:     &ref,
	})
}

func (env *ScriptEnv) AddEvent(ev *meter.AuctionEvent) {
	if ev.Timestamp == 0 {
		ev.Timestamp = env.now
	}
	env.events = append(env.events, ev)
}

func (env *ScriptEnv) GetTransfers() []*Transfer {
	return env.transfers
}

func (env *ScriptEnv) GetEvents() []*meter.AuctionEvent {
	return env.events
}

// DropEvents discards events collected by an operation that failed.
func (env *ScriptEnv) DropEvents() {
	env.events = env.events[:0]
}

func (env *ScriptEnv) GetOutput() *ScriptEngineOutput {
	return &ScriptEngineOutput{
		data:      env.GetReturnData(),
		transfers: env.transfers,
		events:    env.events,
	}
}
