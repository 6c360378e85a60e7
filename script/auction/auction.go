// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"github.com/meterio/meter-auction/meter"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
)

// AssetCustody moves a non-fungible asset between custodians. It fails when
// from is not the current custodian or to cannot receive the asset.
type AssetCustody interface {
	TransferAsset(ref meter.AssetRef, from, to meter.Address) error
}

// ValueTransfer pushes native value out of the engine account.
type ValueTransfer interface {
	SendValue(to meter.Address, amount *big.Int) error
}

// Clock supplies the current unix time in seconds.
type Clock interface {
	Now() uint64
}

// EventSink receives notifications after an operation commits. Delivery is
// fire-and-forget.
type EventSink interface {
	Emit(ev *meter.AuctionEvent)
}

type SystemClock struct{}

func (SystemClock) Now() uint64 { return uint64(time.Now().Unix()) }

// ClockFunc adapts a function to Clock.
type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 { return f() }

// FanOut emits every event to each sink in order.
type FanOut []EventSink

func (f FanOut) Emit(ev *meter.AuctionEvent) {
	for _, s := range f {
		if s != nil {
			s.Emit(ev)
		}
	}
}

type discard struct{}

func (discard) Emit(*meter.AuctionEvent) {}

// Auction is the engine. It owns the auction store and escrow ledger and is
// the only writer of both.
type Auction struct {
	state   *state.State
	custody AssetCustody
	value   ValueTransfer
	clock   Clock
	sink    EventSink
	guard   *guard
	logger  *slog.Logger
}

func NewAuction(st *state.State, custody AssetCustody, value ValueTransfer, clock Clock, sink EventSink) *Auction {
	if clock == nil {
		clock = SystemClock{}
	}
	if sink == nil {
		sink = discard{}
	}
	registerMetrics()
	return &Auction{
		state:   st,
		custody: custody,
		value:   value,
		clock:   clock,
		sink:    sink,
		guard:   newGuard(),
		logger:  slog.Default().With("pkg", "auction"),
	}
}

// Address is the account holding custody and bid funds.
func (a *Auction) Address() meter.Address {
	return meter.AuctionModuleAddr
}

// NewEnv reads the clock once and binds it to the caller for one operation.
func (a *Auction) NewEnv(ctx context.Context, caller meter.Address) *setypes.ScriptEnv {
	return setypes.NewScriptEnv(ctx, caller, a.clock.Now())
}

// finish publishes the collected events of a successful operation and
// records its outcome.
func (a *Auction) finish(env *setypes.ScriptEnv, op uint32, start time.Time, err error) {
	observe(op, start, err)
	if err != nil {
		env.DropEvents()
		env.SetReturnData([]byte(err.Error()))
		return
	}
	for _, ev := range env.GetEvents() {
		a.sink.Emit(ev)
	}
}

func (a *Auction) Create(ctx context.Context, caller meter.Address, p *CreateParams) (uint64, error) {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	id, err := a.HandleCreate(env, p)
	a.finish(env, meter.OP_CREATE, start, err)
	return id, err
}

func (a *Auction) Start(ctx context.Context, id uint64, caller meter.Address) error {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	err := a.HandleStart(env, id)
	a.finish(env, meter.OP_START, start, err)
	return err
}

func (a *Auction) Cancel(ctx context.Context, id uint64, caller meter.Address) error {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	err := a.HandleCancel(env, id)
	a.finish(env, meter.OP_CANCEL, start, err)
	return err
}

func (a *Auction) PlaceBid(ctx context.Context, id uint64, caller meter.Address, amount *big.Int) error {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	err := a.HandleBid(env, id, amount)
	a.finish(env, meter.OP_BID, start, err)
	return err
}

func (a *Auction) BuyNow(ctx context.Context, id uint64, caller meter.Address, amount *big.Int) error {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	err := a.HandleBuyNow(env, id, amount)
	a.finish(env, meter.OP_BUY, start, err)
	return err
}

// Settle closes an English auction after its end time. Anyone may call it.
func (a *Auction) Settle(ctx context.Context, id uint64, caller meter.Address) error {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	err := a.HandleSettle(env, id)
	a.finish(env, meter.OP_SETTLE, start, err)
	return err
}

func (a *Auction) Withdraw(ctx context.Context, id uint64, caller meter.Address) error {
	env := a.NewEnv(ctx, caller)
	start := time.Now()
	err := a.HandleWithdraw(env, id)
	a.finish(env, meter.OP_WITHDRAW, start, err)
	return err
}

// load fetches a copy of the record or fails with ErrNotFound.
func (a *Auction) load(id uint64) (*meter.Auction, error) {
	rec, ok, err := a.state.GetAuction(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "auction %d", id)
	}
	return rec, nil
}

// restore writes back the record as it was before a failed external call and
// drops the bid entry the failed operation appended, if any.
func (a *Auction) restore(prev *meter.Auction) {
	stage := a.state.NewStage()
	stage.SetAuction(prev)
	stage.RemoveBid(prev.ID, prev.BidCount+1)
	if err := stage.Commit(); err != nil {
		a.logger.Error("restore auction failed", "id", prev.ID, "err", err)
	}
}

// undoAsset moves the asset back into custody after a later step failed.
func (a *Auction) undoAsset(ref meter.AssetRef, holder meter.Address) {
	if err := a.custody.TransferAsset(ref, holder, a.Address()); err != nil {
		a.logger.Error("return asset to custody failed", "asset", ref, "holder", holder, "err", err)
	}
}
