// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auctions

import (
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/pkg/errors"
)

// CallerHeader carries the authenticated caller, set by the fronting proxy.
const CallerHeader = "X-Caller"

// Wallet moves bid funds between callers and the engine account.
type Wallet interface {
	Charge(from meter.Address, amount *big.Int) error
	SendValue(to meter.Address, amount *big.Int) error
}

type Auctions struct {
	engine *auction.Auction
	se     *script.ScriptEngine
	wallet Wallet
	logger *slog.Logger
}

func New(engine *auction.Auction, se *script.ScriptEngine, wallet Wallet) *Auctions {
	return &Auctions{
		engine: engine,
		se:     se,
		wallet: wallet,
		logger: slog.Default().With("api", "auctions"),
	}
}

func callerOf(req *http.Request) (meter.Address, error) {
	s := req.Header.Get(CallerHeader)
	if s == "" {
		return meter.Address{}, utils.HTTPError(errors.New("missing " + CallerHeader), http.StatusUnauthorized)
	}
	addr, err := meter.ParseAddress(s)
	if err != nil {
		return meter.Address{}, utils.BadRequest(errors.WithMessage(err, CallerHeader))
	}
	return addr, nil
}

func idOf(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

// engineError maps an engine error kind to an http status.
func engineError(err error) error {
	kind := auction.Kind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "NotFound":
		status = http.StatusNotFound
	case "Unauthorized":
		status = http.StatusForbidden
	case "InvalidParameters", "BidTooLow", "InsufficientFunds":
		status = http.StatusBadRequest
	case "InvalidState", "AlreadyStarted", "TooEarly", "TooLate", "BidsAlreadyExist", "NothingToWithdraw", "OperationInProgress":
		status = http.StatusConflict
	case "CustodyTransferFailed", "ValueTransferFailed":
		status = http.StatusBadGateway
	default:
		return err
	}
	return utils.HTTPError(errors.WithMessage(err, kind), status)
}

func (a *Auctions) writeAuction(w http.ResponseWriter, id uint64) error {
	rec, ok, err := a.engine.GetAuction(id)
	if err != nil {
		return err
	}
	if !ok {
		return engineError(errors.Wrapf(auction.ErrNotFound, "auction %d", id))
	}
	return utils.WriteJSON(w, convertAuction(rec))
}

func (a *Auctions) refund(to meter.Address, v *big.Int) {
	if err := a.wallet.SendValue(to, v); err != nil {
		a.logger.Error("refund failed", "to", to, "amount", v, "err", err)
	}
}

func (a *Auctions) handleCreate(w http.ResponseWriter, req *http.Request) error {
	caller, err := callerOf(req)
	if err != nil {
		return err
	}
	var body CreateRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	params, err := body.params()
	if err != nil {
		return utils.BadRequest(err)
	}
	id, err := a.engine.Create(req.Context(), caller, params)
	if err != nil {
		return engineError(err)
	}
	return utils.WriteJSON(w, &CreateResult{ID: id})
}

func (a *Auctions) handleGetAuction(w http.ResponseWriter, req *http.Request) error {
	id, err := idOf(req)
	if err != nil {
		return err
	}
	return a.writeAuction(w, id)
}

func (a *Auctions) handleGetPrice(w http.ResponseWriter, req *http.Request) error {
	id, err := idOf(req)
	if err != nil {
		return err
	}
	rec, ok, err := a.engine.GetAuction(id)
	if err != nil {
		return err
	}
	if !ok {
		return engineError(errors.Wrapf(auction.ErrNotFound, "auction %d", id))
	}
	now := a.engine.Now()
	res := &Price{Price: amount(auction.CurrentPrice(rec, now)), Now: now}
	if rec.Type == meter.ENGLISH {
		res.MinimumBid = amount(auction.MinimumBid(rec, now))
	}
	return utils.WriteJSON(w, res)
}

func (a *Auctions) handleGetBids(w http.ResponseWriter, req *http.Request) error {
	id, err := idOf(req)
	if err != nil {
		return err
	}
	bids, err := a.engine.Bids(id)
	if err != nil {
		return engineError(err)
	}
	return utils.WriteJSON(w, convertBids(bids))
}

func (a *Auctions) handleGetEscrow(w http.ResponseWriter, req *http.Request) error {
	id, err := idOf(req)
	if err != nil {
		return err
	}
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	v, err := a.engine.Escrow(id, addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Escrow{Account: addr, Amount: amount(v)})
}

// handleTransition serves the operations that carry no amount.
func (a *Auctions) handleTransition(op func(id uint64, caller meter.Address, req *http.Request) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		caller, err := callerOf(req)
		if err != nil {
			return err
		}
		id, err := idOf(req)
		if err != nil {
			return err
		}
		if err := op(id, caller, req); err != nil {
			return engineError(err)
		}
		return a.writeAuction(w, id)
	}
}

// handlePayment charges the caller before the operation and refunds the
// whole amount if it fails.
func (a *Auctions) handlePayment(op func(id uint64, caller meter.Address, v *big.Int, req *http.Request) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		caller, err := callerOf(req)
		if err != nil {
			return err
		}
		id, err := idOf(req)
		if err != nil {
			return err
		}
		var body AmountRequest
		if err := utils.ParseJSON(req.Body, &body); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
		v := bigOf(body.Amount)
		if v == nil || v.Sign() <= 0 {
			return utils.BadRequest(errors.New("amount: must be positive"))
		}
		if err := a.wallet.Charge(caller, v); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "charge"))
		}
		if err := op(id, caller, v, req); err != nil {
			a.refund(caller, v)
			return engineError(err)
		}
		return a.writeAuction(w, id)
	}
}

// handleExec runs rlp encoded script data on behalf of the caller.
func (a *Auctions) handleExec(w http.ResponseWriter, req *http.Request) error {
	caller, err := callerOf(req)
	if err != nil {
		return err
	}
	var body ExecRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	data, err := hexutil.Decode(body.Data)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "data"))
	}

	funds := fundsOf(data)
	if funds != nil {
		if err := a.wallet.Charge(caller, funds); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "charge"))
		}
	}
	out, err := a.se.HandleScriptData(a.engine.NewEnv(req.Context(), caller), data)
	if err != nil {
		if funds != nil {
			a.refund(caller, funds)
		}
		if errors.Is(err, script.ErrBadScript) {
			return utils.BadRequest(err)
		}
		return engineError(err)
	}
	return utils.WriteJSON(w, convertOutput(out))
}

// fundsOf returns the amount a bid or buy envelope commits, nil otherwise.
func fundsOf(data []byte) *big.Int {
	if len(data) < len(script.ScriptPattern) {
		return nil
	}
	sd, err := script.DecodeScriptData(data[len(script.ScriptPattern):])
	if err != nil || sd.Header.ModID != script.AUCTION_MODULE_ID {
		return nil
	}
	ab, err := auction.DecodeFromBytes(sd.Payload)
	if err != nil {
		return nil
	}
	if (ab.Opcode == meter.OP_BID || ab.Opcode == meter.OP_BUY) && ab.Amount != nil && ab.Amount.Sign() > 0 {
		return ab.Amount
	}
	return nil
}

func (a *Auctions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleCreate))
	sub.Path("/exec").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleExec))
	sub.Path("/{id:[0-9]+}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAuction))
	sub.Path("/{id:[0-9]+}/price").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetPrice))
	sub.Path("/{id:[0-9]+}/bids").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetBids))
	sub.Path("/{id:[0-9]+}/escrow/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetEscrow))

	sub.Path("/{id:[0-9]+}/start").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleTransition(
		func(id uint64, caller meter.Address, req *http.Request) error {
			return a.engine.Start(req.Context(), id, caller)
		})))
	sub.Path("/{id:[0-9]+}/cancel").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleTransition(
		func(id uint64, caller meter.Address, req *http.Request) error {
			return a.engine.Cancel(req.Context(), id, caller)
		})))
	sub.Path("/{id:[0-9]+}/settle").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleTransition(
		func(id uint64, caller meter.Address, req *http.Request) error {
			return a.engine.Settle(req.Context(), id, caller)
		})))
	sub.Path("/{id:[0-9]+}/withdraw").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleTransition(
		func(id uint64, caller meter.Address, req *http.Request) error {
			return a.engine.Withdraw(req.Context(), id, caller)
		})))
	sub.Path("/{id:[0-9]+}/bid").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handlePayment(
		func(id uint64, caller meter.Address, v *big.Int, req *http.Request) error {
			return a.engine.PlaceBid(req.Context(), id, caller, v)
		})))
	sub.Path("/{id:[0-9]+}/buy").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handlePayment(
		func(id uint64, caller meter.Address, v *big.Int, req *http.Request) error {
			return a.engine.BuyNow(req.Context(), id, caller, v)
		})))
}
