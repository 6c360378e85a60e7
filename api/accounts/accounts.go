// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/ledger"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

type Accounts struct {
	bank     *ledger.Bank
	registry *ledger.Registry
	faucet   bool
}

// New serves ledger balances and holdings. Deposits and mints are only
// accepted when faucet is set.
func New(bank *ledger.Bank, registry *ledger.Registry, faucet bool) *Accounts {
	return &Accounts{
		bank,
		registry,
		faucet,
	}
}

func (a *Accounts) getAccount(addr meter.Address) *Account {
	acc := &Account{
		Balance: math.HexOrDecimal256(*a.bank.BalanceOf(addr)),
		Assets:  make([]*Asset, 0),
	}
	for _, ref := range a.registry.AssetsOf(addr) {
		acc.Assets = append(acc.Assets, &Asset{
			Contract: ref.Contract,
			TokenID:  (*math.HexOrDecimal256)(ref.TokenID),
		})
	}
	return acc
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return utils.WriteJSON(w, a.getAccount(addr))
}

func (a *Accounts) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	if !a.faucet {
		return utils.Forbidden(errors.New("faucet disabled"))
	}
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("amount: required"))
	}
	if err := a.bank.Deposit(addr, (*big.Int)(body.Amount)); err != nil {
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, a.getAccount(addr))
}

func (a *Accounts) handleMint(w http.ResponseWriter, req *http.Request) error {
	if !a.faucet {
		return utils.Forbidden(errors.New("faucet disabled"))
	}
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.TokenID == nil {
		return utils.BadRequest(errors.New("tokenID: required"))
	}
	ref := meter.AssetRef{Contract: body.Contract, TokenID: (*big.Int)(body.TokenID)}
	if err := a.registry.Mint(ref, addr); err != nil {
		if errors.Is(err, ledger.ErrAssetExists) {
			return utils.HTTPError(err, http.StatusConflict)
		}
		return utils.BadRequest(err)
	}
	return utils.WriteJSON(w, a.getAccount(addr))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	sub.Path("/{address}/deposit").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleDeposit))
	sub.Path("/{address}/assets").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(a.handleMint))
}
