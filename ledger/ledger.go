// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger provides in-memory asset custody and native value accounts
// for running the auction engine standalone. Receivers may register hooks
// that run before a transfer lands; a hook error rejects the transfer and a
// hook may call back into the engine.
package ledger

import "github.com/pkg/errors"

var (
	ErrUnknownAsset        = errors.New("unknown asset")
	ErrAssetExists         = errors.New("asset already minted")
	ErrNotCustodian        = errors.New("sender is not the custodian")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrRejected            = errors.New("rejected by recipient")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)
