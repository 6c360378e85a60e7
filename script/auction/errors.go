// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/pkg/errors"

var (
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrNotFound              = errors.New("auction not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidState          = errors.New("invalid state")
	ErrAlreadyStarted        = errors.New("auction already started")
	ErrTooEarly              = errors.New("too early")
	ErrTooLate               = errors.New("too late")
	ErrBidTooLow             = errors.New("bid too low")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrBidsAlreadyExist      = errors.New("bids already exist")
	ErrNothingToWithdraw     = errors.New("nothing to withdraw")
	ErrCustodyTransferFailed = errors.New("custody transfer failed")
	ErrValueTransferFailed   = errors.New("value transfer failed")
	ErrOperationInProgress   = errors.New("operation in progress")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidParameters, "InvalidParameters"},
	{ErrNotFound, "NotFound"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrInvalidState, "InvalidState"},
	{ErrAlreadyStarted, "AlreadyStarted"},
	{ErrTooEarly, "TooEarly"},
	{ErrTooLate, "TooLate"},
	{ErrBidTooLow, "BidTooLow"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrBidsAlreadyExist, "BidsAlreadyExist"},
	{ErrNothingToWithdraw, "NothingToWithdraw"},
	{ErrCustodyTransferFailed, "CustodyTransferFailed"},
	{ErrValueTransferFailed, "ValueTransferFailed"},
	{ErrOperationInProgress, "OperationInProgress"},
}

// Kind names the error kind of err, or returns "Internal" for errors that do
// not originate from a failed precondition or transfer.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}
