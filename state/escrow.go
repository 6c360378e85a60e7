// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

func escrowKey(auctionID uint64, addr meter.Address) []byte {
	return join(escrowPrefix, uint64Bytes(auctionID), addr.Bytes())
}

// GetEscrow returns the withdrawable balance of addr in the given auction.
// Absent entries read as zero.
func (s *State) GetEscrow(auctionID uint64, addr meter.Address) (*big.Int, error) {
	raw, _, err := s.get(escrowKey(auctionID, addr))
	if err != nil {
		return nil, errors.Wrapf(err, "get escrow %d/%v", auctionID, addr)
	}
	return new(big.Int).SetBytes(raw), nil
}
