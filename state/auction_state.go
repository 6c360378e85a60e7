// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func auctionKey(id uint64) []byte {
	return join(auctionPrefix, uint64Bytes(id))
}

func bidKey(auctionID uint64, seq uint32) []byte {
	return join(bidPrefix, uint64Bytes(auctionID), uint64Bytes(uint64(seq))[4:])
}

// GetAuction loads the record with the given id. The returned record is a
// copy and may be modified freely.
func (s *State) GetAuction(id uint64) (*meter.Auction, bool, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached.(*meter.Auction).Copy(), true, nil
	}
	raw, found, err := s.get(auctionKey(id))
	if err != nil {
		return nil, false, errors.Wrapf(err, "get auction %d", id)
	}
	if !found {
		return nil, false, nil
	}
	var a meter.Auction
	if err := rlp.DecodeBytes(raw, &a); err != nil {
		return nil, false, errors.Wrapf(err, "decode auction %d", id)
	}
	s.cache.Add(id, a.Copy())
	return &a, true, nil
}

// GetBids returns the bid history of an auction in acceptance order.
func (s *State) GetBids(auctionID uint64) ([]*meter.Bid, error) {
	it := s.db.NewIterator(util.BytesPrefix(join(bidPrefix, uint64Bytes(auctionID))), nil)
	defer it.Release()

	bids := make([]*meter.Bid, 0)
	for it.Next() {
		var b meter.Bid
		if err := rlp.DecodeBytes(it.Value(), &b); err != nil {
			return nil, errors.Wrapf(err, "decode bid of auction %d", auctionID)
		}
		bids = append(bids, &b)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(err, "iterate bids of auction %d", auctionID)
	}
	return bids, nil
}
