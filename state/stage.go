// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

type escrowID struct {
	auctionID uint64
	addr      meter.Address
}

// Stage collects the mutations of one operation and writes them in a single
// batch, so an operation is either fully persisted or not at all.
type Stage struct {
	s   *State
	err error

	auctions map[uint64]*meter.Auction
	escrow   map[escrowID]*big.Int
	batch    *leveldb.Batch
	nextID   uint64
}

// NewStage starts an empty set of changes against the state.
func (s *State) NewStage() *Stage {
	return &Stage{
		s:        s,
		auctions: make(map[uint64]*meter.Auction),
		escrow:   make(map[escrowID]*big.Int),
		batch:    new(leveldb.Batch),
	}
}

// AllocateID reserves a fresh auction id.
func (st *Stage) AllocateID() uint64 {
	id := st.s.reserveID()
	if id > st.nextID {
		st.nextID = id
	}
	return id
}

func (st *Stage) SetAuction(a *meter.Auction) {
	if st.err != nil {
		return
	}
	raw, err := rlp.EncodeToBytes(a)
	if err != nil {
		st.err = errors.Wrapf(err, "encode auction %d", a.ID)
		return
	}
	st.auctions[a.ID] = a.Copy()
	st.batch.Put(auctionKey(a.ID), raw)
}

// GetEscrow reads through staged changes first.
func (st *Stage) GetEscrow(auctionID uint64, addr meter.Address) (*big.Int, error) {
	if v, ok := st.escrow[escrowID{auctionID, addr}]; ok {
		return new(big.Int).Set(v), nil
	}
	return st.s.GetEscrow(auctionID, addr)
}

func (st *Stage) SetEscrow(auctionID uint64, addr meter.Address, amount *big.Int) {
	if st.err != nil {
		return
	}
	if amount.Sign() < 0 {
		st.err = errors.Errorf("negative escrow %v for %d/%v", amount, auctionID, addr)
		return
	}
	st.escrow[escrowID{auctionID, addr}] = new(big.Int).Set(amount)
	st.batch.Put(escrowKey(auctionID, addr), amount.Bytes())
}

// AddEscrow credits amount on top of whatever addr already holds.
func (st *Stage) AddEscrow(auctionID uint64, addr meter.Address, amount *big.Int) {
	if st.err != nil {
		return
	}
	cur, err := st.GetEscrow(auctionID, addr)
	if err != nil {
		st.err = err
		return
	}
	st.SetEscrow(auctionID, addr, cur.Add(cur, amount))
}

func (st *Stage) AppendBid(b *meter.Bid) {
	if st.err != nil {
		return
	}
	raw, err := rlp.EncodeToBytes(b)
	if err != nil {
		st.err = errors.Wrapf(err, "encode bid of auction %d", b.AuctionID)
		return
	}
	st.batch.Put(bidKey(b.AuctionID, b.Seq), raw)
}

func (st *Stage) RemoveBid(auctionID uint64, seq uint32) {
	st.batch.Delete(bidKey(auctionID, seq))
}

// Commit writes all staged changes atomically. A stage must not be reused
// after Commit.
func (st *Stage) Commit() error {
	if st.err != nil {
		return st.err
	}
	start := time.Now()
	if st.nextID > 0 {
		st.batch.Put(nextIDKey, uint64Bytes(st.s.LastAuctionID()))
	}
	if err := st.s.db.Write(st.batch, nil); err != nil {
		// drop cached copies, the db is the reference
		for id := range st.auctions {
			st.s.cache.Remove(id)
		}
		return errors.Wrap(err, "commit stage")
	}
	for id, a := range st.auctions {
		st.s.cache.Add(id, a)
	}
	st.s.logger.Debug("stage committed", "auctions", len(st.auctions), "escrow", len(st.escrow), "elapsed", meter.PrettyDuration(time.Since(start)))
	return nil
}
