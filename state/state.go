// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const auctionCacheSize = 4096

var (
	auctionPrefix = []byte("a")
	escrowPrefix  = []byte("e")
	bidPrefix     = []byte("b")
	nextIDKey     = []byte("m-next-auction-id")
)

// State owns every auction record, the escrow ledger and the bid history.
// Reads return copies; writes only go through a Stage.
type State struct {
	db     *leveldb.DB
	cache  *lru.Cache
	logger *slog.Logger

	mu     sync.Mutex // guards lastID
	lastID uint64
}

// New opens or creates the store under the given directory.
func New(path string) (*State, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb")
	}
	return newState(db)
}

// NewMem creates a store that lives in memory only.
func NewMem() (*State, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open mem leveldb")
	}
	return newState(db)
}

func newState(db *leveldb.DB) (*State, error) {
	cache, err := lru.New(auctionCacheSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &State{
		db:     db,
		cache:  cache,
		logger: slog.Default().With("pkg", "state"),
	}

	raw, err := db.Get(nextIDKey, nil)
	switch {
	case err == leveldb.ErrNotFound:
	case err != nil:
		db.Close()
		return nil, errors.Wrap(err, "load auction id sequence")
	case len(raw) == 8:
		s.lastID = binary.BigEndian.Uint64(raw)
	default:
		db.Close()
		return nil, errors.Errorf("corrupted auction id sequence (%d bytes)", len(raw))
	}
	s.logger.Debug("state opened", "lastID", s.lastID)
	return s, nil
}

// Close closes the underlying database.
func (s *State) Close() error {
	return s.db.Close()
}

// LastAuctionID returns the highest id handed out so far, 0 if none.
func (s *State) LastAuctionID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastID
}

// reserveID hands out the next id. Ids are consumed even if the stage that
// reserved them never commits, so they are never reused.
func (s *State) reserveID() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID
}

func (s *State) get(key []byte) ([]byte, bool, error) {
	raw, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func uint64Bytes(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func join(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	key := make([]byte, 0, n)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}
