// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = meter.BytesToAddress([]byte("alice"))
	bob   = meter.BytesToAddress([]byte("bob"))
	asset = meter.AssetRef{Contract: meter.BytesToAddress([]byte("collection")), TokenID: big.NewInt(7)}
)

func fill(t *testing.T, db *logdb.LogDB, count int) {
	for i := 0; i < count; i++ {
		account := alice
		if i%2 == 1 {
			account = bob
		}
		db.Emit(&meter.AuctionEvent{
			Type:      meter.BidPlaced,
			AuctionID: uint64(i%5 + 1),
			Account:   account,
			Amount:    big.NewInt(int64(100 + i)),
			Timestamp: uint64(1000 + i),
			EndTime:   5000,
			Asset:     asset,
		})
	}
}

func TestEvents(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	fill(t, db, 100)

	all, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 100)
	assert.Equal(t, uint64(1), all[0].Seq)
	assert.Equal(t, alice, all[0].Account)
	assert.Equal(t, "100", all[0].Amount.String())
	assert.Equal(t, asset.String(), all[0].Asset.String())
	assert.Equal(t, meter.BidPlaced, all[0].Type)

	limit := 5
	id := uint64(2)
	es, err := db.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{AuctionID: &id}},
		Options:     &logdb.Options{Offset: 0, Limit: uint64(limit)},
		Order:       logdb.DESC,
	})
	require.NoError(t, err)
	assert.Equal(t, limit, len(es), "limit should be equal")
	for _, e := range es {
		assert.Equal(t, id, e.AuctionID)
	}
	assert.True(t, es[0].Seq > es[1].Seq)
}

func TestFilterCriteria(t *testing.T) {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	fill(t, db, 20)
	settled := meter.AuctionSettled
	db.Emit(&meter.AuctionEvent{Type: settled, AuctionID: 3, Account: bob, Amount: big.NewInt(500), Timestamp: 2000})

	ctx := context.Background()
	es, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Account: &bob}},
		Range:       &logdb.Range{From: 1000, To: 1009},
	})
	require.NoError(t, err)
	assert.Len(t, es, 5)

	id := uint64(1)
	es, err = db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Type: &settled}, {AuctionID: &id, Account: &alice}},
	})
	require.NoError(t, err)
	// auction 1 gets i = 0, 5, 10, 15; alice only the even ones
	assert.Len(t, es, 3)
	assert.Equal(t, meter.AuctionSettled, es[2].Type)
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	fill(t, db, 3)
	db.Close()

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	es, err := db.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, es, 3)
	assert.Equal(t, path, db.Path())
}
