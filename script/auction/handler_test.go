// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBody(ref meter.AssetRef, start uint64) *auction.AuctionBody {
	return &auction.AuctionBody{
		Opcode:          meter.OP_CREATE,
		Type:            meter.ENGLISH,
		Contract:        ref.Contract,
		TokenID:         ref.TokenID,
		StartPrice:      big.NewInt(100),
		EndPrice:        big.NewInt(1000),
		StartTime:       start,
		EndTime:         start + 3600,
		MinBidIncrement: big.NewInt(10),
	}
}

func TestHandleDispatch(t *testing.T) {
	f := newFixture(t)
	ref := f.mint(1)

	env := f.engine.NewEnv(ctx, seller)
	out, err := f.engine.Handle(env, auction.EncodeToBytes(createBody(ref, genesisTime)))
	require.NoError(t, err)
	var id uint64
	require.NoError(t, rlp.DecodeBytes(out.GetData(), &id))
	assert.Equal(t, uint64(1), id)
	require.Len(t, out.GetTransfers(), 1)
	assert.Equal(t, engineAddr, out.GetTransfers()[0].Recipient)
	require.Len(t, out.GetEvents(), 1)
	assert.Equal(t, meter.AuctionCreated, out.GetEvents()[0].Type)

	_, err = f.engine.Handle(f.engine.NewEnv(ctx, seller), auction.EncodeToBytes(&auction.AuctionBody{Opcode: meter.OP_START, AuctionID: id}))
	require.NoError(t, err)

	bid := &auction.AuctionBody{Opcode: meter.OP_BID, AuctionID: id, Amount: big.NewInt(100)}
	_, err = f.engine.Handle(f.engine.NewEnv(ctx, alice), auction.EncodeToBytes(bid))
	require.NoError(t, err)
	assert.Equal(t, alice, *f.get(id).HighestBidder)

	bid.Amount = big.NewInt(50)
	_, err = f.engine.Handle(f.engine.NewEnv(ctx, bob), auction.EncodeToBytes(bid))
	assert.True(t, errors.Is(err, auction.ErrBidTooLow), "got %v", err)
}

func TestHandleRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Handle(f.engine.NewEnv(ctx, seller), []byte{0x01, 0x02})
	assert.True(t, errors.Is(err, auction.ErrInvalidParameters), "got %v", err)

	_, err = f.engine.Handle(f.engine.NewEnv(ctx, seller), auction.EncodeToBytes(&auction.AuctionBody{Opcode: 99}))
	assert.True(t, errors.Is(err, auction.ErrInvalidParameters), "got %v", err)
	assert.Equal(t, "InvalidParameters", auction.Kind(err))
}

func TestBodyUniteHash(t *testing.T) {
	a := createBody(token(1), genesisTime)
	b := createBody(token(1), genesisTime)
	assert.Equal(t, a.UniteHash(), b.UniteHash())

	b.Nonce = 1
	assert.NotEqual(t, a.UniteHash(), b.UniteHash())

	decoded, err := auction.DecodeFromBytes(auction.EncodeToBytes(a))
	require.NoError(t, err)
	assert.Equal(t, a.UniteHash(), decoded.UniteHash())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "", auction.Kind(nil))
	assert.Equal(t, "Internal", auction.Kind(errors.New("disk on fire")))
	assert.Equal(t, "TooLate", auction.Kind(auction.ErrTooLate))

	f := newFixture(t)
	err := f.engine.Start(ctx, 7, seller)
	assert.Equal(t, "NotFound", auction.Kind(err))
}
