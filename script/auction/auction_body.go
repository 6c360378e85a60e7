// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
)

// AuctionBody is the RLP envelope of one engine operation. Create fields are
// ignored by every other opcode.
type AuctionBody struct {
	Opcode    uint32
	Version   uint32
	AuctionID uint64
	Amount    *big.Int

	Type              meter.AuctionType
	Contract          meter.Address
	TokenID           *big.Int
	StartPrice        *big.Int
	EndPrice          *big.Int
	StartTime         uint64
	EndTime           uint64
	MinBidIncrement   *big.Int
	PriceDropInterval uint64

	Nonce uint64
}

func (ab *AuctionBody) ToString() string {
	return fmt.Sprintf("AuctionBody: Opcode=%v, Version=%v, AuctionID=%v, Amount=%v, Type=%v, Asset=%v/%v, StartPrice=%v, EndPrice=%v, StartTime=%v, EndTime=%v, MinBidIncrement=%v, PriceDropInterval=%v, Nonce=%v",
		meter.GetOpName(ab.Opcode), ab.Version, ab.AuctionID, ab.Amount, ab.Type, ab.Contract, ab.TokenID, ab.StartPrice, ab.EndPrice, ab.StartTime, ab.EndTime, ab.MinBidIncrement, ab.PriceDropInterval, ab.Nonce)
}

func (ab *AuctionBody) CreateParams() *CreateParams {
	return &CreateParams{
		Asset:             meter.AssetRef{Contract: ab.Contract, TokenID: ab.TokenID},
		Type:              ab.Type,
		StartPrice:        ab.StartPrice,
		EndPrice:          ab.EndPrice,
		StartTime:         ab.StartTime,
		EndTime:           ab.EndTime,
		MinBidIncrement:   ab.MinBidIncrement,
		PriceDropInterval: ab.PriceDropInterval,
	}
}

// UniteHash identifies the operation independent of its transport.
func (ab *AuctionBody) UniteHash() (hash meter.Bytes32) {
	hw := meter.NewBlake2b()
	err := rlp.Encode(hw, ab)
	if err != nil {
		log.Error("rlp encode failed", "error", err)
		return
	}
	hw.Sum(hash[:0])
	return
}

func EncodeToBytes(ab *AuctionBody) []byte {
	auctionBytes, err := rlp.EncodeToBytes(ab)
	if err != nil {
		log.Error("rlp encode failed", "error", err)
		return []byte{}
	}
	return auctionBytes
}

func DecodeFromBytes(bytes []byte) (*AuctionBody, error) {
	ab := AuctionBody{}
	err := rlp.DecodeBytes(bytes, &ab)
	return &ab, err
}
