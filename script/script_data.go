// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script/auction"
)

type ScriptData struct {
	Header  ScriptHeader
	Payload []byte
}

// UniteHash hashes the header with the decoded body hash, so two encodings of
// the same operation hash alike.
func (s *ScriptData) UniteHash() (hash meter.Bytes32) {
	hw := meter.NewBlake2b()

	var bodyHash meter.Bytes32
	switch s.Header.ModID {
	case AUCTION_MODULE_ID:
		ab, err := auction.DecodeFromBytes(s.Payload)
		if err != nil {
			bodyHash = meter.Blake2b(s.Payload)
		} else {
			bodyHash = ab.UniteHash()
		}
	default:
		bodyHash = meter.Blake2b(s.Payload)
	}
	err := rlp.Encode(hw, []interface{}{
		s.Header.Version,
		s.Header.ModID,
		bodyHash,
	})
	if err != nil {
		return
	}

	hw.Sum(hash[:0])
	return
}

func DecodeScriptData(bytes []byte) (*ScriptData, error) {
	script := ScriptData{}
	err := rlp.DecodeBytes(bytes, &script)
	return &script, err
}
