// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"bytes"
	"encoding/hex"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/meter-auction/script/auction"
	setypes "github.com/meterio/meter-auction/script/types"
	"github.com/pkg/errors"
)

var ErrBadScript = errors.New("bad script data")

type ScriptEngine struct {
	logger *slog.Logger
	modReg Registry
}

func NewScriptEngine(a *auction.Auction) *ScriptEngine {
	se := &ScriptEngine{
		logger: slog.Default().With("pkg", "se"),
	}
	ModuleAuctionInit(se, a)
	return se
}

// HandleScriptData checks the pattern, decodes the header and hands the
// payload to the addressed module.
func (se *ScriptEngine) HandleScriptData(senv *setypes.ScriptEnv, data []byte) (*setypes.ScriptEngineOutput, error) {
	if len(data) < len(ScriptPattern) || !bytes.Equal(data[:len(ScriptPattern)], ScriptPattern[:]) {
		n := len(data)
		if n > len(ScriptPattern) {
			n = len(ScriptPattern)
		}
		return nil, errors.Wrapf(ErrBadScript, "pattern mismatch, pattern = %v", hex.EncodeToString(data[:n]))
	}
	script, err := DecodeScriptData(data[len(ScriptPattern):])
	if err != nil {
		se.logger.Info("Decode script message failed", "err", err)
		return nil, errors.Wrap(ErrBadScript, err.Error())
	}

	header := script.Header
	mod, find := se.modReg.Find(header.GetModID())
	if !find {
		return nil, errors.Wrapf(ErrBadScript, "could not address module %v", header.GetModID())
	}
	se.logger.Debug("script header", "header", header.ToString(), "module", mod.ToString())

	return mod.modHandler(senv, script.Payload)
}

func EncodeScriptData(body interface{}) ([]byte, error) {
	var modID uint32
	switch body.(type) {
	case auction.AuctionBody, *auction.AuctionBody:
		modID = AUCTION_MODULE_ID
	default:
		return []byte{}, errors.New("unrecognized body")
	}
	payload, err := rlp.EncodeToBytes(body)
	if err != nil {
		return []byte{}, errors.Wrap(err, "rlp encode body")
	}
	s := (&Builder{}).SetVersion(0).SetModID(modID).SetPayload(payload).Build()
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return []byte{}, errors.Wrap(err, "rlp encode script data")
	}
	return append(ScriptPattern[:], data...), nil
}
