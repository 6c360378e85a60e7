// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"
	"sync"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// guard marks auctions and assets that have an operation in flight. It never
// blocks: a second operation on a busy key fails at once, which also stops a
// transfer callback from re-entering the engine on the same auction.
type guard struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func newGuard() *guard {
	return &guard{busy: make(map[string]struct{})}
}

func auctionLock(id uint64) string {
	return fmt.Sprintf("auction/%d", id)
}

func assetLock(ref meter.AssetRef) string {
	return "asset/" + ref.Key()
}

// acquire takes all keys or none.
func (g *guard) acquire(keys ...string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, k := range keys {
		if _, ok := g.busy[k]; ok {
			return nil, errors.Wrap(ErrOperationInProgress, k)
		}
	}
	for _, k := range keys {
		g.busy[k] = struct{}{}
	}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for _, k := range keys {
			delete(g.busy, k)
		}
	}, nil
}
