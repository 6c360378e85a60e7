// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"log/slog"
	"math/big"
	"sort"
	"sync"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// AssetHook runs before ref, sent by from, lands at the hooked address.
type AssetHook func(ref meter.AssetRef, from meter.Address) error

type holding struct {
	ref   meter.AssetRef
	owner meter.Address
}

// Registry tracks the custodian of every minted asset.
type Registry struct {
	mu       sync.Mutex
	holdings map[string]*holding
	hooks    map[meter.Address]AssetHook
	logger   *slog.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		holdings: make(map[string]*holding),
		hooks:    make(map[meter.Address]AssetHook),
		logger:   slog.Default().With("pkg", "registry"),
	}
}

func (r *Registry) Mint(ref meter.AssetRef, owner meter.Address) error {
	if ref.TokenID == nil || ref.TokenID.Sign() < 0 || ref.Contract.IsZero() {
		return errors.Wrapf(ErrUnknownAsset, "bad asset %v", ref)
	}
	if owner.IsZero() {
		return ErrInvalidRecipient
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holdings[ref.Key()]; ok {
		return errors.Wrap(ErrAssetExists, ref.String())
	}
	r.holdings[ref.Key()] = &holding{ref: copyRef(ref), owner: owner}
	r.logger.Debug("asset minted", "asset", ref, "owner", owner)
	return nil
}

func (r *Registry) OwnerOf(ref meter.AssetRef) (meter.Address, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holdings[ref.Key()]
	if !ok {
		return meter.ZeroAddress, false
	}
	return h.owner, true
}

// AssetsOf lists the assets held by owner ordered by key.
func (r *Registry) AssetsOf(owner meter.Address) []meter.AssetRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make([]meter.AssetRef, 0)
	for _, h := range r.holdings {
		if h.owner == owner {
			refs = append(refs, copyRef(h.ref))
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key() < refs[j].Key() })
	return refs
}

// OnReceive installs hook for transfers into addr. A nil hook removes it.
func (r *Registry) OnReceive(addr meter.Address, hook AssetHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hook == nil {
		delete(r.hooks, addr)
		return
	}
	r.hooks[addr] = hook
}

func (r *Registry) checkOwner(ref meter.AssetRef, from meter.Address) error {
	h, ok := r.holdings[ref.Key()]
	if !ok {
		return errors.Wrap(ErrUnknownAsset, ref.String())
	}
	if h.owner != from {
		return errors.Wrapf(ErrNotCustodian, "%v holds %v, not %v", h.owner, ref, from)
	}
	return nil
}

// TransferAsset moves ref from its custodian to to. The receiver hook runs
// without the registry lock held.
func (r *Registry) TransferAsset(ref meter.AssetRef, from, to meter.Address) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	r.mu.Lock()
	if err := r.checkOwner(ref, from); err != nil {
		r.mu.Unlock()
		return err
	}
	hook := r.hooks[to]
	r.mu.Unlock()

	if hook != nil {
		if err := hook(ref, from); err != nil {
			return errors.Wrap(ErrRejected, err.Error())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// the hook may have moved the asset
	if err := r.checkOwner(ref, from); err != nil {
		return err
	}
	r.holdings[ref.Key()].owner = to
	r.logger.Debug("asset transferred", "asset", ref, "from", from, "to", to)
	return nil
}

func copyRef(ref meter.AssetRef) meter.AssetRef {
	c := meter.AssetRef{Contract: ref.Contract}
	if ref.TokenID != nil {
		c.TokenID = new(big.Int).Set(ref.TokenID)
	}
	return c
}
