// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"log/slog"
	"math/big"
	"sync"

	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// ValueHook runs before amount lands at the hooked address.
type ValueHook func(amount *big.Int) error

// Bank keeps native balances. The engine account pays out through SendValue
// and is funded by Charge.
type Bank struct {
	mu       sync.Mutex
	engine   meter.Address
	balances map[meter.Address]*big.Int
	hooks    map[meter.Address]ValueHook
	logger   *slog.Logger
}

func NewBank(engine meter.Address) *Bank {
	return &Bank{
		engine:   engine,
		balances: make(map[meter.Address]*big.Int),
		hooks:    make(map[meter.Address]ValueHook),
		logger:   slog.Default().With("pkg", "bank"),
	}
}

func (b *Bank) balance(addr meter.Address) *big.Int {
	v, ok := b.balances[addr]
	if !ok {
		v = new(big.Int)
		b.balances[addr] = v
	}
	return v
}

func (b *Bank) BalanceOf(addr meter.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return new(big.Int).Set(b.balance(addr))
}

// Deposit credits addr out of thin air.
func (b *Bank) Deposit(addr meter.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal := b.balance(addr)
	bal.Add(bal, amount)
	return nil
}

// Charge moves amount from addr into the engine account.
func (b *Bank) Charge(from meter.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.move(from, b.engine, amount)
}

func (b *Bank) move(from, to meter.Address, amount *big.Int) error {
	src := b.balance(from)
	if src.Cmp(amount) < 0 {
		return errors.Wrapf(ErrInsufficientBalance, "%v has %v, needs %v", from, src, amount)
	}
	src.Sub(src, amount)
	dst := b.balance(to)
	dst.Add(dst, amount)
	return nil
}

// OnReceive installs hook for payments into addr. A nil hook removes it.
func (b *Bank) OnReceive(addr meter.Address, hook ValueHook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hook == nil {
		delete(b.hooks, addr)
		return
	}
	b.hooks[addr] = hook
}

// SendValue pays amount out of the engine account. The receiver hook runs
// without the bank lock held.
func (b *Bank) SendValue(to meter.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	b.mu.Lock()
	if bal := b.balance(b.engine); bal.Cmp(amount) < 0 {
		b.mu.Unlock()
		return errors.Wrapf(ErrInsufficientBalance, "engine has %v, needs %v", bal, amount)
	}
	hook := b.hooks[to]
	b.mu.Unlock()

	if hook != nil {
		if err := hook(new(big.Int).Set(amount)); err != nil {
			return errors.Wrap(ErrRejected, err.Error())
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.move(b.engine, to, amount); err != nil {
		return err
	}
	b.logger.Debug("value sent", "to", to, "amount", amount)
	return nil
}
