// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small concurrency helpers shared by the daemon.
package co

import (
	"runtime"
	"sync"
)

// Goes to replace tons of uses of sync.WaitGroup.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait waits for all goroutines started by Go.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once Wait would return.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()
	return done
}

// Parallel runs the funcs fed into queue on NumCPU workers. The returned
// channel is closed after cb returns and every queued func finished.
func Parallel(cb func(queue chan<- func())) <-chan struct{} {
	queue := make(chan func())
	var goes Goes
	for i := 0; i < runtime.NumCPU(); i++ {
		goes.Go(func() {
			for f := range queue {
				f()
			}
		})
	}
	go func() {
		cb(queue)
		close(queue)
	}()
	return goes.Done()
}
