// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"sync"
	"time"

	"github.com/meterio/meter-auction/meter"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	opsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_operations_total",
		Help: "Counter of auction operations by opcode and outcome",
	}, []string{"op", "result"})
	opDurationHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auction_operation_duration_seconds",
		Help:    "Time spent in auction operations",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"op"})

	metricsOnce sync.Once
)

func registerMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(opsCounter)
		prometheus.MustRegister(opDurationHist)
	})
}

func observe(op uint32, start time.Time, err error) {
	name := meter.GetOpName(op)
	result := "ok"
	if err != nil {
		result = Kind(err)
	}
	opsCounter.WithLabelValues(name, result).Inc()
	opDurationHist.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
