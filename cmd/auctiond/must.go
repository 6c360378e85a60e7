// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/ntp"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/state"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const clockOffsetTolerance = time.Second

// logLevel maps the 0-4 verbosity scale onto slog levels.
func logLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 1:
		return slog.LevelError
	case verbosity == 2:
		return slog.LevelWarn
	case verbosity == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

func initLogger(verbosity int) {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel(verbosity),
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})))
}

func checkClockOffset(server string) {
	if server == "" {
		return
	}
	resp, err := ntp.Query(server)
	if err != nil {
		slog.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > clockOffsetTolerance {
		slog.Warn("clock offset detected", "offset", meter.PrettyDuration(resp.ClockOffset))
	}
}

func makeDataDir(dataDir string) string {
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func openState(dataDir string) *state.State {
	dir := filepath.Join(dataDir, "auction.db")
	st, err := state.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open auction database [%v]: %v", dir, err))
	}
	return st
}

func openMemState() *state.State {
	st, err := state.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open auction database: %v", err))
	}
	return st
}

func openLogDB(dataDir string) *logdb.LogDB {
	dir := filepath.Join(dataDir, "events.db")
	db, err := logdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open log database [%v]: %v", dir, err))
	}
	return db
}

func openMemLogDB() *logdb.LogDB {
	db, err := logdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open log database: %v", err))
	}
	return db
}

func startAPIServer(cfg *Config, handler http.Handler) (string, func()) {
	listener, err := net.Listen("tcp", cfg.APIAddr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", cfg.APIAddr, err))
	}
	if cfg.APITimeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(cfg.APITimeout)*time.Millisecond)
	}
	handler = handleXAuctionVersion(handler)
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Println("API service stopped, error:", err)
		}
	})
	return "http://" + listener.Addr().String() + "/", func() {
		if err := srv.Close(); err != nil {
			fmt.Println("could not close API service, error:", err)
		}
		goes.Wait()
	}
}

func startMetricsServer(addr string) (string, func()) {
	if addr == "" {
		return "disabled", func() {}
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen metrics addr [%v]: %v", addr, err))
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fullVersion()))
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Println("metrics server stopped, error:", err)
		}
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		if err := srv.Close(); err != nil {
			fmt.Println("can't close metrics service, error:", err)
		}
		goes.Wait()
	}
}

func printStartupMessage(cfg *Config, st *state.State, logDB *logdb.LogDB, apiURL, metricsURL string) {
	storage := "memory"
	if cfg.Persist {
		storage = cfg.DataDir
	}
	fmt.Printf(`Starting %v
    Storage         [ %v ]
    Last auction    [ #%v ]
    Event db        [ sqlite %v ]
    Faucet          [ %v ]
    API portal      [ %v ]
    Metrics         [ %v ]
`,
		"auctiond "+fullVersion(),
		storage,
		st.LastAuctionID(),
		logDB.DriverVersion(),
		cfg.Faucet,
		apiURL,
		metricsURL)
}
