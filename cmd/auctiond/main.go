// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/meterio/meter-auction/api"
	"github.com/meterio/meter-auction/api/subscriptions"
	"github.com/meterio/meter-auction/co"
	"github.com/meterio/meter-auction/ledger"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/meter"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
	"github.com/meterio/meter-auction/state"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "auctiond",
		Usage:     "NFT auction engine of Meter.io",
		Copyright: "2020 Meter Foundation <https://meter.io/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			verbosityFlag,
			persistFlag,
			faucetFlag,
			ntpServerFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "inspect",
				Usage: "dump one persisted auction with its bids",
				Flags: []cli.Flag{
					dataDirFlag,
					auctionIDFlag,
				},
				Action: inspectAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	initLogger(*cfg.Verbosity)
	go checkClockOffset(cfg.NTPServer)

	var (
		st    *state.State
		logDB *logdb.LogDB
	)
	if cfg.Persist {
		dataDir := makeDataDir(cfg.DataDir)
		st = openState(dataDir)
		logDB = openLogDB(dataDir)
	} else {
		st = openMemState()
		logDB = openMemLogDB()
	}
	defer func() { slog.Info("closing auction database..."); st.Close() }()
	defer func() { slog.Info("closing log database..."); logDB.Close() }()

	bank := ledger.NewBank(meter.AuctionModuleAddr)
	registry := ledger.NewRegistry()
	if err := seedLedger(cfg, bank, registry); err != nil {
		return err
	}

	origins := api.ParseOrigins(cfg.APICors)
	subs := subscriptions.New(origins)
	engine := auction.NewAuction(st, registry, bank, auction.SystemClock{}, auction.FanOut{logDB, subs})
	se := script.NewScriptEngine(engine)

	apiHandler, apiCloser := api.New(engine, se, bank, registry, logDB, subs, origins, cfg.Faucet)
	defer func() { slog.Info("closing subscriptions..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(cfg, apiHandler)
	metricsURL, metricsCloser := startMetricsServer(cfg.MetricsAddr)
	defer func() {
		slog.Info("stopping API and metrics servers...")
		<-co.Parallel(func(queue chan<- func()) {
			queue <- srvCloser
			queue <- metricsCloser
		})
	}()

	printStartupMessage(cfg, st, logDB, apiURL, metricsURL)
	<-exitSignal.Done()
	return nil
}

func inspectAction(ctx *cli.Context) error {
	dataDir := ctx.String(dataDirFlag.Name)
	st, err := state.New(filepath.Join(dataDir, "auction.db"))
	if err != nil {
		return errors.WithMessage(err, "open auction database")
	}
	defer st.Close()

	id := ctx.Uint64(auctionIDFlag.Name)
	if id == 0 {
		id = st.LastAuctionID()
	}
	rec, ok, err := st.GetAuction(id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("auction %d not found (last id %d)", id, st.LastAuctionID())
	}
	bids, err := st.GetBids(id)
	if err != nil {
		return err
	}
	fmt.Println(rec.ToString())
	spew.Dump(rec, bids)
	return nil
}
