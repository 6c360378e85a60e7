// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io/ioutil"
	"math/big"

	"github.com/meterio/meter-auction/ledger"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	yaml "gopkg.in/yaml.v2"
)

// Config is the daemon configuration. Zero values mean "use the flag".
type Config struct {
	DataDir     string `yaml:"data-dir"`
	APIAddr     string `yaml:"api-addr"`
	APICors     string `yaml:"api-cors"`
	APITimeout  int    `yaml:"api-timeout"`
	Verbosity   *int   `yaml:"verbosity"`
	Persist     bool   `yaml:"persist"`
	Faucet      bool   `yaml:"faucet"`
	NTPServer   string `yaml:"ntp-server"`
	MetricsAddr string `yaml:"metrics-addr"`

	// Accounts are credited and minted at startup.
	Accounts []SeedAccount `yaml:"accounts"`
}

type SeedAccount struct {
	Address string      `yaml:"address"`
	Balance string      `yaml:"balance"`
	Assets  []SeedAsset `yaml:"assets"`
}

type SeedAsset struct {
	Contract string `yaml:"contract"`
	TokenID  string `yaml:"token-id"`
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return &cfg, nil
}

func readConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return parseConfig(data)
}

// loadConfig merges the config file, if any, with the command line.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := &Config{}
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = readConfig(path); err != nil {
			return nil, err
		}
	}

	str := func(dst *string, flag cli.StringFlag) {
		if *dst == "" || ctx.IsSet(flag.Name) {
			*dst = ctx.String(flag.Name)
		}
	}
	str(&cfg.DataDir, dataDirFlag)
	str(&cfg.APIAddr, apiAddrFlag)
	str(&cfg.APICors, apiCorsFlag)
	if ctx.IsSet(ntpServerFlag.Name) || cfg.NTPServer == "" {
		cfg.NTPServer = ctx.String(ntpServerFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) || cfg.MetricsAddr == "" {
		cfg.MetricsAddr = ctx.String(metricsAddrFlag.Name)
	}
	if cfg.APITimeout == 0 || ctx.IsSet(apiTimeoutFlag.Name) {
		cfg.APITimeout = ctx.Int(apiTimeoutFlag.Name)
	}
	if cfg.Verbosity == nil || ctx.IsSet(verbosityFlag.Name) {
		v := ctx.Int(verbosityFlag.Name)
		cfg.Verbosity = &v
	}
	cfg.Persist = cfg.Persist || ctx.Bool(persistFlag.Name)
	cfg.Faucet = cfg.Faucet || ctx.Bool(faucetFlag.Name)
	return cfg, nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// seedLedger credits and mints what the config lists.
func seedLedger(cfg *Config, bank *ledger.Bank, registry *ledger.Registry) error {
	for _, acc := range cfg.Accounts {
		addr, err := meter.ParseAddress(acc.Address)
		if err != nil {
			return errors.WithMessagef(err, "seed account %q", acc.Address)
		}
		if acc.Balance != "" {
			v, err := parseAmount(acc.Balance)
			if err != nil {
				return errors.WithMessagef(err, "seed account %v", addr)
			}
			if err := bank.Deposit(addr, v); err != nil {
				return errors.WithMessagef(err, "seed account %v", addr)
			}
		}
		for _, asset := range acc.Assets {
			contract, err := meter.ParseAddress(asset.Contract)
			if err != nil {
				return errors.WithMessagef(err, "seed asset of %v", addr)
			}
			tokenID, err := parseAmount(asset.TokenID)
			if err != nil {
				return errors.WithMessagef(err, "seed asset of %v", addr)
			}
			if err := registry.Mint(meter.AssetRef{Contract: contract, TokenID: tokenID}, addr); err != nil {
				return errors.WithMessagef(err, "seed asset of %v", addr)
			}
		}
	}
	return nil
}
