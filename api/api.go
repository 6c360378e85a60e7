// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/meterio/meter-auction/api/accounts"
	"github.com/meterio/meter-auction/api/auctions"
	"github.com/meterio/meter-auction/api/events"
	"github.com/meterio/meter-auction/api/subscriptions"
	"github.com/meterio/meter-auction/ledger"
	"github.com/meterio/meter-auction/logdb"
	"github.com/meterio/meter-auction/script"
	"github.com/meterio/meter-auction/script/auction"
)

// ParseOrigins splits a comma separated origin list.
func ParseOrigins(allowedOrigins string) []string {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	return origins
}

// New return api router
func New(engine *auction.Auction, se *script.ScriptEngine, bank *ledger.Bank, registry *ledger.Registry, logDB *logdb.LogDB, subs *subscriptions.Subscriptions, allowedOrigins []string, faucet bool) (http.HandlerFunc, func()) {
	router := mux.NewRouter()

	auctions.New(engine, se, bank).
		Mount(router, "/auctions")
	accounts.New(bank, registry, faucet).
		Mount(router, "/accounts")
	events.New(logDB).
		Mount(router, "/logs/events")
	subs.Mount(router, "/subscriptions")

	return handlers.CORS(
			handlers.AllowedOrigins(allowedOrigins),
			handlers.AllowedHeaders([]string{"content-type", strings.ToLower(auctions.CallerHeader)}))(router).ServeHTTP,
		subs.Close // subscriptions handles hijacked conns, which need to be closed
}
