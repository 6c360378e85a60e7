// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	eventID BLOB(32) NOT NULL,
	type INTEGER NOT NULL,
	auctionID INTEGER NOT NULL,
	account BLOB(20) NOT NULL,
	amount BLOB,
	timestamp INTEGER NOT NULL,
	endTime INTEGER NOT NULL,
	assetContract BLOB(20),
	tokenID BLOB
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(auctionID);
CREATE INDEX IF NOT EXISTS event_i1 ON event(account);
CREATE INDEX IF NOT EXISTS event_i2 ON event(timestamp);
`
