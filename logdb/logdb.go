// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"log/slog"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/meterio/meter-auction/meter"
	"github.com/pkg/errors"
)

// LogDB indexes auction events in sqlite. It is an EventSink.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	logger        *slog.Logger
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			if err := db.Close(); err != nil {
				slog.Error("could not close logdb", "err", err)
			}
		}
	}()
	// a memory db lives per connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		logger:        slog.Default().With("pkg", "logdb"),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() {
	if err := db.db.Close(); err != nil {
		db.logger.Error("could not close logdb", "err", err)
	}
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

func (db *LogDB) Prepare() *Batch {
	return &Batch{db: db.db}
}

// Emit stores ev. Failures are logged and dropped.
func (db *LogDB) Emit(ev *meter.AuctionEvent) {
	if err := db.Prepare().Insert(ev).Commit(); err != nil {
		db.logger.Error("store event failed", "event", ev, "err", err)
	}
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND timestamp >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND timestamp <= ? "
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.AuctionID != nil {
			args = append(args, *criteria.AuctionID)
			stmt += " AND auctionID = ? "
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ? "
		}
		if criteria.Type != nil {
			args = append(args, uint8(*criteria.Type))
			stmt += " AND type = ? "
		}
		stmt += ")"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += ")"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq           uint64
			eventID       []byte
			typ           uint8
			auctionID     uint64
			account       []byte
			amount        []byte
			timestamp     uint64
			endTime       uint64
			assetContract []byte
			tokenID       []byte
		)
		if err := rows.Scan(
			&seq,
			&eventID,
			&typ,
			&auctionID,
			&account,
			&amount,
			&timestamp,
			&endTime,
			&assetContract,
			&tokenID,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Seq:       seq,
			ID:        meter.BytesToBytes32(eventID),
			Type:      meter.EventType(typ),
			AuctionID: auctionID,
			Account:   meter.BytesToAddress(account),
			Amount:    new(big.Int).SetBytes(amount),
			Timestamp: timestamp,
			EndTime:   endTime,
			Asset: meter.AssetRef{
				Contract: meter.BytesToAddress(assetContract),
				TokenID:  new(big.Int).SetBytes(tokenID),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Batch collects events written in one sqlite transaction.
type Batch struct {
	db     *sql.DB
	events []*Event
}

func (b *Batch) Insert(evs ...*meter.AuctionEvent) *Batch {
	for _, ev := range evs {
		b.events = append(b.events, newEvent(ev))
	}
	return b
}

func (b *Batch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := b.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		if e := tx.Rollback(); e != nil {
			slog.Error("could not rollback", "err", e)
		}
		return err
	}
	return tx.Commit()
}

func (b *Batch) Commit() error {
	return b.execInTx(func(tx *sql.Tx) error {
		for _, ev := range b.events {
			if _, err := tx.Exec("INSERT INTO event(eventID, type, auctionID, account, amount, timestamp, endTime, assetContract, tokenID) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);",
				ev.ID.Bytes(),
				uint8(ev.Type),
				ev.AuctionID,
				ev.Account.Bytes(),
				ev.Amount.Bytes(),
				ev.Timestamp,
				ev.EndTime,
				ev.Asset.Contract.Bytes(),
				ev.Asset.TokenID.Bytes(),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
