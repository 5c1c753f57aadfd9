package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jroosing/mailprobe/internal/dns"
)

// Transfer is one archived zone transfer attempt.
type Transfer struct {
	ID          int64
	Zone        string
	Class       string
	Server      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Serial      uint32
	RecordCount int
	Complete    bool
	Error       string
	Records     []TransferRecord
}

// TransferRecord is one record received during a transfer, in
// presentation form.
type TransferRecord struct {
	Name  string
	TTL   uint32
	Class string
	Type  string
	RData string
}

// NewTransfer builds an archive entry from the outcome of a transfer. A
// non-nil err marks the entry incomplete; records then hold whatever was
// received before the failure.
func NewTransfer(zone string, class dns.RecordClass, server string, started time.Time, records []dns.Record, err error) Transfer {
	t := Transfer{
		Zone:       dns.NormalizeName(zone),
		Class:      class.String(),
		Server:     server,
		StartedAt:  started,
		FinishedAt: time.Now(),
		Complete:   err == nil,
		Records:    make([]TransferRecord, 0, len(records)),
	}
	if err != nil {
		t.Error = err.Error()
	}
	for _, rr := range records {
		if soa, ok := rr.(*dns.SOARecord); ok && t.Serial == 0 {
			t.Serial = soa.Serial
		}
		h := rr.Header()
		t.Records = append(t.Records, TransferRecord{
			Name:  h.Name,
			TTL:   h.TTL,
			Class: h.Class.String(),
			Type:  rr.Type().String(),
			RData: rr.RDataString(),
		})
	}
	t.RecordCount = len(t.Records)
	return t
}

// SaveTransfer stores t and its records and returns the new row id.
func (db *DB) SaveTransfer(ctx context.Context, t Transfer) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transfers (zone, class, server, started_at, finished_at, serial, record_count, complete, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.Zone, t.Class, t.Server, t.StartedAt.UnixMilli(), t.FinishedAt.UnixMilli(),
		t.Serial, len(t.Records), t.Complete, t.Error)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transfer for %s: %w", t.Zone, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transfer id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transfer_records (transfer_id, seq, name, ttl, class, type, rdata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()
	for i, r := range t.Records {
		if _, err := stmt.ExecContext(ctx, id, i, r.Name, r.TTL, r.Class, r.Type, r.RData); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return id, nil
}

// ListTransfers returns the newest transfers first, without their records.
// An empty zone lists every zone. limit <= 0 means no limit.
func (db *DB) ListTransfers(ctx context.Context, zone string, limit int) ([]Transfer, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	query := `
		SELECT id, zone, class, server, started_at, finished_at, serial, record_count, complete, error
		FROM transfers
		WHERE ? = '' OR zone = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`
	zone = dns.NormalizeName(zone)
	rows, err := db.conn.QueryContext(ctx, query, zone, zone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var out []Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}
	return out, nil
}

// GetTransfer returns one transfer with its records.
func (db *DB) GetTransfer(ctx context.Context, id int64) (Transfer, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRowContext(ctx, `
		SELECT id, zone, class, server, started_at, finished_at, serial, record_count, complete, error
		FROM transfers WHERE id = ?
	`, id)
	t, err := scanTransfer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Transfer{}, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Transfer{}, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT name, ttl, class, type, rdata
		FROM transfer_records WHERE transfer_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return Transfer{}, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	t.Records = make([]TransferRecord, 0, t.RecordCount)
	for rows.Next() {
		var r TransferRecord
		if err := rows.Scan(&r.Name, &r.TTL, &r.Class, &r.Type, &r.RData); err != nil {
			return Transfer{}, fmt.Errorf("failed to scan record: %w", err)
		}
		t.Records = append(t.Records, r)
	}
	if err := rows.Err(); err != nil {
		return Transfer{}, fmt.Errorf("error iterating records: %w", err)
	}
	return t, nil
}

// DeleteTransfer removes a transfer and its records.
func (db *DB) DeleteTransfer(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	result, err := db.conn.ExecContext(ctx, "DELETE FROM transfers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("transfer %d: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(s scanner) (Transfer, error) {
	var (
		t                 Transfer
		started, finished int64
	)
	err := s.Scan(&t.ID, &t.Zone, &t.Class, &t.Server, &started, &finished,
		&t.Serial, &t.RecordCount, &t.Complete, &t.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return Transfer{}, err
	}
	if err != nil {
		return Transfer{}, fmt.Errorf("failed to scan transfer: %w", err)
	}
	t.StartedAt = time.UnixMilli(started)
	t.FinishedAt = time.UnixMilli(finished)
	return t, nil
}
