package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/lib/pq"

	"github.com/wsn-testbed/clusterhead/internal/frame"
)

// insertColumns is the superset of persisted fields across wire profiles.
// Profile-dependent columns stay NULL.
var insertColumns = []string{
	"snid", "sntime", "dbtime", "type", "value", "sreg",
	"t_air", "t_soil", "h_air", "h_soil",
	"x1", "x2", "x3", "x4", "x5", "x6", "x7", "x8",
	"battery", "danger", "safe", "label", "notes",
}

// Postgres persists entries into a single wide telemetry table.
type Postgres struct {
	dsn   string
	table string

	mu sync.Mutex
	db *sql.DB
}

// NewPostgres returns an unconnected store for the given DSN and table.
func NewPostgres(dsn, table string) *Postgres {
	return &Postgres{dsn: dsn, table: table}
}

// Connect opens the database handle and verifies it with a ping. Safe to
// call again after a failure or Close.
func (p *Postgres) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", p.dsn)
	if err != nil {
		return fmt.Errorf("store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("store: ping: %w", err)
	}
	p.db = db
	return nil
}

// IsConnected probes the connection.
func (p *Postgres) IsConnected(ctx context.Context) bool {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()
	return db != nil && db.PingContext(ctx) == nil
}

// Close closes the database handle. Tolerates being already closed.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	if err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// Insert writes the entry and returns the id of the last inserted row.
// Tuple records map to one row; measurement records map to one row per
// measurement, so a packed frame flattens into as many rows as it carries
// pairs.
func (p *Postgres) Insert(ctx context.Context, e *Entry) (int64, error) {
	p.mu.Lock()
	db := p.db
	p.mu.Unlock()
	if db == nil {
		return 0, fmt.Errorf("store: not connected")
	}

	rows := buildRows(e)
	if len(rows) == 0 {
		return 0, nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(p.table)
	b.WriteString(" (")
	b.WriteString(strings.Join(insertColumns, ", "))
	b.WriteString(") VALUES ")

	args := make([]interface{}, 0, len(rows)*len(insertColumns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := range row {
			if j > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d", len(args)+j+1)
		}
		b.WriteString(")")
		args = append(args, row...)
	}
	b.WriteString(" RETURNING id")

	result, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("store: insert: %w", err)
	}
	defer result.Close()

	var rowID int64
	for result.Next() {
		if err := result.Scan(&rowID); err != nil {
			return 0, fmt.Errorf("store: scan row id: %w", err)
		}
	}
	if err := result.Err(); err != nil {
		return 0, fmt.Errorf("store: insert: %w", err)
	}
	return rowID, nil
}

// buildRows flattens one entry into value rows matching insertColumns.
func buildRows(e *Entry) [][]interface{} {
	rec := e.Record

	if rec.Tuple != nil {
		return [][]interface{}{tupleRow(e)}
	}

	rows := make([][]interface{}, 0, len(rec.Measurements))
	for _, m := range rec.Measurements {
		rows = append(rows, measurementRow(e, m))
	}
	return rows
}

func tupleRow(e *Entry) []interface{} {
	rec := e.Record
	row := baseRow(e)
	row[6] = rec.Tuple.TempAir
	row[7] = rec.Tuple.TempSoil
	row[8] = rec.Tuple.HumidAir
	row[9] = rec.Tuple.HumidSoil
	if len(rec.Indicators) == 8 {
		for i, v := range rec.Indicators {
			row[10+i] = v
		}
	}
	if rec.Battery != nil {
		row[18] = int64(*rec.Battery)
	}
	if rec.Danger != nil {
		row[19] = *rec.Danger
	}
	if rec.Safe != nil {
		row[20] = *rec.Safe
	}
	return row
}

func measurementRow(e *Entry, m frame.Measurement) []interface{} {
	row := baseRow(e)
	row[3] = int64(m.Type)
	row[4] = m.Value
	return row
}

// baseRow fills the profile-independent columns; the rest stay NULL.
func baseRow(e *Entry) []interface{} {
	rec := e.Record
	row := make([]interface{}, len(insertColumns))
	row[0] = rec.SNID
	row[1] = int64(rec.Seq)
	row[2] = rec.ReceivedAt
	if rec.StatusReg != nil {
		row[5] = int64(*rec.StatusReg)
	}
	if e.Label != nil {
		row[21] = int64(*e.Label)
	}
	if e.Note != "" {
		row[22] = e.Note
	}
	return row
}
