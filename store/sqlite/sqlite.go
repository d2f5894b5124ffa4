/*
Package sqlite provides the record source collaborator backed by SQLite.

PURPOSE:
  Delivers raw comprobante records to the analytics engine. The engine never
  fetches data itself; this store is the single I/O boundary, invoked by the
  cache refresh before any aggregation runs.

FETCH SEMANTICS:
  FetchActive reproduces the upstream table-fetch contract: active records
  only (soft-delete flag), ordered by id, read in batches of 1000 with a
  50000-row safety cap. Raw monetary values are kept as delivered (TEXT),
  so localized forms like "$1.234,56" reach the normalizer untouched.

COLUMN PRESENCE:
  The store reports which optional columns the comprobantes table actually
  has (ColumnSet) so the preprocessor can apply column-level defaults
  deterministically instead of probing rows.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  raw, err := store.FetchActive(ctx)
  table := engine.Preprocess(raw)

SEE ALSO:
  - engine/preprocess.go: consumes the RawTable produced here
  - cache/cache.go: decides when FetchActive runs
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/vetwell/billing-engine/engine"
)

const (
	fetchBatchSize = 1000
	fetchSafetyCap = 50000
)

// Store is the SQLite-backed record source.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS comprobantes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		fecha_emision TEXT NOT NULL,
		comprobante TEXT,
		cliente TEXT,
		facturado TEXT,
		pagado TEXT,
		pendiente TEXT,
		descuento TEXT,
		estado TEXT,
		tipo TEXT,
		forma_pago_raw TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		source_year INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_comprobantes_active
		ON comprobantes(is_active, id);
	CREATE INDEX IF NOT EXISTS idx_comprobantes_fecha
		ON comprobantes(fecha_emision);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES (seeding / import)
// =============================================================================

// Insert stores one raw record and returns its id.
func (s *Store) Insert(ctx context.Context, r engine.RawRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comprobantes
			(fecha_emision, comprobante, cliente, facturado, pagado, pendiente,
			 descuento, estado, tipo, forma_pago_raw, is_active, source_year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rawText(r.FechaEmision),
		r.Comprobante, r.Cliente,
		rawText(r.Facturado), rawText(r.Pagado), rawText(r.Pendiente), rawText(r.Descuento),
		r.Estado, r.Tipo, r.FormaPagoRaw,
		boolToInt(r.IsActive), nullableInt(r.SourceYear),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert comprobante: %w", err)
	}
	return res.LastInsertId()
}

// InsertBatch stores records inside one transaction.
func (s *Store) InsertBatch(ctx context.Context, records []engine.RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comprobantes
			(fecha_emision, comprobante, cliente, facturado, pagado, pendiente,
			 descuento, estado, tipo, forma_pago_raw, is_active, source_year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			rawText(r.FechaEmision),
			r.Comprobante, r.Cliente,
			rawText(r.Facturado), rawText(r.Pagado), rawText(r.Pendiente), rawText(r.Descuento),
			r.Estado, r.Tipo, r.FormaPagoRaw,
			boolToInt(r.IsActive), nullableInt(r.SourceYear),
		); err != nil {
			return fmt.Errorf("failed to insert comprobante batch row: %w", err)
		}
	}
	return tx.Commit()
}

// Deactivate soft-deletes a record; FetchActive will skip it.
func (s *Store) Deactivate(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE comprobantes SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate comprobante %d: %w", id, err)
	}
	return nil
}

// Count returns the number of active records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comprobantes WHERE is_active = 1`).Scan(&n)
	return n, err
}

// =============================================================================
// FETCH
// =============================================================================

// FetchActive reads all active records in id order, batched, and reports
// which optional columns the table supplies.
func (s *Store) FetchActive(ctx context.Context) (engine.RawTable, error) {
	cols, err := s.columnSet(ctx)
	if err != nil {
		return engine.RawTable{}, err
	}

	var records []engine.RawRecord
	lastID := int64(0)
	for {
		batch, err := s.fetchBatch(ctx, lastID)
		if err != nil {
			return engine.RawTable{}, err
		}
		if len(batch) == 0 {
			break
		}
		records = append(records, batch...)
		lastID = batch[len(batch)-1].ID
		if len(batch) < fetchBatchSize || len(records) > fetchSafetyCap {
			break
		}
	}
	return engine.RawTable{Records: records, Columns: cols}, nil
}

func (s *Store) fetchBatch(ctx context.Context, afterID int64) ([]engine.RawRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fecha_emision, comprobante, cliente, facturado, pagado,
		       pendiente, descuento, estado, tipo, forma_pago_raw, source_year
		FROM comprobantes
		WHERE is_active = 1 AND id > ?
		ORDER BY id
		LIMIT ?`, afterID, fetchBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comprobantes: %w", err)
	}
	defer rows.Close()

	var batch []engine.RawRecord
	for rows.Next() {
		var (
			r            engine.RawRecord
			fecha        sql.NullString
			comprobante  sql.NullString
			cliente      sql.NullString
			facturado    sql.NullString
			pagado       sql.NullString
			pendiente    sql.NullString
			descuento    sql.NullString
			estado       sql.NullString
			tipo         sql.NullString
			formaPagoRaw sql.NullString
			sourceYear   sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &fecha, &comprobante, &cliente, &facturado,
			&pagado, &pendiente, &descuento, &estado, &tipo, &formaPagoRaw, &sourceYear); err != nil {
			return nil, fmt.Errorf("failed to scan comprobante: %w", err)
		}

		r.FechaEmision = nullableAny(fecha)
		r.Comprobante = comprobante.String
		r.Cliente = cliente.String
		r.Facturado = nullableAny(facturado)
		r.Pagado = nullableAny(pagado)
		r.Pendiente = nullableAny(pendiente)
		r.Descuento = nullableAny(descuento)
		r.Estado = estado.String
		r.Tipo = tipo.String
		r.FormaPagoRaw = formaPagoRaw.String
		r.IsActive = true
		r.SourceYear = int(sourceYear.Int64)

		batch = append(batch, r)
	}
	return batch, rows.Err()
}

// columnSet probes the table schema once per fetch.
func (s *Store) columnSet(ctx context.Context) (engine.ColumnSet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info('comprobantes')`)
	if err != nil {
		return engine.ColumnSet{}, fmt.Errorf("failed to probe comprobantes schema: %w", err)
	}
	defer rows.Close()

	var cols engine.ColumnSet
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return engine.ColumnSet{}, err
		}
		switch name {
		case "comprobante":
			cols.Comprobante = true
		case "cliente":
			cols.Cliente = true
		case "facturado":
			cols.Facturado = true
		case "pagado":
			cols.Pagado = true
		case "pendiente":
			cols.Pendiente = true
		case "descuento":
			cols.Descuento = true
		case "estado":
			cols.Estado = true
		case "tipo":
			cols.Tipo = true
		case "forma_pago_raw":
			cols.FormaPago = true
		}
	}
	return cols, rows.Err()
}

// =============================================================================
// VALUE CONVERSION
// =============================================================================

// rawText renders a loosely-typed raw value for storage, preserving string
// forms exactly as delivered.
func rawText(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02T15:04:05")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case decimal.Decimal:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func nullableAny(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
