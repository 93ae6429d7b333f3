package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type PostgresSink struct {
	db    *pgxpool.Pool
	table string
}

func NewPostgresSink(db *pgxpool.Pool, table string) *PostgresSink {
	return &PostgresSink{
		db:    db,
		table: table,
	}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		categoria_animal TEXT NOT NULL,
		categoria_producto TEXT,
		sub_categoria_producto TEXT,
		marca TEXT,
		nombre TEXT,
		vendido_por TEXT,
		titulo_promocion TEXT,
		descripcion_promocion TEXT,
		descripcion_producto TEXT,
		peso_considerado TEXT,
		precio_sin_descuento DOUBLE PRECISION,
		precio_publico DOUBLE PRECISION,
		precio_cmr DOUBLE PRECISION,
		fecha_extraccion_inicio TIMESTAMPTZ NOT NULL,
		fecha_extraccion_final TIMESTAMPTZ NOT NULL,
		product_id TEXT NOT NULL,
		sku TEXT NOT NULL
	)`, s.ident())
	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Load copies every chunk inside one transaction, so a failed load leaves
// the table as it was.
func (s *PostgresSink) Load(ctx context.Context, rows []ProductRow, opts LoadOptions) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if opts.Truncate {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+s.ident()); err != nil {
			return 0, fmt.Errorf("failed to truncate %s: %w", s.table, err)
		}
		log.Infof("🧹 Truncated table %s", s.table)
	}

	var total int64
	for i, chunk := range chunks(rows, opts.ChunkSize) {
		values := make([][]any, len(chunk))
		for j, row := range chunk {
			values[j] = row.Values()
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{s.table}, Columns, pgx.CopyFromRows(values))
		if err != nil {
			return total, fmt.Errorf("failed to copy chunk %d into %s: %w", i+1, s.table, err)
		}
		total += n
		log.Debugf("Copied chunk %d (%d rows) into %s", i+1, n, s.table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit load into %s: %w", s.table, err)
	}
	return total, nil
}

func (s *PostgresSink) Close() error {
	s.db.Close()
	return nil
}
