// Package postgres implements the document store on PostgreSQL. A collection
// maps to one table; list-valued fields are stored as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/WinLike-dev/Worker-Server/internal/core/domain"
	"github.com/WinLike-dev/Worker-Server/internal/core/ports"
)

// Connector opens a fresh store handle per run. Handles are never shared
// across concurrent runs.
type Connector struct {
	dsn            string
	connectTimeout time.Duration
}

func NewConnector(dsn string, connectTimeout time.Duration) *Connector {
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	return &Connector{dsn: dsn, connectTimeout: connectTimeout}
}

func (c *Connector) Connect(ctx context.Context) (ports.DocumentStore, error) {
	db, err := sql.Open("pgx", c.dsn)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConnect, "open store", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, domain.WrapError(domain.ErrConnect, "ping store", err)
	}
	return &Store{db: db}, nil
}

// Store is a connected document-store handle.
type Store struct {
	db *sql.DB
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Collection(name string) ports.DocumentCollection {
	return &Collection{db: s.db, table: name}
}

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Collection is one destination table.
type Collection struct {
	db      *sql.DB
	table   string
	ensured bool
}

const fieldsPerDocument = 9

// maxRowsPerStatement keeps each multi-row insert under the 65535 bind
// parameter cap of the Postgres extended protocol.
const maxRowsPerStatement = 65535 / fieldsPerDocument

// InsertMany writes all documents in multi-row inserts, one statement per
// maxRowsPerStatement rows. The table deliberately carries no uniqueness key
// on record_id: reruns of the same file insert duplicates (at-least-once
// semantics, documented to callers). A failure mid-way can likewise leave
// earlier statements committed; the caller treats the whole file as failed.
func (c *Collection) InsertMany(ctx context.Context, docs []domain.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	if !validTableName.MatchString(c.table) {
		return 0, domain.WrapError(domain.ErrStore, "bulk insert",
			fmt.Errorf("invalid collection name %q", c.table))
	}
	if err := c.ensureSchema(ctx); err != nil {
		return 0, domain.WrapError(domain.ErrStore, "ensure schema", err)
	}

	total := len(docs)
	for len(docs) > 0 {
		chunk := docs
		if len(chunk) > maxRowsPerStatement {
			chunk = chunk[:maxRowsPerStatement]
		}
		if err := c.insertChunk(ctx, chunk); err != nil {
			return 0, err
		}
		docs = docs[len(chunk):]
	}
	return total, nil
}

func (c *Collection) insertChunk(ctx context.Context, docs []domain.Document) error {
	placeholders := make([]byte, 0, len(docs)*32)
	args := make([]any, 0, len(docs)*fieldsPerDocument)
	for i, doc := range docs {
		tagsJSON, err := marshalList(doc.Tags)
		if err != nil {
			return domain.WrapError(domain.ErrStore, "marshal tags", err)
		}
		nounsJSON, err := marshalList(doc.Nouns)
		if err != nil {
			return domain.WrapError(domain.ErrStore, "marshal nouns", err)
		}

		var date any
		if doc.Date != nil {
			date = *doc.Date
		}

		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		base := i * fieldsPerDocument
		placeholders = fmt.Appendf(placeholders, "($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9)
		args = append(args,
			doc.RecordID, doc.Heading, doc.Body, date, tagsJSON, nounsJSON,
			doc.NounCount, doc.Provenance.WorkerID, doc.Provenance.SourceFile,
		)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (record_id, heading, body, published_date, tags, nouns, noun_count, worker_id, source_file) VALUES %s",
		c.table, placeholders,
	)
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return domain.WrapError(domain.ErrStore, "bulk insert", err)
	}
	return nil
}

func (c *Collection) ensureSchema(ctx context.Context) error {
	if c.ensured {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize DDL across workers bootstrapping the same table.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025101401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	record_id BIGINT NOT NULL,
	heading TEXT NOT NULL,
	body TEXT NOT NULL,
	published_date DATE,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	nouns JSONB NOT NULL DEFAULT '[]'::jsonb,
	noun_count INTEGER NOT NULL,
	worker_id TEXT NOT NULL,
	source_file TEXT NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_%s_worker ON %s(worker_id);
CREATE INDEX IF NOT EXISTS idx_%s_source_file ON %s(source_file);
`, c.table, c.table, c.table, c.table, c.table)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	c.ensured = true
	return nil
}
