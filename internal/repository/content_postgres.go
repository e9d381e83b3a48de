package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

// ContentRepository defines the interface for chunk text persistence.
// The relational store is the source of truth for chunk text.
type ContentRepository interface {
	BulkInsert(ctx context.Context, rows []entity.ContentRow) error
	GetByID(ctx context.Context, id string) (*entity.ContentRow, error)
	HealthCheck(ctx context.Context) error
}

var _ ContentRepository = &ContentPostgres{}

// ContentPostgres implements ContentRepository using PostgreSQL.
type ContentPostgres struct {
	db *pgxpool.Pool
}

func NewContentPostgres(db *pgxpool.Pool) *ContentPostgres {
	return &ContentPostgres{db: db}
}

const insertContentQuery = `
INSERT INTO textbook_content (id, text, chapter, section, page_number)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET text = EXCLUDED.text,
    chapter = EXCLUDED.chapter,
    section = EXCLUDED.section,
    page_number = EXCLUDED.page_number`

// BulkInsert writes all rows inside one transaction: either the whole
// batch commits or none of it does. Re-ingesting an existing chunk id
// keeps a single row with the latest text.
func (r *ContentPostgres) BulkInsert(ctx context.Context, rows []entity.ContentRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", entity.ErrMetadataStore, err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(insertContentQuery, row.ID, row.Text, row.Chapter, row.Section, row.PageNumber)
	}

	results := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("%w: insert content row: %v", entity.ErrMetadataStore, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("%w: close batch: %v", entity.ErrMetadataStore, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", entity.ErrMetadataStore, err)
	}

	return nil
}

func (r *ContentPostgres) GetByID(ctx context.Context, id string) (*entity.ContentRow, error) {
	var row entity.ContentRow
	err := r.db.QueryRow(ctx,
		`SELECT id, text, chapter, section, page_number, created_at
		 FROM textbook_content WHERE id = $1`, id,
	).Scan(&row.ID, &row.Text, &row.Chapter, &row.Section, &row.PageNumber, &row.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrContentNotFound
		}
		return nil, fmt.Errorf("%w: get content: %v", entity.ErrMetadataStore, err)
	}

	return &row, nil
}

// HealthCheck runs a trivial read to confirm connectivity.
func (r *ContentPostgres) HealthCheck(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("%w: health check: %v", entity.ErrMetadataStore, err)
	}
	return nil
}
