package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

// InteractionRepository records answered queries for offline analysis.
type InteractionRepository interface {
	Insert(ctx context.Context, log entity.InteractionLog) error
}

var _ InteractionRepository = &InteractionPostgres{}

type InteractionPostgres struct {
	db *pgxpool.Pool
}

func NewInteractionPostgres(db *pgxpool.Pool) *InteractionPostgres {
	return &InteractionPostgres{db: db}
}

func (r *InteractionPostgres) Insert(ctx context.Context, log entity.InteractionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO user_interaction_log (id, query_text, answer_text, confidence)
		 VALUES ($1, $2, $3, $4)`,
		log.ID, log.QueryText, log.AnswerText, log.Confidence,
	)
	if err != nil {
		return fmt.Errorf("%w: insert interaction log: %v", entity.ErrMetadataStore, err)
	}
	return nil
}
