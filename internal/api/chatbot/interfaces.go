package chatbot

import (
	"context"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

type ChatbotUsecase interface {
	Query(ctx context.Context, question string) (entity.QueryAnswer, error)
	QueryStream(ctx context.Context, question string) (entity.StreamAnswer, error)
}

type InteractionRecorder interface {
	Insert(ctx context.Context, log entity.InteractionLog) error
}
