package query

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/physical-ai/chatbot-backend/internal/entity"
)

const (
	noContextMessage = "I couldn't find any relevant information in the textbook to answer your question."

	lowConfidenceMessage = "I'm not confident enough in the available textbook sections to answer that accurately. " +
		"I found some related content but it might not be a direct match. " +
		"Could you rephrase your question or ask about a specific chapter?"
)

// Usecase answers user questions over the ingested textbook. Every
// answer passes through the confidence gate before any generation
// happens: questions whose best match scores below the threshold are
// answered with a canned deferral instead of generated text.
type Usecase struct {
	retrieval  *RetrievalService
	generation *GenerationService
	threshold  float64
}

func NewUsecase(retrieval *RetrievalService, generation *GenerationService, threshold float64) *Usecase {
	return &Usecase{
		retrieval:  retrieval,
		generation: generation,
		threshold:  threshold,
	}
}

// Query answers a question in one shot.
func (uc *Usecase) Query(ctx context.Context, question string) (entity.QueryAnswer, error) {
	items, err := uc.retrieval.Retrieve(ctx, question)
	if err != nil {
		return entity.QueryAnswer{}, fmt.Errorf("retrieve context: %w", err)
	}

	if len(items) == 0 {
		return entity.QueryAnswer{
			Answer:          noContextMessage,
			ConfidenceScore: 0,
			Sources:         []entity.SectionMetadata{},
		}, nil
	}

	confidence := maxScore(items)
	sources := collectSources(items)

	if confidence < uc.threshold {
		ctxzap.Info(ctx, "confidence below threshold, skipping generation",
			zap.Float64("confidence", confidence),
			zap.Float64("threshold", uc.threshold),
		)

		return entity.QueryAnswer{
			Answer:          lowConfidenceMessage,
			ConfidenceScore: confidence,
			Sources:         sources,
		}, nil
	}

	answer := uc.generation.Generate(ctx, question, items)

	return entity.QueryAnswer{
		Answer:          answer,
		ConfidenceScore: confidence,
		Sources:         sources,
	}, nil
}

// QueryStream answers a question as a fragment stream. The confidence
// and sources are resolved before the stream starts so the caller can
// emit them first.
func (uc *Usecase) QueryStream(ctx context.Context, question string) (entity.StreamAnswer, error) {
	items, err := uc.retrieval.Retrieve(ctx, question)
	if err != nil {
		return entity.StreamAnswer{}, fmt.Errorf("retrieve context: %w", err)
	}

	if len(items) == 0 {
		return entity.StreamAnswer{
			ConfidenceScore: 0,
			Sources:         []entity.SectionMetadata{},
			Fragments:       newStaticStream(noContextMessage),
		}, nil
	}

	confidence := maxScore(items)
	sources := collectSources(items)

	if confidence < uc.threshold {
		ctxzap.Info(ctx, "confidence below threshold, skipping generation",
			zap.Float64("confidence", confidence),
			zap.Float64("threshold", uc.threshold),
		)

		return entity.StreamAnswer{
			ConfidenceScore: confidence,
			Sources:         sources,
			Fragments:       newStaticStream(lowConfidenceMessage),
		}, nil
	}

	return entity.StreamAnswer{
		ConfidenceScore: confidence,
		Sources:         sources,
		Fragments:       uc.generation.GenerateStream(ctx, question, items),
	}, nil
}

// maxScore is the answer confidence: the score of the single best hit,
// not an aggregate over the result set.
func maxScore(items []entity.ContextItem) float64 {
	best := items[0].Score
	for _, item := range items[1:] {
		if item.Score > best {
			best = item.Score
		}
	}

	return best
}

func collectSources(items []entity.ContextItem) []entity.SectionMetadata {
	sources := make([]entity.SectionMetadata, 0, len(items))
	for _, item := range items {
		meta := item.Metadata
		if meta.Title == "" {
			meta.Title = fmt.Sprintf("%s - %s", meta.Chapter, meta.Section)
		}
		sources = append(sources, meta)
	}

	return sources
}
