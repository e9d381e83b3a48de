package chatbot

import "github.com/physical-ai/chatbot-backend/internal/entity"

// toMetadataFragment builds the leading stream line from the resolved
// confidence and sources.
func toMetadataFragment(answer entity.StreamAnswer) entity.MetadataFragment {
	sources := answer.Sources
	if sources == nil {
		sources = []entity.SectionMetadata{}
	}

	return entity.MetadataFragment{
		Type:            entity.FragmentTypeMetadata,
		ConfidenceScore: answer.ConfidenceScore,
		Sources:         sources,
	}
}

func toContentFragment(chunk string) entity.ContentFragment {
	return entity.ContentFragment{
		Type:  entity.FragmentTypeContent,
		Chunk: chunk,
	}
}
