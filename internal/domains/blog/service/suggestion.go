package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"writespace-backend/internal/domains/blog/model"
	"writespace-backend/internal/infrastructure/ai"
)

const minSuggestionWords = 1000

const suggestionPrompt = `Blog Post Generation Guidelines:
- Prompt: %q
- Category: %q
- Title: Generate a compelling, category-specific title
- Content Requirements:
  * Minimum 1500 words
  * Professional tone
  * Category-relevant content
  * Structured format with clear sections

Output Format:
Title: [Engaging Blog Post Title]
Category: [Selected Category]
Content: [Comprehensive blog post content]`

// SuggestContent asks the generator for a draft post and rejects anything
// under minSuggestionWords words.
func (s *blogService) SuggestContent(ctx context.Context, req model.AISuggestionRequest) (*model.AISuggestionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, model.ErrSuggestionDisabled
	}

	content, err := s.generator.Generate(ctx, fmt.Sprintf(suggestionPrompt, strings.TrimSpace(req.Prompt), req.Category))
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return nil, model.ErrSuggestionDisabled
		}
		return nil, fmt.Errorf("generate suggestion: %w", err)
	}

	if len(strings.Fields(content)) < minSuggestionWords {
		return nil, model.ErrGeneratedTooShort
	}
	return &model.AISuggestionResponse{Content: content}, nil
}
