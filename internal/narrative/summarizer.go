package narrative

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
	"github.com/alex-user-go/sheltersignal/internal/llm"
)

// Messages shown in place of a summary when generation is impossible.
const (
	MsgDisabled = "**AI Summary Generation Disabled:** API Key not configured."
	MsgFailed   = "**AI Summary Generation Failed:** An error occurred while contacting the AI service."
	MsgBlocked  = "**AI Summary Generation Issue:** The AI service returned no content. Please review input data or try again later."
)

// Summarizer turns a merged property record into a Markdown narrative.
type Summarizer struct {
	llm    llm.Client
	logger *slog.Logger
}

// NewSummarizer creates a Summarizer. A nil client disables generation.
func NewSummarizer(client llm.Client, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		llm:    client,
		logger: logger,
	}
}

// Summarize always returns text: the model's answer, or a fallback message.
func (s *Summarizer) Summarize(ctx context.Context, p *types.PropertyData) string {
	if s.llm == nil {
		s.logger.WarnContext(ctx, "llm not configured, skipping ai summary")
		return MsgDisabled
	}

	resp, err := s.llm.Generate(ctx, BuildPrompt(p))
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		s.logger.WarnContext(ctx, "ai summary empty or blocked", "address", p.FormattedAddress, "error", err)
		return MsgBlocked
	case err != nil:
		s.logger.ErrorContext(ctx, "ai summary generation failed", "address", p.FormattedAddress, "error", err)
		return MsgFailed
	}

	summary := strings.TrimSpace(resp)
	if summary == "" {
		return MsgBlocked
	}
	return summary
}
