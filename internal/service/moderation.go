package service

import (
	"context"
	"strings"

	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/prompts"
)

// ModerationService classifies topics as suitable for a family-friendly site.
type ModerationService struct {
	llm Completer
}

// NewModerationService creates a ModerationService backed by llm.
func NewModerationService(llm Completer) *ModerationService {
	return &ModerationService{llm: llm}
}

// Classify asks the LLM for a CLEAN/OFFENSIVE verdict. Only an answer of
// CLEAN (ignoring case, surrounding quotes and a trailing period) passes.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - topic: raw topic text.
// Returns:
//   - bool: true if the topic is appropriate.
//   - error: non-nil if the LLM call fails.
func (s *ModerationService) Classify(ctx context.Context, topic string) (bool, error) {
	answer, err := s.llm.Complete(ctx, "", prompts.Moderation(topic))
	if err != nil {
		return false, err
	}
	verdict := strings.ToUpper(strings.Trim(strings.TrimSpace(answer), `"'.`))
	logger.With(logger.Fields{logger.FieldTopic: topic}).
		WithOutcome(verdict).
		Info(ctx, "Topic classified")
	return verdict == prompts.ModerationVerdictClean, nil
}

// IsAppropriate is Classify with a fail-open policy: when the classifier is
// unavailable the topic is allowed and the failure is logged.
func (s *ModerationService) IsAppropriate(ctx context.Context, topic string) bool {
	ok, err := s.Classify(ctx, topic)
	if err != nil {
		logger.FromContext(ctx).WithError(err).
			WithField(logger.FieldTopic, topic).
			Warn("Moderation unavailable, allowing topic")
		return true
	}
	return ok
}
