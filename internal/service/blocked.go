package service

import (
	"context"

	"github.com/timmy/jokegen/internal/domain"
	"github.com/timmy/jokegen/internal/logger"
)

// BlockedTopics lists stem topics that failed moderation, newest first.
func (s *JokeService) BlockedTopics(ctx context.Context) ([]domain.StemTopic, error) {
	return s.topics.ListBlocked(ctx)
}

// ClearBlockedTopics removes blocked stem topics and their topic rows so the
// next request for them is moderated again. Stems referenced by a joke stay.
func (s *JokeService) ClearBlockedTopics(ctx context.Context) (int64, error) {
	n, err := s.topics.ClearBlocked(ctx)
	if err != nil {
		return 0, err
	}
	logger.With(nil).WithCount(int(n)).Info(ctx, "Cleared blocked topics")
	return n, nil
}
