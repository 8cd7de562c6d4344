package service

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/jokegen/internal/domain"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/repository"
)

// VoteService is the castVote boundary: it validates input, names the voting
// day and retries the ledger transaction on transient store failures.
type VoteService struct {
	ledger     *repository.VoteLedger
	calendar   *Calendar
	maxRetries int
	backoff    time.Duration
}

// NewVoteService creates a new VoteService.
// Parameters:
//   - ledger: vote ledger repository.
//   - calendar: names the current voting day.
//   - maxRetries: extra attempts after a retryable failure.
//
// Returns:
//   - *VoteService: initialized service.
func NewVoteService(ledger *repository.VoteLedger, calendar *Calendar, maxRetries int) *VoteService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if calendar == nil {
		calendar = NewCalendar(time.UTC)
	}
	return &VoteService{
		ledger:     ledger,
		calendar:   calendar,
		maxRetries: maxRetries,
		backoff:    20 * time.Millisecond,
	}
}

// CastVote toggles or switches visitorID's vote on jokeID for today.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jokeID: joke being rated.
//   - visitorID: visitor cookie value.
//   - rating: "funny", "okay" or "dud".
//
// Returns:
//   - *domain.VoteResult: the applied transition and its message.
//   - error: ErrValidation, ErrNotFound or a store error once retries are exhausted.
func (s *VoteService) CastVote(ctx context.Context, jokeID uint, visitorID, rating string) (*domain.VoteResult, error) {
	r, err := domain.ParseRating(rating)
	if err != nil {
		return nil, err
	}

	ctx = logger.SetJokeID(ctx, jokeID)

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(lastErr, ctx.Err())
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}

		res, err := s.ledger.Cast(ctx, jokeID, visitorID, r, s.calendar.Today())
		if err == nil {
			logger.With(logger.Fields{logger.FieldAttempt: attempt + 1}).
				WithOutcome(string(res.Outcome)).
				Info(ctx, "%s", res.Message)
			return res, nil
		}
		if !errors.Is(err, domain.ErrRetryable) && !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}

		lastErr = err
		logger.With(logger.Fields{logger.FieldAttempt: attempt + 1}).
			Warn(ctx, "Vote transaction failed, retrying: %v", err)
	}
	return nil, lastErr
}
