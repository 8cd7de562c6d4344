package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/timmy/jokegen/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertAttempts bounds how often a lost insert race is re-read in one transaction.
const insertAttempts = 2

// VoteLedger keeps at most one vote per (joke, visitor, day) and the joke's
// rating counters equal to the ledger rows.
type VoteLedger struct {
	db *gorm.DB
}

// NewVoteLedger creates a new VoteLedger.
func NewVoteLedger(db *gorm.DB) *VoteLedger {
	return &VoteLedger{db: db}
}

// Cast applies one click of rating by visitorID on jokeID for day:
// no vote yet records it, the same rating again removes it and a different
// rating replaces it. Row and counters change in one transaction.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jokeID: joke being rated.
//   - visitorID: visitor cookie value.
//   - rating: requested rating.
//   - day: voting day as YYYY-MM-DD.
// Returns:
//   - *domain.VoteResult: the transition that was applied.
//   - error: ErrValidation, ErrNotFound, ErrRetryable, ErrConflict or ErrPersistence.
func (l *VoteLedger) Cast(ctx context.Context, jokeID uint, visitorID string, rating domain.Rating, day string) (*domain.VoteResult, error) {
	if _, err := domain.ParseRating(string(rating)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(visitorID) == "" {
		return nil, domain.ValidationError("visitor id is required")
	}
	if day == "" {
		return nil, domain.ValidationError("vote date is required")
	}

	var result *domain.VoteResult
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var joke domain.Joke
		err := tx.Select("joke_id").Where("joke_id = ?", jokeID).Take(&joke).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFoundError(fmt.Sprintf("joke %d not found", jokeID))
		}
		if err != nil {
			return err
		}

		for attempt := 0; attempt < insertAttempts; attempt++ {
			var current domain.Vote
			err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
				Where("joke_id = ? AND visitor_string = ? AND vote_date = ?", jokeID, visitorID, day).
				Take(&current).Error

			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				vote := domain.Vote{JokeID: jokeID, VisitorID: visitorID, Rating: rating, VoteDate: day}
				res := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "joke_id"}, {Name: "visitor_string"}, {Name: "vote_date"}},
					DoNothing: true,
				}).Create(&vote)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					// A concurrent cast inserted first; derive the transition from its row.
					continue
				}
				if err := adjustCounter(tx, jokeID, rating, 1); err != nil {
					return err
				}
				result = domain.NewVoteResult(domain.VoteCreated, "", rating)

			case err != nil:
				return err

			case current.Rating == rating:
				if err := tx.Delete(&domain.Vote{}, current.ID).Error; err != nil {
					return err
				}
				if err := adjustCounter(tx, jokeID, rating, -1); err != nil {
					return err
				}
				result = domain.NewVoteResult(domain.VoteRemoved, rating, rating)

			default:
				if err := tx.Model(&domain.Vote{}).Where("vote_id = ?", current.ID).
					Update("rating", rating).Error; err != nil {
					return err
				}
				if err := adjustCounter(tx, jokeID, current.Rating, -1); err != nil {
					return err
				}
				if err := adjustCounter(tx, jokeID, rating, 1); err != nil {
					return err
				}
				result = domain.NewVoteResult(domain.VoteChanged, current.Rating, rating)
			}
			return nil
		}

		return errors.Join(domain.ErrConflict,
			fmt.Errorf("vote for joke %d by %s kept conflicting", jokeID, visitorID))
	})
	if err != nil {
		return nil, classify("cast vote", err)
	}
	return result, nil
}

// adjustCounter moves one rating counter by delta, never below zero.
func adjustCounter(tx *gorm.DB, jokeID uint, rating domain.Rating, delta int) error {
	col := rating.Column()
	if col == "" {
		return domain.ValidationError(fmt.Sprintf("invalid rating %q", rating))
	}

	expr := gorm.Expr(col + " + 1")
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN " + col + " > 0 THEN " + col + " - 1 ELSE 0 END")
	}
	return tx.Model(&domain.Joke{}).Where("joke_id = ?", jokeID).UpdateColumn(col, expr).Error
}
