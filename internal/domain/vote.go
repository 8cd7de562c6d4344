package domain

import (
	"fmt"
	"strings"
)

// Rating is a visitor's verdict on a joke.
type Rating string

const (
	RatingFunny Rating = "funny"
	RatingOkay  Rating = "okay"
	RatingDud   Rating = "dud"
)

// ParseRating validates a raw rating value.
func ParseRating(s string) (Rating, error) {
	switch r := Rating(strings.TrimSpace(s)); r {
	case RatingFunny, RatingOkay, RatingDud:
		return r, nil
	default:
		return "", ValidationError(fmt.Sprintf("invalid rating %q", s))
	}
}

// Column returns the jokes counter column for the rating.
// Callers must only pass validated ratings.
func (r Rating) Column() string {
	switch r {
	case RatingFunny:
		return "rating_funny"
	case RatingOkay:
		return "rating_okay"
	case RatingDud:
		return "rating_dud"
	}
	return ""
}

// Vote is one ledger row. At most one row exists per (joke, visitor, day),
// enforced by a unique index.
type Vote struct {
	ID        uint   `gorm:"column:vote_id;primaryKey;autoIncrement" json:"vote_id"`
	JokeID    uint   `gorm:"column:joke_id;not null;uniqueIndex:idx_joke_votes_unique,priority:1" json:"joke_id"`
	VisitorID string `gorm:"column:visitor_string;type:varchar(64);not null;uniqueIndex:idx_joke_votes_unique,priority:2" json:"visitor_string"`
	Rating    Rating `gorm:"column:rating;type:varchar(8);not null" json:"rating"`
	VoteDate  string `gorm:"column:vote_date;type:varchar(10);not null;uniqueIndex:idx_joke_votes_unique,priority:3" json:"vote_date"`
}

// TableName returns the database table name for Vote.
func (Vote) TableName() string {
	return "joke_votes"
}

// VoteOutcome tags which ledger transition a cast vote took.
type VoteOutcome string

const (
	VoteCreated VoteOutcome = "created"
	VoteRemoved VoteOutcome = "removed"
	VoteChanged VoteOutcome = "changed"
)

// VoteResult is returned to callers of a cast vote.
type VoteResult struct {
	Outcome        VoteOutcome `json:"outcome"`
	Message        string      `json:"message"`
	AppliedRating  *Rating     `json:"rating,omitempty"`
	PreviousRating *Rating     `json:"previous_rating,omitempty"`
}

// NewVoteResult builds the caller-facing result for a ledger transition.
func NewVoteResult(outcome VoteOutcome, previous, requested Rating) *VoteResult {
	res := &VoteResult{Outcome: outcome}
	switch outcome {
	case VoteCreated:
		res.Message = fmt.Sprintf("Vote recorded: %s", requested)
		res.AppliedRating = &requested
	case VoteRemoved:
		res.Message = fmt.Sprintf("Vote removed: %s", requested)
		res.PreviousRating = &previous
	case VoteChanged:
		res.Message = fmt.Sprintf("Vote changed from %s to %s", previous, requested)
		res.AppliedRating = &requested
		res.PreviousRating = &previous
	}
	return res
}
