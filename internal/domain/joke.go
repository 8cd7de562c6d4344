package domain

import (
	"fmt"
	"strings"
	"time"
)

// JokeType is the shape of a generated joke.
// Values include JokeTypeNormal, JokeTypeStory, and JokeTypeLimerick.
type JokeType string

const (
	JokeTypeNormal   JokeType = "normal"
	JokeTypeStory    JokeType = "story"
	JokeTypeLimerick JokeType = "limerick"
)

// ParseJokeType converts a request value into a JokeType.
// An empty value defaults to JokeTypeNormal.
func ParseJokeType(s string) (JokeType, error) {
	switch t := JokeType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return JokeTypeNormal, nil
	case JokeTypeNormal, JokeTypeStory, JokeTypeLimerick:
		return t, nil
	default:
		return "", ValidationError(fmt.Sprintf("unknown joke type %q", s))
	}
}

// Noun returns the word used when talking about a joke of this type.
func (t JokeType) Noun() string {
	if t == JokeTypeNormal || t == "" {
		return "joke"
	}
	return string(t)
}

// Joke is a generated joke with its running rating counters.
// The counters are mutated only by the vote ledger and always equal the
// number of joke_votes rows per rating.
type Joke struct {
	ID          uint      `gorm:"column:joke_id;primaryKey;autoIncrement" json:"joke_id"`
	TopicID     uint      `gorm:"column:topic_id;not null;index:idx_jokes_topic" json:"topic_id"`
	ModelID     uint      `gorm:"column:model_id;not null" json:"model_id"`
	StemTopicID uint      `gorm:"column:stem_topic_id;not null;index:idx_jokes_stem_topic" json:"stem_topic_id"`
	Type        JokeType  `gorm:"column:type;type:varchar(16);not null;default:normal" json:"type"`
	Content     string    `gorm:"column:joke_content;type:text;not null" json:"joke_content"`
	Explanation string    `gorm:"column:explanation;type:text" json:"explanation"`
	RatingFunny int       `gorm:"column:rating_funny;not null;default:0" json:"rating_funny"`
	RatingOkay  int       `gorm:"column:rating_okay;not null;default:0" json:"rating_okay"`
	RatingDud   int       `gorm:"column:rating_dud;not null;default:0" json:"rating_dud"`
	DateCreated time.Time `gorm:"column:date_created;autoCreateTime;index:idx_jokes_date_created" json:"date_created"`

	// Votes declares the joke_votes.joke_id foreign key; it is never loaded.
	Votes []Vote `gorm:"foreignKey:JokeID;references:ID" json:"-"`
}

// TableName returns the database table name for Joke.
func (Joke) TableName() string {
	return "jokes"
}

// TotalVotes returns the sum of all rating counters.
func (j *Joke) TotalVotes() int {
	return j.RatingFunny + j.RatingOkay + j.RatingDud
}

// JokeWithDetails is a joke joined with its topic text, model name and,
// when a visitor is known, that visitor's vote for the current day.
type JokeWithDetails struct {
	ID          uint      `json:"joke_id"`
	Topic       string    `json:"topic"`
	ModelName   string    `json:"model_name"`
	Type        JokeType  `json:"type"`
	Content     string    `json:"joke_content"`
	Explanation string    `json:"explanation"`
	RatingFunny int       `json:"rating_funny"`
	RatingOkay  int       `json:"rating_okay"`
	RatingDud   int       `json:"rating_dud"`
	DateCreated time.Time `json:"date_created"`
	UserVote    *Rating   `json:"user_vote"`
}

// JokeSummary is a list-view row for recent and highest voted jokes.
type JokeSummary struct {
	ID           uint      `json:"joke_id"`
	Topic        string    `json:"topic"`
	Type         JokeType  `json:"type"`
	Content      string    `json:"joke_content"`
	RatingFunny  int       `json:"rating_funny"`
	RatingOkay   int       `json:"rating_okay"`
	RatingDud    int       `json:"rating_dud"`
	NetRating    int       `json:"net_rating"`
	TotalVotes   int       `json:"total_votes"`
	DateCreated  time.Time `json:"date_created"`
	Preview      string    `json:"preview,omitempty"`
	TopicPreview string    `json:"topic_preview,omitempty"`
}
