package testutil

import (
	"context"
	"testing"

	"github.com/timmy/jokegen/internal/domain"
	"gorm.io/gorm"
)

// SeedModel inserts a model row.
func SeedModel(tb testing.TB, db *gorm.DB, name string) *domain.Model {
	tb.Helper()
	m := &domain.Model{Name: name}
	if err := db.Create(m).Error; err != nil {
		tb.Fatalf("seed model: %v", err)
	}
	return m
}

// SeedStemTopic inserts a stem topic with the given visibility.
func SeedStemTopic(tb testing.TB, db *gorm.DB, example, key string, visible bool) *domain.StemTopic {
	tb.Helper()
	st := &domain.StemTopic{TopicExample: example, TopicStemmed: key, Visible: true}
	if err := db.Create(st).Error; err != nil {
		tb.Fatalf("seed stem topic: %v", err)
	}
	if !visible {
		// gorm skips zero values on create, so the default would win
		if err := db.Model(st).Update("visible", false).Error; err != nil {
			tb.Fatalf("hide stem topic: %v", err)
		}
		st.Visible = false
	}
	return st
}

// SeedTopic inserts a topic under stem.
func SeedTopic(tb testing.TB, db *gorm.DB, text string, stem *domain.StemTopic) *domain.Topic {
	tb.Helper()
	t := &domain.Topic{Topic: text, StemTopicID: stem.ID}
	if err := db.Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

// SeedJoke inserts a joke about topicText with the given counters, creating the
// topic, stem topic and model rows as needed.
func SeedJoke(tb testing.TB, db *gorm.DB, topicText string, funny, okay, dud int) *domain.Joke {
	tb.Helper()

	var stem domain.StemTopic
	if err := db.Where(domain.StemTopic{TopicStemmed: "seed " + topicText}).
		Attrs(domain.StemTopic{TopicExample: topicText, Visible: true}).
		FirstOrCreate(&stem).Error; err != nil {
		tb.Fatalf("seed stem topic: %v", err)
	}
	var topic domain.Topic
	if err := db.Where(domain.Topic{Topic: topicText}).
		Attrs(domain.Topic{StemTopicID: stem.ID}).
		FirstOrCreate(&topic).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	var model domain.Model
	if err := db.Where(domain.Model{Name: "Test:model"}).FirstOrCreate(&model).Error; err != nil {
		tb.Fatalf("seed model: %v", err)
	}

	joke := &domain.Joke{
		TopicID:     topic.ID,
		ModelID:     model.ID,
		StemTopicID: stem.ID,
		Type:        domain.JokeTypeNormal,
		Content:     "Why did the " + topicText + " cross the road?",
		Explanation: "Because it was there.",
	}
	if err := db.Create(joke).Error; err != nil {
		tb.Fatalf("seed joke: %v", err)
	}
	if funny+okay+dud > 0 {
		err := db.Model(joke).Updates(map[string]interface{}{
			"rating_funny": funny,
			"rating_okay":  okay,
			"rating_dud":   dud,
		}).Error
		if err != nil {
			tb.Fatalf("seed joke ratings: %v", err)
		}
		joke.RatingFunny, joke.RatingOkay, joke.RatingDud = funny, okay, dud
	}
	return joke
}

// ReloadJoke rereads a joke's counters.
func ReloadJoke(tb testing.TB, db *gorm.DB, id uint) *domain.Joke {
	tb.Helper()
	var j domain.Joke
	if err := db.WithContext(context.Background()).Where("joke_id = ?", id).Take(&j).Error; err != nil {
		tb.Fatalf("reload joke %d: %v", id, err)
	}
	return &j
}

// CountVotes returns the number of ledger rows for a joke.
func CountVotes(tb testing.TB, db *gorm.DB, jokeID uint) int64 {
	tb.Helper()
	var n int64
	if err := db.Model(&domain.Vote{}).Where("joke_id = ?", jokeID).Count(&n).Error; err != nil {
		tb.Fatalf("count votes: %v", err)
	}
	return n
}
