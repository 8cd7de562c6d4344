package domain

import "time"

// Topic is a raw topic string exactly as a visitor submitted it.
// Topics are created on first sighting and never change afterwards.
type Topic struct {
	ID          uint      `gorm:"column:topic_id;primaryKey;autoIncrement" json:"topic_id"`
	Topic       string    `gorm:"column:topic;type:varchar(255);not null;uniqueIndex:idx_topics_topic" json:"topic"`
	StemTopicID uint      `gorm:"column:stem_topic_id;not null;index:idx_topics_stem_topic" json:"stem_topic_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	// Jokes declares the jokes.topic_id foreign key; it is never loaded.
	Jokes []Joke `gorm:"foreignKey:TopicID;references:ID" json:"-"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string {
	return "topics"
}

// StemTopic owns one canonical stem key and the moderation verdict for it.
// Visible is the only mutable field.
type StemTopic struct {
	ID            uint      `gorm:"column:stem_topic_id;primaryKey;autoIncrement" json:"stem_topic_id"`
	TopicExample  string    `gorm:"column:topic_example;type:varchar(255);not null" json:"topic_example"`
	TopicStemmed  string    `gorm:"column:topic_stemmed;type:varchar(255);not null;uniqueIndex:idx_stem_topic_stemmed" json:"topic_stemmed"`
	Visible       bool      `gorm:"column:visible;not null;default:true;index:idx_stem_topic_visible" json:"visible"`
	DateSuggested time.Time `gorm:"column:date_suggested;autoCreateTime" json:"date_suggested"`

	// Foreign keys from topics and jokes; never loaded.
	Topics []Topic `gorm:"foreignKey:StemTopicID;references:ID" json:"-"`
	Jokes  []Joke  `gorm:"foreignKey:StemTopicID;references:ID" json:"-"`
}

// TableName returns the database table name for StemTopic.
func (StemTopic) TableName() string {
	return "stem_topic"
}

// StemTopicResult is the outcome of resolving a stem key.
// IsNew is true only for the caller whose insert created the row.
type StemTopicResult struct {
	ID      uint
	Visible bool
	IsNew   bool
}

// TopicResolution describes a topic after find-or-create, together with
// the moderation state of the stem topic it belongs to.
type TopicResolution struct {
	TopicID     uint `json:"topic_id"`
	StemTopicID uint `json:"stem_topic_id"`
	Visible     bool `json:"visible"`
	IsNew       bool `json:"is_new"`
}
