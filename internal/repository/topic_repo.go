package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/timmy/jokegen/internal/domain"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/textproc"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicRepository maps raw topic strings to topics and stem keys to stem topics.
type TopicRepository struct {
	db *gorm.DB
}

// NewTopicRepository creates a new TopicRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TopicRepository: repository instance bound to db.
func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// FindOrCreateStemTopic resolves stemKey to its stem topic, inserting it with
// visible=true on first sighting. Concurrent first sightings collapse onto one
// row through the unique index on topic_stemmed; only the inserting caller
// sees IsNew.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rawText: topic text stored as the example for a new stem topic.
//   - stemKey: canonical key produced by textproc.StemKey.
// Returns:
//   - *domain.StemTopicResult: stem topic id, visibility and whether this call created it.
//   - error: non-nil if the lookup or insert fails.
func (r *TopicRepository) FindOrCreateStemTopic(ctx context.Context, rawText, stemKey string) (*domain.StemTopicResult, error) {
	db := r.db.WithContext(ctx)

	existing, err := r.findStemTopic(db, stemKey)
	if err != nil {
		return nil, classify("find stem topic", err)
	}
	if existing != nil {
		return &domain.StemTopicResult{ID: existing.ID, Visible: existing.Visible}, nil
	}

	stem := domain.StemTopic{
		TopicExample: rawText,
		TopicStemmed: stemKey,
		Visible:      true,
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "topic_stemmed"}},
		DoNothing: true,
	}).Create(&stem)
	if res.Error != nil {
		return nil, classify("create stem topic", res.Error)
	}
	if res.RowsAffected == 1 {
		return &domain.StemTopicResult{ID: stem.ID, Visible: true, IsNew: true}, nil
	}

	// Lost the insert race; the winner's row is authoritative.
	winner, err := r.findStemTopic(db, stemKey)
	if err != nil {
		return nil, classify("reread stem topic", err)
	}
	if winner == nil {
		return nil, errors.Join(domain.ErrConflict, fmt.Errorf("stem topic %q vanished after conflict", stemKey))
	}
	return &domain.StemTopicResult{ID: winner.ID, Visible: winner.Visible}, nil
}

// FindOrCreateTopic resolves rawText to a topic row, creating the topic and,
// when needed, its stem topic. IsNew reports whether this call created the stem
// topic, which is the signal to run moderation.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rawText: topic exactly as submitted.
// Returns:
//   - *domain.TopicResolution: topic id, stem topic id, visibility and novelty.
//   - error: non-nil if any lookup or insert fails.
func (r *TopicRepository) FindOrCreateTopic(ctx context.Context, rawText string) (*domain.TopicResolution, error) {
	db := r.db.WithContext(ctx)

	if resolved, err := r.resolveTopic(db, rawText); err != nil || resolved != nil {
		return resolved, err
	}

	stemKey := textproc.StemKey(rawText)
	if stemKey == "" {
		logger.With(logger.Fields{logger.FieldTopic: rawText}).
			Warn(ctx, "Topic has no content words, using the shared empty stem key")
	}

	stem, err := r.FindOrCreateStemTopic(ctx, rawText, stemKey)
	if err != nil {
		return nil, err
	}

	topic := domain.Topic{Topic: rawText, StemTopicID: stem.ID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "topic"}},
		DoNothing: true,
	}).Create(&topic)
	if res.Error != nil {
		return nil, classify("create topic", res.Error)
	}
	if res.RowsAffected == 1 {
		return &domain.TopicResolution{
			TopicID:     topic.ID,
			StemTopicID: stem.ID,
			Visible:     stem.Visible,
			IsNew:       stem.IsNew,
		}, nil
	}

	resolved, err := r.resolveTopic(db, rawText)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, errors.Join(domain.ErrConflict, fmt.Errorf("topic %q vanished after conflict", rawText))
	}
	// The stem topic may have been created by us even though another request
	// inserted the topic row first.
	resolved.IsNew = stem.IsNew
	return resolved, nil
}

// SetStemTopicVisibility updates the moderation verdict of a stem topic.
// Setting the current value again is a no-op.
func (r *TopicRepository) SetStemTopicVisibility(ctx context.Context, stemTopicID uint, visible bool) error {
	res := r.db.WithContext(ctx).
		Model(&domain.StemTopic{}).
		Where("stem_topic_id = ?", stemTopicID).
		Update("visible", visible)
	if res.Error != nil {
		return classify("set stem topic visibility", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError(fmt.Sprintf("stem topic %d not found", stemTopicID))
	}
	return nil
}

// DiscardStemTopic deletes a stem topic together with its topic rows, so the
// next request for that stem key is moderated again. A stem topic that already
// has jokes is left alone.
func (r *TopicRepository) DiscardStemTopic(ctx context.Context, stemTopicID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var jokes int64
		if err := tx.Model(&domain.Joke{}).Where("stem_topic_id = ?", stemTopicID).Count(&jokes).Error; err != nil {
			return err
		}
		if jokes > 0 {
			return nil
		}
		if err := tx.Where("stem_topic_id = ?", stemTopicID).Delete(&domain.Topic{}).Error; err != nil {
			return err
		}
		return tx.Where("stem_topic_id = ?", stemTopicID).Delete(&domain.StemTopic{}).Error
	})
	if err != nil {
		return classify("discard stem topic", err)
	}
	return nil
}

// ListBlocked returns stem topics hidden by moderation, most recent first.
func (r *TopicRepository) ListBlocked(ctx context.Context) ([]domain.StemTopic, error) {
	var stems []domain.StemTopic
	err := r.db.WithContext(ctx).
		Where("visible = ?", false).
		Order("date_suggested DESC, stem_topic_id DESC").
		Find(&stems).Error
	if err != nil {
		return nil, classify("list blocked", err)
	}
	return stems, nil
}

// ClearBlocked deletes blocked stem topics and their topic rows so the next
// request for them is moderated afresh. Stem topics referenced by a joke are kept.
// Returns:
//   - int64: number of stem topics removed.
//   - error: non-nil if the transaction fails.
func (r *TopicRepository) ClearBlocked(ctx context.Context) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		err := tx.Model(&domain.StemTopic{}).
			Where("visible = ?", false).
			Where("NOT EXISTS (SELECT 1 FROM jokes WHERE jokes.stem_topic_id = stem_topic.stem_topic_id)").
			Pluck("stem_topic_id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("stem_topic_id IN ?", ids).Delete(&domain.Topic{}).Error; err != nil {
			return err
		}
		res := tx.Where("stem_topic_id IN ?", ids).Delete(&domain.StemTopic{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, classify("clear blocked", err)
	}
	return removed, nil
}

func (r *TopicRepository) findStemTopic(db *gorm.DB, stemKey string) (*domain.StemTopic, error) {
	var stem domain.StemTopic
	err := db.Where("topic_stemmed = ?", stemKey).Take(&stem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stem, nil
}

// resolveTopic returns nil, nil when rawText has no topic row yet.
func (r *TopicRepository) resolveTopic(db *gorm.DB, rawText string) (*domain.TopicResolution, error) {
	var row struct {
		TopicID     uint
		StemTopicID uint
		Visible     bool
	}
	err := db.Table("topics").
		Select("topics.topic_id, topics.stem_topic_id, stem_topic.visible").
		Joins("JOIN stem_topic ON stem_topic.stem_topic_id = topics.stem_topic_id").
		Where("topics.topic = ?", rawText).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find topic", err)
	}
	return &domain.TopicResolution{
		TopicID:     row.TopicID,
		StemTopicID: row.StemTopicID,
		Visible:     row.Visible,
	}, nil
}
