package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/timmy/jokegen/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JokeRepository persists generated jokes and the models that produced them.
type JokeRepository struct {
	db *gorm.DB
}

// NewJokeRepository creates a new JokeRepository.
func NewJokeRepository(db *gorm.DB) *JokeRepository {
	return &JokeRepository{db: db}
}

// FindOrCreateModel resolves a provider/model label to its id, inserting it on first use.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - name: label such as "Groq:llama-3.1-8b-instant".
// Returns:
//   - uint: model id.
//   - error: non-nil if the lookup or insert fails.
func (r *JokeRepository) FindOrCreateModel(ctx context.Context, name string) (uint, error) {
	db := r.db.WithContext(ctx)

	var model domain.Model
	err := db.Where("model_name = ?", name).Take(&model).Error
	if err == nil {
		return model.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, classify("find model", err)
	}

	model = domain.Model{Name: name}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "model_name"}},
		DoNothing: true,
	}).Create(&model)
	if res.Error != nil {
		return 0, classify("create model", res.Error)
	}
	if res.RowsAffected == 1 {
		return model.ID, nil
	}

	var winner domain.Model
	if err := db.Where("model_name = ?", name).Take(&winner).Error; err != nil {
		return 0, classify("reread model", err)
	}
	return winner.ID, nil
}

// StoreJoke inserts a joke with all rating counters at zero.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - joke: joke to persist; ID and DateCreated are filled in.
// Returns:
//   - uint: new joke id.
//   - error: non-nil if the insert fails.
func (r *JokeRepository) StoreJoke(ctx context.Context, joke *domain.Joke) (uint, error) {
	if joke.TopicID == 0 || joke.ModelID == 0 || joke.StemTopicID == 0 {
		return 0, domain.ValidationError("joke must reference a topic, a model and a stem topic")
	}
	if _, err := domain.ParseJokeType(string(joke.Type)); err != nil {
		return 0, err
	}
	if joke.Type == "" {
		joke.Type = domain.JokeTypeNormal
	}
	joke.ID = 0
	joke.RatingFunny, joke.RatingOkay, joke.RatingDud = 0, 0, 0

	if err := r.db.WithContext(ctx).Create(joke).Error; err != nil {
		return 0, classify("store joke", err)
	}
	return joke.ID, nil
}

// GetJokeByID loads a joke with its topic text and model name. When visitorID
// is set, UserVote holds that visitor's vote for day, if any.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: joke id.
//   - visitorID: optional visitor cookie value.
//   - day: voting day as YYYY-MM-DD.
// Returns:
//   - *domain.JokeWithDetails: the joke; domain.ErrNotFound when missing.
//   - error: non-nil if the lookup fails.
func (r *JokeRepository) GetJokeByID(ctx context.Context, id uint, visitorID, day string) (*domain.JokeWithDetails, error) {
	db := r.db.WithContext(ctx)

	var details domain.JokeWithDetails
	err := withTopicAndModel(db).
		Select(jokeDetailColumns).
		Where("jokes.joke_id = ?", id).
		Take(&details).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError(fmt.Sprintf("joke %d not found", id))
	}
	if err != nil {
		return nil, classify("get joke", err)
	}

	if visitorID == "" {
		return &details, nil
	}
	var vote domain.Vote
	err = db.Where("joke_id = ? AND visitor_string = ? AND vote_date = ?", id, visitorID, day).Take(&vote).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, classify("get visitor vote", err)
	default:
		details.UserVote = &vote.Rating
	}
	return &details, nil
}

// GetRecentJokes lists the newest jokes first.
func (r *JokeRepository) GetRecentJokes(ctx context.Context, limit int) ([]domain.JokeSummary, error) {
	summaries := []domain.JokeSummary{}
	if limit <= 0 {
		return summaries, nil
	}

	err := withTopic(r.db.WithContext(ctx)).
		Select(jokeSummaryColumns).
		Order("jokes.date_created DESC, jokes.joke_id DESC").
		Limit(limit).
		Find(&summaries).Error
	if err != nil {
		return nil, classify("recent jokes", err)
	}
	return summaries, nil
}

// GetHighestVotedJoke picks uniformly at random among the voted jokes tied for
// the best funny-minus-dud score. It returns nil, nil when no joke has a vote.
func (r *JokeRepository) GetHighestVotedJoke(ctx context.Context) (*domain.JokeSummary, error) {
	db := r.db.WithContext(ctx)
	voted := "jokes.rating_funny + jokes.rating_okay + jokes.rating_dud > 0"

	var best sql.NullInt64
	err := db.Table("jokes").
		Select("MAX(jokes.rating_funny - jokes.rating_dud)").
		Where(voted).
		Row().Scan(&best)
	if err != nil {
		return nil, classify("highest net score", err)
	}
	if !best.Valid {
		return nil, nil
	}

	var summary domain.JokeSummary
	err = withTopic(db).
		Select(jokeSummaryColumns).
		Where(voted).
		Where("jokes.rating_funny - jokes.rating_dud = ?", best.Int64).
		Order("RANDOM()").
		Take(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// the top joke lost its votes between the two queries
		return nil, nil
	}
	if err != nil {
		return nil, classify("highest voted joke", err)
	}
	return &summary, nil
}

// ListForExport returns jokes with topic text and model name, newest first.
func (r *JokeRepository) ListForExport(ctx context.Context, limit int) ([]domain.JokeWithDetails, error) {
	var jokes []domain.JokeWithDetails
	err := withTopicAndModel(r.db.WithContext(ctx)).
		Select(jokeDetailColumns).
		Order("jokes.date_created DESC, jokes.joke_id DESC").
		Limit(limit).
		Find(&jokes).Error
	if err != nil {
		return nil, classify("list jokes for export", err)
	}
	return jokes, nil
}

const jokeDetailColumns = "jokes.joke_id AS id, topics.topic AS topic, models.model_name AS model_name, " +
	"jokes.type AS type, jokes.joke_content AS content, jokes.explanation AS explanation, " +
	"jokes.rating_funny AS rating_funny, jokes.rating_okay AS rating_okay, jokes.rating_dud AS rating_dud, " +
	"jokes.date_created AS date_created"

const jokeSummaryColumns = "jokes.joke_id AS id, topics.topic AS topic, jokes.type AS type, " +
	"jokes.joke_content AS content, jokes.rating_funny AS rating_funny, jokes.rating_okay AS rating_okay, " +
	"jokes.rating_dud AS rating_dud, jokes.rating_funny - jokes.rating_dud AS net_rating, " +
	"jokes.rating_funny + jokes.rating_okay + jokes.rating_dud AS total_votes, jokes.date_created AS date_created"

func withTopic(db *gorm.DB) *gorm.DB {
	return db.Table("jokes").
		Joins("JOIN topics ON topics.topic_id = jokes.topic_id")
}

func withTopicAndModel(db *gorm.DB) *gorm.DB {
	return withTopic(db).
		Joins("JOIN models ON models.model_id = jokes.model_id")
}
