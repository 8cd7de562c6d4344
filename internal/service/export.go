package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/timmy/jokegen/internal/domain"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/repository"
	"github.com/timmy/jokegen/internal/storage"
)

// ExportService writes JSON snapshots of stored jokes to object storage.
type ExportService struct {
	jokes  *repository.JokeRepository
	store  storage.ObjectStorage
	prefix string
	now    func() time.Time
}

// NewExportService creates a new ExportService; keys are written under prefix.
func NewExportService(jokes *repository.JokeRepository, store storage.ObjectStorage, prefix string) *ExportService {
	return &ExportService{jokes: jokes, store: store, prefix: prefix, now: time.Now}
}

// ExportedJoke is one joke in a snapshot.
type ExportedJoke struct {
	ID          uint            `json:"joke_id"`
	Topic       string          `json:"topic"`
	ModelName   string          `json:"model_name"`
	Type        domain.JokeType `json:"type"`
	Content     string          `json:"joke_content"`
	Explanation string          `json:"explanation"`
	RatingFunny int             `json:"rating_funny"`
	RatingOkay  int             `json:"rating_okay"`
	RatingDud   int             `json:"rating_dud"`
	DateCreated time.Time       `json:"date_created"`
}

// Snapshot is the uploaded document.
type Snapshot struct {
	ExportedAt time.Time      `json:"exported_at"`
	Count      int            `json:"count"`
	Jokes      []ExportedJoke `json:"jokes"`
}

// ExportResult reports where a snapshot went.
type ExportResult struct {
	Key   string
	URL   string
	Count int
	Bytes int
}

// Export uploads the newest limit jokes as one JSON object.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of jokes in the snapshot.
// Returns:
//   - *ExportResult: object key, URL and size.
//   - error: non-nil if reading or uploading fails.
func (s *ExportService) Export(ctx context.Context, limit int) (*ExportResult, error) {
	if limit <= 0 {
		return nil, domain.ValidationError("export limit must be positive")
	}
	start := time.Now()

	jokes, err := s.jokes.ListForExport(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	snap := Snapshot{ExportedAt: now, Count: len(jokes), Jokes: make([]ExportedJoke, 0, len(jokes))}
	for _, j := range jokes {
		e := ExportedJoke{
			ID:          j.ID,
			Topic:       j.Topic,
			ModelName:   j.ModelName,
			Type:        j.Type,
			Content:     j.Content,
			Explanation: j.Explanation,
			RatingFunny: j.RatingFunny,
			RatingOkay:  j.RatingOkay,
			RatingDud:   j.RatingDud,
			DateCreated: j.DateCreated,
		}
		snap.Jokes = append(snap.Jokes, e)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := path.Join(s.prefix, fmt.Sprintf("jokes-%s.json", now.Format("20060102T150405Z")))
	if err := s.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, domain.DependencyError(err)
	}

	logger.With(logger.Fields{"key": key}).
		WithCount(len(jokes)).
		Since(start).
		Info(ctx, "Joke snapshot exported")

	return &ExportResult{Key: key, URL: s.store.GetURL(key), Count: len(jokes), Bytes: len(data)}, nil
}
