package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/timmy/jokegen/internal/domain"
	"github.com/timmy/jokegen/internal/logger"
	"github.com/timmy/jokegen/internal/prompts"
	"github.com/timmy/jokegen/internal/repository"
	"github.com/timmy/jokegen/internal/textproc"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
	homeRecentLimit    = 20

	listPreviewBytes = 128
	homeTopicBytes   = 32
	homePreviewBytes = 64
)

// Moderator decides whether a topic may be joked about. Implementations
// must not fail: an unavailable classifier has to resolve to a verdict.
type Moderator interface {
	IsAppropriate(ctx context.Context, topic string) bool
}

// JokeServiceConfig holds the generation limits.
type JokeServiceConfig struct {
	TopicMaxLength   int
	JokeLimit        int
	ExplanationLimit int
	// SystemPrompt overrides the comedian system prompt when set.
	SystemPrompt string
}

// JokeService runs the generation workflow and serves joke reads.
type JokeService struct {
	topics    *repository.TopicRepository
	jokes     *repository.JokeRepository
	moderator Moderator
	llm       Completer
	calendar  *Calendar
	cfg       JokeServiceConfig
}

// NewJokeService creates a new JokeService.
// Parameters:
//   - topics: topic registry.
//   - jokes: joke store.
//   - moderator: gate consulted on the first sighting of a stem key.
//   - llm: completion client for jokes and explanations.
//   - calendar: names the voting day used to attach a visitor's vote.
//   - cfg: generation limits; zero values fall back to defaults.
//
// Returns:
//   - *JokeService: initialized service.
func NewJokeService(
	topics *repository.TopicRepository,
	jokes *repository.JokeRepository,
	moderator Moderator,
	llm Completer,
	calendar *Calendar,
	cfg JokeServiceConfig,
) *JokeService {
	if cfg.TopicMaxLength <= 0 {
		cfg.TopicMaxLength = 100
	}
	if cfg.JokeLimit <= 0 {
		cfg.JokeLimit = 1024
	}
	if cfg.ExplanationLimit <= 0 {
		cfg.ExplanationLimit = 1024
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = prompts.ComedianSystemPrompt
	}
	if calendar == nil {
		calendar = NewCalendar(time.UTC)
	}
	return &JokeService{
		topics:    topics,
		jokes:     jokes,
		moderator: moderator,
		llm:       llm,
		calendar:  calendar,
		cfg:       cfg,
	}
}

// GeneratedJoke is the result of a successful generation.
type GeneratedJoke struct {
	ID          uint            `json:"joke_id"`
	Topic       string          `json:"topic"`
	Type        domain.JokeType `json:"type"`
	Content     string          `json:"joke_content"`
	Explanation string          `json:"explanation"`
	ModelName   string          `json:"model_name"`
}

// Generate validates topic, applies moderation, asks the LLM for a joke and an
// explanation and stores the result.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - topic: raw topic text.
//   - jokeType: "normal", "story", "limerick" or empty for normal.
//
// Returns:
//   - *GeneratedJoke: the stored joke.
//   - error: ErrValidation, ErrTopicBlocked, ErrDependency or a store error.
func (s *JokeService) Generate(ctx context.Context, topic, jokeType string) (*GeneratedJoke, error) {
	start := time.Now()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.ValidationError("topic is required")
	}
	if utf8.RuneCountInString(topic) > s.cfg.TopicMaxLength {
		return nil, domain.ValidationError(fmt.Sprintf("topic must be at most %d characters", s.cfg.TopicMaxLength))
	}
	jt, err := domain.ParseJokeType(jokeType)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithField(ctx, logger.FieldTopic, topic)

	resolved, err := s.topics.FindOrCreateTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	switch {
	case resolved.IsNew:
		if !s.moderator.IsAppropriate(ctx, topic) {
			if err := s.block(ctx, resolved.StemTopicID); err != nil {
				return nil, err
			}
			logger.With(logger.Fields{logger.FieldStemKey: textproc.StemKey(topic)}).
				WithOutcome("blocked").
				Info(ctx, "Topic blocked by moderation")
			return nil, blockedError(topic)
		}
	case !resolved.Visible:
		logger.CtxInfo(ctx, "Topic matches a blocked stem, skipping generation")
		return nil, blockedError(topic)
	default:
		logger.CtxDebug(ctx, "Topic matches a known stem, reusing its verdict")
	}

	content, err := s.llm.Complete(ctx, s.cfg.SystemPrompt, prompts.Joke(string(jt), topic))
	if err != nil {
		return nil, fmt.Errorf("joke generation failed: %w", err)
	}
	explanation, err := s.llm.Complete(ctx, prompts.ExplainerSystemPrompt, prompts.Explanation(jt.Noun(), content))
	if err != nil {
		return nil, fmt.Errorf("explanation generation failed: %w", err)
	}

	content = textproc.Truncate(content, s.cfg.JokeLimit)
	explanation = textproc.Truncate(explanation, s.cfg.ExplanationLimit)

	id, err := s.RecordJoke(ctx, RecordJokeParams{
		TopicID:     resolved.TopicID,
		StemTopicID: resolved.StemTopicID,
		ModelName:   s.llm.ModelName(),
		Type:        jt,
		Content:     content,
		Explanation: explanation,
	})
	if err != nil {
		return nil, err
	}

	logger.With(logger.Fields{logger.FieldJokeID: id}).
		Since(start).
		Info(ctx, "Joke generated")

	return &GeneratedJoke{
		ID:          id,
		Topic:       topic,
		Type:        jt,
		Content:     content,
		Explanation: explanation,
		ModelName:   s.llm.ModelName(),
	}, nil
}

// block records a negative verdict. If the verdict cannot be stored, the fresh
// stem topic is discarded instead so it cannot stay visible unmoderated.
func (s *JokeService) block(ctx context.Context, stemTopicID uint) error {
	err := s.topics.SetStemTopicVisibility(ctx, stemTopicID, false)
	if err == nil {
		return nil
	}
	if derr := s.topics.DiscardStemTopic(ctx, stemTopicID); derr != nil {
		logger.CtxError(ctx, "Failed to discard stem topic %d after a lost verdict: %v", stemTopicID, derr)
		return errors.Join(err, derr)
	}
	return err
}

func blockedError(topic string) error {
	return errors.Join(domain.ErrTopicBlocked, fmt.Errorf("topic %q is not appropriate for family-friendly jokes", topic))
}

// RecordJokeParams describes a joke produced outside the store.
type RecordJokeParams struct {
	TopicID     uint
	StemTopicID uint
	ModelName   string
	Type        domain.JokeType
	Content     string
	Explanation string
}

// RecordJoke resolves the model label and stores the joke with zeroed counters.
func (s *JokeService) RecordJoke(ctx context.Context, p RecordJokeParams) (uint, error) {
	if strings.TrimSpace(p.Content) == "" {
		return 0, domain.ValidationError("joke content is required")
	}
	if strings.TrimSpace(p.ModelName) == "" {
		return 0, domain.ValidationError("model name is required")
	}

	modelID, err := s.jokes.FindOrCreateModel(ctx, p.ModelName)
	if err != nil {
		return 0, err
	}
	return s.jokes.StoreJoke(ctx, &domain.Joke{
		TopicID:     p.TopicID,
		ModelID:     modelID,
		StemTopicID: p.StemTopicID,
		Type:        p.Type,
		Content:     p.Content,
		Explanation: p.Explanation,
	})
}

// GetJoke returns a joke with the visitor's vote for today, if any.
func (s *JokeService) GetJoke(ctx context.Context, id uint, visitorID string) (*domain.JokeWithDetails, error) {
	return s.jokes.GetJokeByID(ctx, id, visitorID, s.calendar.Today())
}

// Recent lists the newest jokes with short previews. A non-positive limit
// uses the default; limits above the maximum are clamped.
func (s *JokeService) Recent(ctx context.Context, limit int) ([]domain.JokeSummary, error) {
	switch {
	case limit <= 0:
		limit = defaultRecentLimit
	case limit > maxRecentLimit:
		limit = maxRecentLimit
	}

	jokes, err := s.jokes.GetRecentJokes(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range jokes {
		jokes[i].Preview = textproc.Preview(jokes[i].Content, listPreviewBytes)
	}
	return jokes, nil
}

// Highest returns the best rated joke, or nil when nobody has voted yet.
func (s *JokeService) Highest(ctx context.Context) (*domain.JokeSummary, error) {
	return s.jokes.GetHighestVotedJoke(ctx)
}

// HomePage is the data behind the landing page.
type HomePage struct {
	Recent  []domain.JokeSummary `json:"recent"`
	Highest *domain.JokeSummary  `json:"highest"`
}

// Home loads the compact recent list and the highest voted joke concurrently.
// Either half degrades to empty on failure so the page still renders.
func (s *JokeService) Home(ctx context.Context) *HomePage {
	page := &HomePage{Recent: []domain.JokeSummary{}}

	var g errgroup.Group
	g.Go(func() error {
		recent, err := s.jokes.GetRecentJokes(ctx, homeRecentLimit)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Error("Failed to load recent jokes")
			return nil
		}
		for i := range recent {
			recent[i].TopicPreview = textproc.Preview(recent[i].Topic, homeTopicBytes)
			recent[i].Preview = textproc.Preview(recent[i].Content, homePreviewBytes)
		}
		page.Recent = recent
		return nil
	})
	g.Go(func() error {
		highest, err := s.jokes.GetHighestVotedJoke(ctx)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Error("Failed to load highest voted joke")
			return nil
		}
		page.Highest = highest
		return nil
	})
	_ = g.Wait()

	return page
}
