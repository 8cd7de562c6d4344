package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/jokegen/internal/api"
	"github.com/timmy/jokegen/internal/api/middleware"
	"github.com/timmy/jokegen/internal/config"
	"github.com/timmy/jokegen/internal/repository"
	"github.com/timmy/jokegen/internal/service"
	"github.com/timmy/jokegen/internal/testutil"
	"gorm.io/gorm"
)

const (
	testAdminToken = "s3cret"
	testVisitor    = "0123456789abcdef0123456789abcdef"
)

type stubLLM struct{}

func (stubLLM) Complete(_ context.Context, _, user string) (string, error) {
	if strings.HasPrefix(user, "Please explain") {
		return "Because of the pun.", nil
	}
	return "A joke about it.", nil
}

func (stubLLM) ModelName() string { return "Stub:model" }

// stubModerator blocks any topic mentioning "offensive".
type stubModerator struct{}

func (stubModerator) IsAppropriate(_ context.Context, topic string) bool {
	return !strings.Contains(strings.ToLower(topic), "offensive")
}

type stubLimiter struct {
	allow bool
	err   error
}

func (l stubLimiter) Allow(context.Context, string) (bool, error) { return l.allow, l.err }

func (stubLimiter) Close() error { return nil }

func newTestRouter(t *testing.T, limiter service.RateLimiter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	cal := service.NewCalendar(time.UTC)

	jokes := service.NewJokeService(
		repository.NewTopicRepository(db),
		repository.NewJokeRepository(db),
		stubModerator{},
		stubLLM{},
		cal,
		service.JokeServiceConfig{},
	)
	votes := service.NewVoteService(repository.NewVoteLedger(db), cal, 2)

	r := api.SetupRouter(&api.Services{
		Jokes:   jokes,
		Votes:   votes,
		Limiter: limiter,
		Ping:    func(ctx context.Context) error { return repository.Ping(ctx, db) },
	}, &config.ServerConfig{
		Mode:       "test",
		AdminToken: testAdminToken,
	})
	return r, db
}

func do(r *gin.Engine, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: testVisitor})
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRouter_Health(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(r, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Errorf("GET %s missing X-Request-ID", path)
		}
	}
}

func TestRouter_GenerateJoke(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{name: "ok", body: map[string]string{"topic": "cats", "type": "story"}, wantStatus: http.StatusCreated},
		{name: "missing topic", body: map[string]string{"type": "story"}, wantStatus: http.StatusBadRequest, wantError: "Invalid request"},
		{name: "blank topic", body: map[string]string{"topic": "   "}, wantStatus: http.StatusBadRequest, wantError: "topic"},
		{name: "bad type", body: map[string]string{"topic": "cats", "type": "sonnet"}, wantStatus: http.StatusBadRequest, wantError: "sonnet"},
		{name: "blocked", body: map[string]string{"topic": "offensive stuff"}, wantStatus: http.StatusBadRequest, wantError: "not appropriate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/api/v1/jokes", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			out := decode(t, rec)
			if tt.wantError != "" {
				msg, _ := out["error"].(string)
				if !strings.Contains(msg, tt.wantError) {
					t.Errorf("error = %q, want it to contain %q", msg, tt.wantError)
				}
				return
			}
			if id, _ := out["joke_id"].(float64); id <= 0 {
				t.Errorf("joke_id = %v, want positive", out["joke_id"])
			}
			if out["model_name"] != "Stub:model" || out["type"] != "story" {
				t.Errorf("response = %v", out)
			}
		})
	}
}

func TestRouter_VoteFlow(t *testing.T) {
	r, db := newTestRouter(t, nil)
	joke := testutil.SeedJoke(t, db, "ducks", 0, 0, 0)

	rec := do(r, http.MethodPost, "/api/v1/votes", map[string]interface{}{"joke_id": joke.ID, "rating": "funny"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first vote status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if out := decode(t, rec); out["message"] != "Vote recorded: funny" || out["rating"] != "funny" {
		t.Errorf("first vote = %v", out)
	}

	rec = do(r, http.MethodGet, "/api/v1/jokes/"+itoa(joke.ID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET joke status = %d", rec.Code)
	}
	out := decode(t, rec)
	if out["user_vote"] != "funny" || out["rating_funny"] != float64(1) {
		t.Errorf("joke after vote = %v", out)
	}

	rec = do(r, http.MethodPost, "/api/v1/votes", map[string]interface{}{"joke_id": joke.ID, "rating": "dud"}, nil)
	if out := decode(t, rec); out["message"] != "Vote changed from funny to dud" {
		t.Errorf("switch vote = %v", out)
	}

	rec = do(r, http.MethodPost, "/api/v1/votes", map[string]interface{}{"joke_id": joke.ID, "rating": "dud"}, nil)
	out = decode(t, rec)
	if out["message"] != "Vote removed: dud" {
		t.Errorf("toggle vote = %v", out)
	}
	if _, ok := out["rating"]; ok {
		t.Errorf("removed vote should not report a rating: %v", out)
	}

	got := testutil.ReloadJoke(t, db, joke.ID)
	if got.RatingFunny != 0 || got.RatingDud != 0 {
		t.Errorf("counters = funny %d dud %d, want 0/0", got.RatingFunny, got.RatingDud)
	}
}

func TestRouter_VoteErrors(t *testing.T) {
	r, db := newTestRouter(t, nil)
	joke := testutil.SeedJoke(t, db, "geese", 0, 0, 0)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{name: "unknown joke", body: map[string]interface{}{"joke_id": 999, "rating": "funny"}, wantStatus: http.StatusNotFound},
		{name: "bad rating", body: map[string]interface{}{"joke_id": joke.ID, "rating": "meh"}, wantStatus: http.StatusBadRequest},
		{name: "missing joke", body: map[string]interface{}{"rating": "okay"}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/api/v1/votes", tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRouter_GetJoke(t *testing.T) {
	r, db := newTestRouter(t, nil)
	joke := testutil.SeedJoke(t, db, "hens", 0, 0, 0)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{path: "/api/v1/jokes/" + itoa(joke.ID), wantStatus: http.StatusOK},
		{path: "/api/v1/jokes/12345", wantStatus: http.StatusNotFound},
		{path: "/api/v1/jokes/abc", wantStatus: http.StatusBadRequest},
		{path: "/api/v1/jokes/0", wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := do(r, http.MethodGet, tt.path, nil, nil)
		if rec.Code != tt.wantStatus {
			t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantStatus)
		}
	}

	out := decode(t, do(r, http.MethodGet, "/api/v1/jokes/"+itoa(joke.ID), nil, nil))
	if v, ok := out["user_vote"]; !ok || v != nil {
		t.Errorf("user_vote = %v, want null", v)
	}
}

func TestRouter_ListHighestHome(t *testing.T) {
	r, db := newTestRouter(t, nil)

	out := decode(t, do(r, http.MethodGet, "/api/v1/jokes/highest", nil, nil))
	if out["joke"] != nil {
		t.Errorf("highest with no votes = %v, want null", out["joke"])
	}

	testutil.SeedJoke(t, db, "frogs", 3, 0, 0)
	testutil.SeedJoke(t, db, "toads", 0, 0, 1)

	out = decode(t, do(r, http.MethodGet, "/api/v1/jokes?limit=1", nil, nil))
	if out["total"] != float64(1) {
		t.Errorf("list total = %v, want 1", out["total"])
	}
	if rec := do(r, http.MethodGet, "/api/v1/jokes?limit=ten", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}

	out = decode(t, do(r, http.MethodGet, "/api/v1/jokes/highest", nil, nil))
	best, _ := out["joke"].(map[string]interface{})
	if best["topic"] != "frogs" {
		t.Errorf("highest = %v, want frogs", out["joke"])
	}

	out = decode(t, do(r, http.MethodGet, "/api/v1/home", nil, nil))
	recent, _ := out["recent"].([]interface{})
	if len(recent) != 2 || out["highest"] == nil {
		t.Errorf("home = %v", out)
	}
}

func TestRouter_AdminBlocked(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	do(r, http.MethodPost, "/api/v1/jokes", map[string]string{"topic": "offensive things"}, nil)

	if rec := do(r, http.MethodGet, "/api/v1/admin/blocked", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", rec.Code)
	}
	bad := map[string]string{"Authorization": "Bearer nope"}
	if rec := do(r, http.MethodGet, "/api/v1/admin/blocked", nil, bad); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", rec.Code)
	}

	auth := map[string]string{"Authorization": "Bearer " + testAdminToken}
	out := decode(t, do(r, http.MethodGet, "/api/v1/admin/blocked", nil, auth))
	if out["total"] != float64(1) {
		t.Fatalf("blocked = %v, want one topic", out)
	}

	out = decode(t, do(r, http.MethodPost, "/api/v1/admin/blocked/clear", nil, auth))
	if out["removed"] != float64(1) {
		t.Errorf("clear = %v, want removed 1", out)
	}
	out = decode(t, do(r, http.MethodGet, "/api/v1/admin/blocked", nil, auth))
	if out["total"] != float64(0) {
		t.Errorf("blocked after clear = %v", out)
	}
}

func TestRouter_AdminDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", middleware.AdminAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := do(r, http.MethodGet, "/admin", nil, map[string]string{"Authorization": "Bearer "})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    stubLimiter
		wantStatus int
	}{
		{name: "denied", limiter: stubLimiter{allow: false}, wantStatus: http.StatusTooManyRequests},
		{name: "limiter down", limiter: stubLimiter{err: errors.New("redis down")}, wantStatus: http.StatusCreated},
		{name: "allowed", limiter: stubLimiter{allow: true}, wantStatus: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, tt.limiter)
			rec := do(r, http.MethodPost, "/api/v1/jokes", map[string]string{"topic": "bees"}, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestVisitorMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Visitor(true))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, middleware.VisitorID(c)) })

	tests := []struct {
		name      string
		cookie    string
		wantIssue bool
	}{
		{name: "no cookie", wantIssue: true},
		{name: "malformed", cookie: "not-a-visitor", wantIssue: true},
		{name: "uppercase hex", cookie: strings.ToUpper(testVisitor), wantIssue: true},
		{name: "valid", cookie: testVisitor, wantIssue: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.VisitorCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			cookies := rec.Result().Cookies()
			if !tt.wantIssue {
				if len(cookies) != 0 {
					t.Errorf("valid cookie was reissued")
				}
				if rec.Body.String() != tt.cookie {
					t.Errorf("visitor = %q, want %q", rec.Body.String(), tt.cookie)
				}
				return
			}

			if len(cookies) != 1 {
				t.Fatalf("got %d cookies, want 1", len(cookies))
			}
			c := cookies[0]
			if len(c.Value) != 32 || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
				t.Errorf("cookie = %+v", c)
			}
			if c.MaxAge != 365*24*60*60 {
				t.Errorf("MaxAge = %d, want one year", c.MaxAge)
			}
			if rec.Body.String() != c.Value {
				t.Errorf("handler saw %q, cookie is %q", rec.Body.String(), c.Value)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CORS(config.CORSConfig{AllowedOrigins: []string{"https://jokes.example"}}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{name: "allowed", method: http.MethodGet, origin: "https://jokes.example", wantOrigin: "https://jokes.example", wantStatus: http.StatusOK},
		{name: "preflight", method: http.MethodOptions, origin: "https://jokes.example", wantOrigin: "https://jokes.example", wantStatus: http.StatusNoContent},
		{name: "other origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		{name: "same origin", method: http.MethodGet, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
