package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratuser/inter-prep-GenAi/internal/config"
	"github.com/ratuser/inter-prep-GenAi/internal/db"
	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/llm"
	"github.com/ratuser/inter-prep-GenAi/internal/observability"
	"github.com/ratuser/inter-prep-GenAi/internal/server/ratelimit"
	"github.com/ratuser/inter-prep-GenAi/internal/types"
)

// memStore is an in-memory UserStore, ProfileStore and InterviewRepository.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*db.User
	profiles   map[uuid.UUID]*db.Profile
	interviews []db.Interview

	failProfiles   error
	failInterviews error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*db.User),
		profiles: make(map[uuid.UUID]*db.Profile),
	}
}

func (m *memStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateUser(_ context.Context, name, email, passwordHash string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return uuid.Nil, db.ErrDuplicateEmail
		}
	}
	now := time.Now()
	u := &db.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetProfile(_ context.Context, userID uuid.UUID) (*db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfiles != nil {
		return nil, m.failProfiles
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpsertProfile(_ context.Context, p *db.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfiles != nil {
		return m.failProfiles
	}
	now := time.Now()
	if existing, ok := m.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *memStore) CreateInterview(_ context.Context, iv *db.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInterviews != nil {
		return m.failInterviews
	}
	if iv.ID == uuid.Nil {
		iv.ID = uuid.New()
	}
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now()
	}
	m.interviews = append(m.interviews, *iv)
	return nil
}

func (m *memStore) ListInterviewsByUser(_ context.Context, userID uuid.UUID) ([]db.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInterviews != nil {
		return nil, m.failInterviews
	}
	var out []db.Interview
	for _, iv := range m.interviews {
		if iv.UserID == userID {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) putProfile(userID uuid.UUID, mode, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.profiles[userID] = &db.Profile{
		UserID:        userID,
		TargetRole:    "Backend Engineer",
		TargetCompany: "Acme",
		Experience:    "3 years",
		InterviewType: mode,
		Skills:        []string{"Go", "PostgreSQL"},
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// stubGateway replays queued replies and records every request.
type stubGateway struct {
	mu       sync.Mutex
	requests []*llm.Request
	replies  []stubReply
}

type stubReply struct {
	text string
	err  error
}

func (g *stubGateway) Complete(_ context.Context, req *llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if len(g.replies) == 0 {
		return "Tell me about a system you designed.", nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r.text, r.err
}

func (g *stubGateway) Close() error { return nil }

func (g *stubGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// recordingInvalidator counts cache invalidations.
type recordingInvalidator struct {
	mu    sync.Mutex
	users []uuid.UUID
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return r.err
}

type testEnv struct {
	handler     http.Handler
	store       *memStore
	gateway     *stubGateway
	invalidator *recordingInvalidator
	jwt         *JWTService
	metrics     *observability.Metrics
}

type envOption func(*Deps)

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	store := newMemStore()
	gateway := &stubGateway{}
	metrics := observability.NewMetrics()
	scripts := interview.MustDefaultScripts()

	controller, err := interview.NewController(interview.ControllerConfig{
		Gateway:    gateway,
		Scripts:    scripts,
		Observer:   metrics,
		SessionTag: func() string { return "TEST" },
	})
	require.NoError(t, err)

	jwtService := NewJWTService(&config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24})
	invalidator := &recordingInvalidator{}

	deps := Deps{
		Users:              store,
		Profiles:           store,
		Interviews:         store,
		ProfileInvalidator: invalidator,
		Controller:         controller,
		Recorder:           interview.NewRecorder(scripts, &interviewWriter{repo: store}, metrics),
		JWT:                jwtService,
		Passwords:          &config.PasswordConfig{BcryptCost: 4},
		Metrics:            metrics,
		CORS: config.CORSConfig{
			Origins:     []string{"http://localhost:5173", "http://localhost:5174"},
			AllowVercel: true,
		},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &testEnv{
		handler:     NewHandler(deps),
		store:       store,
		gateway:     gateway,
		invalidator: invalidator,
		jwt:         jwtService,
		metrics:     metrics,
	}
}

// token issues a bearer token for a fresh user ID.
func (e *testEnv) token(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	token, err := e.jwt.GenerateToken(userID)
	require.NoError(t, err)
	return userID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decodeMessage(t, w))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/interview/chat"},
		{http.MethodPost, "/api/interview/complete"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodGet, "/api/dashboard/stats"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := env.do(t, rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "No token provided, authorization denied", decodeMessage(t, w))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/health", "", nil)

	w := env.do(t, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/api/health"`)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:5173", true},
		{"http://localhost:5174", true},
		{"https://inter-prep-git-main.vercel.app", true},
		{"http://localhost:3000", false},
		{"https://evil.example.com", false},
		{"https://vercel.app.evil.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/interview/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestOriginAllowed_VercelDisabled(t *testing.T) {
	c := config.CORSConfig{Origins: []string{"http://localhost:5173"}}

	assert.True(t, originAllowed(c, "http://localhost:5173"))
	assert.False(t, originAllowed(c, "https://app.vercel.app"))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})
	t.Cleanup(limiter.Stop)

	handler := rateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, first.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, send().Code)

	limited := send()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests. Please try again later.", decodeMessage(t, limited))
}

func TestRateLimitMiddleware_HealthUnlimited(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	})
	t.Cleanup(limiter.Stop)

	env := newTestEnv(t, func(d *Deps) { d.Limiter = limiter })
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/health", "", nil).Code)
	}
}

func TestExtractClientID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "198.51.100.1:1234"
	assert.Equal(t, "198.51.100.1", extractClientID(req))

	req.RemoteAddr = "198.51.100.1"
	assert.Equal(t, "198.51.100.1", extractClientID(req))
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	jsonResponse(w, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()
	errorResponse(w, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"bad input"}`, w.Body.String())
}
