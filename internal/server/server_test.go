package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bitacora-blog/apiserver/internal/auth"
	"github.com/bitacora-blog/apiserver/internal/services"
	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/bitacora-blog/apiserver/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	users []types.User
}

func (s *stubUsers) GetByID(_ context.Context, id string) (types.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *stubUsers) List(context.Context) ([]types.User, error) { return s.users, nil }

func (s *stubUsers) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = "11111111-1111-1111-1111-111111111111"
	s.users = append(s.users, user)
	return user, nil
}

func (s *stubUsers) SoftDelete(context.Context, string) error { return store.ErrNotFound }

type stubBlogs struct{}

func (stubBlogs) List(context.Context) ([]types.Blog, error) { return nil, nil }

func (stubBlogs) Get(context.Context, string) (types.Blog, error) {
	return types.Blog{}, store.ErrNotFound
}

func (stubBlogs) Create(_ context.Context, blog types.Blog) (types.Blog, error) {
	blog.ID = "22222222-2222-2222-2222-222222222222"
	return blog, nil
}

func (stubBlogs) Update(context.Context, types.Blog) (types.Blog, error) {
	return types.Blog{}, store.ErrNotFound
}

func (stubBlogs) SoftDelete(context.Context, string) error { return store.ErrNotFound }

type stubHasher struct{}

func (stubHasher) Hash(_ context.Context, password string) (string, error) { return password, nil }

func (stubHasher) Compare(_ context.Context, password, digest string) bool {
	return password == digest
}

type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.payloads = append(p.payloads, data)
	return "msg-1", nil
}

func newTestRouter(t *testing.T, publisher services.Publisher) (http.Handler, *auth.TokenCodec, *prometheus.Registry) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenCodec([]byte("secret"), time.Hour, nil)
	registry := prometheus.NewRegistry()

	var events *services.EventEmitter
	if publisher != nil {
		events = services.NewEventEmitter(publisher, "blog-events", logger)
	}

	router := NewRouter(Dependencies{
		Users: &stubUsers{users: []types.User{{
			ID:           "33333333-3333-3333-3333-333333333333",
			Name:         "Admin",
			Email:        "admin@example.com",
			Role:         types.RoleAdmin,
			PasswordHash: "Adm1n!pass",
		}}},
		Blogs:    stubBlogs{},
		Hasher:   stubHasher{},
		Tokens:   tokens,
		Events:   events,
		Registry: registry,
		Logger:   logger,
	})
	return router, tokens, registry
}

func serve(router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	rec := serve(router, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestRouterExposesMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	rec := serve(router, http.MethodPost, "/users/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = serve(router, http.MethodGet, "/blogs/list", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `bitacora_auth_decisions_total{outcome="login_rejected"} 1`)
	assert.Contains(t, body, `bitacora_auth_decisions_total{outcome="missing_token"} 1`)
	assert.Contains(t, body, `bitacora_http_requests_total{method="POST",route="/users/login",status_code="401"} 1`)
}

func TestRouterPublishesBlogEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	router, tokens, _ := newTestRouter(t, publisher)

	token, err := tokens.Issue(auth.Claims{Subject: "33333333-3333-3333-3333-333333333333", Role: types.RoleAdmin})
	require.NoError(t, err)

	rec := serve(router, http.MethodPost, "/blogs/create", token, map[string]string{
		"title":    "Hola",
		"subtitle": "Mundo",
		"text":     "Un texto suficiente",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "blog-events", publisher.channels[0])
	event, err := services.DecodeBlogEvent(publisher.payloads[0])
	require.NoError(t, err)
	assert.Equal(t, services.EventBlogCreated, event.Type)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", event.BlogID)
	assert.Equal(t, "33333333-3333-3333-3333-333333333333", event.ActorID)
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	rec := serve(router, http.MethodGet, "/posts", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
