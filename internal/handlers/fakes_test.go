package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("connection refused")

type memUsers struct {
	mu    sync.Mutex
	users []types.User
	err   error
}

func (m *memUsers) GetByID(_ context.Context, id string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	for _, user := range m.users {
		if user.ID == id && !user.Deleted() {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	for _, user := range m.users {
		if user.Email == email && !user.Deleted() {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUsers) List(context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]types.User(nil), m.users...), nil
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users = append(m.users, user)
	return user, nil
}

func (m *memUsers) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, user := range m.users {
		if user.ID == id && !user.Deleted() {
			now := time.Now().UTC()
			m.users[i].DeletedAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memUsers) author(id string) *types.Author {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			author := user.Author()
			return &author
		}
	}
	return nil
}

type memBlogs struct {
	mu    sync.Mutex
	users *memUsers
	blogs []types.Blog
}

func (m *memBlogs) expand(blog types.Blog) types.Blog {
	blog.Author = m.users.author(blog.CreatedBy)
	return blog
}

func (m *memBlogs) List(context.Context) ([]types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.Blog
	for _, blog := range m.blogs {
		if blog.DeletedAt == nil {
			out = append(out, m.expand(blog))
		}
	}
	return out, nil
}

func (m *memBlogs) Get(_ context.Context, id string) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, blog := range m.blogs {
		if blog.ID == id && blog.DeletedAt == nil {
			return m.expand(blog), nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (m *memBlogs) Create(_ context.Context, blog types.Blog) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	blog.ID = uuid.NewString()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	m.blogs = append(m.blogs, blog)
	return blog, nil
}

func (m *memBlogs) Update(_ context.Context, blog types.Blog) (types.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.blogs {
		if existing.ID == blog.ID && existing.DeletedAt == nil {
			existing.Title = blog.Title
			existing.Subtitle = blog.Subtitle
			existing.Text = blog.Text
			existing.UpdatedAt = time.Now().UTC()
			m.blogs[i] = existing
			return existing, nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (m *memBlogs) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, blog := range m.blogs {
		if blog.ID == id && blog.DeletedAt == nil {
			now := time.Now().UTC()
			m.blogs[i].DeletedAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

type plainHasher struct{}

func (plainHasher) Hash(_ context.Context, password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Compare(_ context.Context, password, digest string) bool {
	return digest == "plain:"+password
}

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingRecorder) RecordAuth(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

func (c *countingRecorder) count(outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcomes[outcome]
}

type testEnv struct {
	router   http.Handler
	users    *memUsers
	blogs    *memBlogs
	tokens   *auth.TokenCodec
	recorder *countingRecorder
	now      time.Time
	logs     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    &memUsers{},
		recorder: &countingRecorder{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		logs:     &bytes.Buffer{},
	}
	env.blogs = &memBlogs{users: env.users}
	env.tokens = auth.NewTokenCodec([]byte("test-secret"), time.Hour, func() time.Time { return env.now })

	logger := slog.New(slog.NewJSONHandler(env.logs, nil))
	guard := NewGuard(env.tokens, env.recorder)
	userHandler := NewUserHandler(services.NewUserService(env.users, plainHasher{}), env.tokens, env.recorder, logger)
	blogHandler := NewBlogHandler(services.NewBlogService(env.blogs, nil), logger)

	router := chi.NewRouter()
	router.Use(RequestLogger(logger))
	router.Get("/healthz", Healthz)
	router.Route("/users", func(r chi.Router) {
		UserRouter(r, userHandler, guard)
	})
	router.Route("/blogs", func(r chi.Router) {
		BlogRouter(r, blogHandler, guard)
	})
	env.router = router
	return env
}

// seedUser stores an account directly and returns a token for it.
func (e *testEnv) seedUser(t *testing.T, role types.Role) (types.User, string) {
	t.Helper()

	user, err := e.users.Create(context.Background(), types.User{
		Name:         "Ana",
		Lastname:     "Lopez",
		Email:        uuid.NewString() + "@example.com",
		Role:         role,
		PasswordHash: "plain:Secr3t!pw",
	})
	require.NoError(t, err)

	token, err := e.tokens.Issue(auth.ClaimsFor(user))
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doWithHeader(t *testing.T, method, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authorization)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}
