package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/bitacora-blog/apiserver/internal/storage"
	"github.com/bitacora-blog/apiserver/internal/store"
	"github.com/bitacora-blog/apiserver/types"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users []types.User
	err   error
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id && !user.Deleted() {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return types.User{}, r.err
	}
	for _, user := range r.users {
		if user.Email == email && !user.Deleted() {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) List(context.Context) ([]types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]types.User(nil), r.users...), nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return types.User{}, r.err
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users = append(r.users, user)
	return user, nil
}

func (r *fakeUserRepo) SoftDelete(context.Context, string) error {
	return errors.New("not implemented")
}

type fakeBlogRepo struct {
	blogs []types.Blog
	err   error
}

func (r *fakeBlogRepo) List(context.Context) ([]types.Blog, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.blogs, nil
}

func (r *fakeBlogRepo) Get(_ context.Context, id string) (types.Blog, error) {
	for _, blog := range r.blogs {
		if blog.ID == id {
			return blog, nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (r *fakeBlogRepo) Create(_ context.Context, blog types.Blog) (types.Blog, error) {
	if r.err != nil {
		return types.Blog{}, r.err
	}
	blog.ID = fmt.Sprintf("blog-%d", len(r.blogs)+1)
	r.blogs = append(r.blogs, blog)
	return blog, nil
}

func (r *fakeBlogRepo) Update(_ context.Context, blog types.Blog) (types.Blog, error) {
	for i := range r.blogs {
		if r.blogs[i].ID == blog.ID {
			r.blogs[i].Title, r.blogs[i].Subtitle, r.blogs[i].Text = blog.Title, blog.Subtitle, blog.Text
			return r.blogs[i], nil
		}
	}
	return types.Blog{}, store.ErrNotFound
}

func (r *fakeBlogRepo) SoftDelete(_ context.Context, id string) error {
	for i := range r.blogs {
		if r.blogs[i].ID == id {
			r.blogs = append(r.blogs[:i], r.blogs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// plainHasher stands in for bcrypt so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(_ context.Context, password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	return "hashed:" + password, nil
}

func (plainHasher) Compare(_ context.Context, password, digest string) bool {
	return digest == "hashed:"+password
}

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakePublisher struct {
	messages []published
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.messages = append(p.messages, published{channel: channel, data: data, attrs: attrs})
	return fmt.Sprintf("msg-%d", len(p.messages)), nil
}

type memObjects struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memObjects) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(data), size)
	}
	m.objects[key] = data
	m.types[key] = contentType
	return nil
}

func (m *memObjects) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjects) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: m.types[key]})
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
