package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/bitacora-blog/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBackend struct {
	objects map[string][]byte
	ensured bool
}

func (m *memBackend) EnsureBucket(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memBackend) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memBackend) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBackend) Delete(_ context.Context, key string) error {
	if _, ok := m.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *memBackend) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return objects, nil
}

func (m *memBackend) Bucket() string {
	return "snapshots"
}

func TestStorageDelegates(t *testing.T) {
	backend := &memBackend{objects: map[string][]byte{}}
	s := NewStorage(backend)
	ctx := context.Background()

	require.NoError(t, s.EnsureBucket(ctx))
	assert.True(t, backend.ensured)
	assert.Equal(t, "snapshots", s.Bucket())

	require.NoError(t, s.Put(ctx, "/a.json", bytes.NewReader([]byte("{}")), 2, "application/json"))
	assert.Contains(t, backend.objects, "a.json")

	reader, err := s.Get(ctx, "a.json")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, s.Delete(ctx, " a.json "))
	_, err = s.Get(ctx, "a.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "a.json"), ErrObjectNotFound)
}

func TestStorageListSortsByKey(t *testing.T) {
	backend := &memBackend{objects: map[string][]byte{
		"snapshots/b.json": []byte("{}"),
		"snapshots/a.json": []byte("[]"),
		"other/c.json":     []byte("{}"),
	}}
	s := NewStorage(backend)

	objects, err := s.List(context.Background(), "/snapshots/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "snapshots/a.json", objects[0].Key)
	assert.Equal(t, "snapshots/b.json", objects[1].Key)
	assert.EqualValues(t, 2, objects[0].Size)
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "snapshots/a.json", want: "snapshots/a.json"},
		{in: " //snapshots//a.json ", want: "snapshots/a.json"},
		{in: "snapshots/../b.json", want: "b.json"},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"", "   ", "/", "..", "../etc/passwd", "a/../../b"} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.StorageConfig{Backend: config.BackendNone})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Open(ctx, config.StorageConfig{Backend: "s3"})
	assert.ErrorContains(t, err, "unsupported storage backend")

	_, err = Open(ctx, config.StorageConfig{Backend: config.BackendMinio})
	assert.ErrorContains(t, err, "minio endpoint is required")

	_, err = Open(ctx, config.StorageConfig{Backend: config.BackendGCS})
	assert.ErrorContains(t, err, "gcs bucket is required")
}
