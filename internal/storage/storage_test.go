package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/picreel/internal/config"
	"github.com/bilgisen/picreel/internal/models"
)

func newExport(name string, at time.Time) *models.Export {
	return &models.Export{
		Kind:      models.ExportVideo,
		FileName:  name,
		MimeType:  "video/mp4",
		Items:     []string{"a", "b"},
		CreatedAt: at,
	}
}

func TestSaveGetDelete(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	exp := newExport("picreel-20261015-landscape.mp4", time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(ctx, exp, []byte("video")))
	require.NotEmpty(t, exp.ID)
	assert.Equal(t, int64(5), exp.Size)
	assert.Contains(t, exp.FilePath, "2026/10/15")

	got, err := s.Get(ctx, exp.ID)
	require.NoError(t, err)
	assert.Equal(t, exp.FileName, got.FileName)
	assert.Equal(t, []string{"a", "b"}, got.Items)
	data, err := os.ReadFile(got.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "video", string(data))

	require.NoError(t, s.Delete(ctx, exp.ID))
	_, err = s.Get(ctx, exp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, exp.ID), ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old.mp4", "mid.mp4", "new.mp4"} {
		require.NoError(t, s.Save(ctx, newExport(name, base.Add(time.Duration(i)*48*time.Hour)), []byte{1}))
	}

	all, err := s.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new.mp4", all[0].FileName)
	assert.Equal(t, "old.mp4", all[2].FileName)

	page, err := s.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "old.mp4", page[0].FileName)
}

type fakeMirror struct {
	uploads map[string][]byte
	deleted []string
	fail    bool
}

func (m *fakeMirror) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if m.fail {
		return "", errors.New("offline")
	}
	m.uploads[key] = data
	return "https://cdn.example/" + key, nil
}

func (m *fakeMirror) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

func TestMirrorIsBestEffort(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	mirror := &fakeMirror{uploads: map[string][]byte{}}
	s.SetMirror(mirror)

	exp := newExport("a.mp4", time.Now())
	require.NoError(t, s.Save(ctx, exp, []byte("x")))
	assert.Equal(t, "https://cdn.example/exports/"+exp.ID+"/a.mp4", exp.RemoteURL)

	require.NoError(t, s.Delete(ctx, exp.ID))
	assert.Equal(t, []string{"exports/" + exp.ID + "/a.mp4"}, mirror.deleted)

	mirror.fail = true
	exp2 := newExport("b.mp4", time.Now())
	require.NoError(t, s.Save(ctx, exp2, []byte("y")))
	assert.Empty(t, exp2.RemoteURL)
}

func TestR2MirrorPutsObject(t *testing.T) {
	var mu sync.Mutex
	var gotPath, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.Method == http.MethodPut {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m, err := NewR2Mirror(context.Background(), &config.Config{
		R2Endpoint:  srv.URL,
		R2AccessKey: "key",
		R2SecretKey: "secret",
		R2Bucket:    "picreel",
	})
	require.NoError(t, err)

	url, err := m.Upload(context.Background(), "exports/1/a.mp4", "video/mp4", []byte("movie"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/picreel/exports/1/a.mp4", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/picreel/exports/1/a.mp4", gotPath)
	assert.Equal(t, "video/mp4", gotType)
	assert.Equal(t, "movie", string(gotBody))
}
