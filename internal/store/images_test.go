package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/picreel/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func statePtr(s models.ImageState) *models.ImageState { return &s }

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := schemaVersion(s.conn)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, v)
}

func TestAddGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, pngHeader, "A red barn", false)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, rec.ImageData)
	assert.Equal(t, "A red barn", rec.Caption)
	assert.Equal(t, models.StatePending, rec.State)
	assert.Equal(t, "image/png", rec.MimeType)
	assert.Equal(t, len(pngHeader), rec.Size)
	assert.Nil(t, rec.PublishedAt)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryByState(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, pngHeader, "one", false)
	require.NoError(t, err)
	_, err = s.Add(ctx, pngHeader, "two", true)
	require.NoError(t, err)
	_, err = s.Add(ctx, pngHeader, "three", false)
	require.NoError(t, err)

	pending, err := s.Query(ctx, models.ImageFilter{State: statePtr(models.StatePending)})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "three", pending[0].Caption)
	assert.Equal(t, "one", pending[1].Caption)
	assert.Nil(t, pending[0].ImageData)

	n, err := s.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.Query(ctx, models.ImageFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestQuerySearchIsCaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, pngHeader, "Şehir Manzarası", false)
	require.NoError(t, err)
	_, err = s.Add(ctx, pngHeader, "Mountain lake", false)
	require.NoError(t, err)

	got, err := s.Query(ctx, models.ImageFilter{Search: "MOUNTAIN"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mountain lake", got[0].Caption)

	got, err = s.Query(ctx, models.ImageFilter{Search: "şehir"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUpdatePublishedAt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, pngHeader, "x", false)
	require.NoError(t, err)

	rec, err := s.Update(ctx, id, models.ImageUpdate{State: statePtr(models.StatePublished)})
	require.NoError(t, err)
	require.NotNil(t, rec.PublishedAt)
	first := *rec.PublishedAt

	// publishing again keeps the original stamp
	rec, err = s.Update(ctx, id, models.ImageUpdate{State: statePtr(models.StatePublished)})
	require.NoError(t, err)
	assert.True(t, first.Equal(*rec.PublishedAt))

	rec, err = s.Update(ctx, id, models.ImageUpdate{State: statePtr(models.StatePending)})
	require.NoError(t, err)
	assert.Nil(t, rec.PublishedAt)
	assert.False(t, rec.Published())
}

func TestUpdateCaptionAndImage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Add(ctx, pngHeader, "old", false)
	require.NoError(t, err)

	caption := "new"
	gif := []byte("GIF89a\x01\x00\x01\x00")
	rec, err := s.Update(ctx, id, models.ImageUpdate{Caption: &caption, ImageData: gif})
	require.NoError(t, err)
	assert.Equal(t, "new", rec.Caption)
	assert.Equal(t, "image/gif", rec.MimeType)
	assert.Equal(t, gif, rec.ImageData)

	_, err = s.Update(ctx, "missing", models.ImageUpdate{Caption: &caption})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndBulkDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, c := range []string{"a", "b", "c"} {
		id, err := s.Add(ctx, pngHeader, c, false)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, s.Delete(ctx, ids[0]))
	assert.ErrorIs(t, s.Delete(ctx, ids[0]), ErrNotFound)

	n, err := s.BulkDelete(ctx, []string{ids[1], ids[2], "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := s.Query(ctx, models.ImageFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetManyKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, _ := s.Add(ctx, pngHeader, "A", false)
	b, _ := s.Add(ctx, pngHeader, "B", false)
	c, _ := s.Add(ctx, pngHeader, "C", false)

	recs, err := s.GetMany(ctx, []string{c, a, b})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "C", recs[0].Caption)
	assert.Equal(t, "A", recs[1].Caption)
	assert.Equal(t, "B", recs[2].Caption)
}
