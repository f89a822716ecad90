package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilgisen/picreel/internal/models"
)

type memStore struct {
	recs map[string]*models.ImageRecord
}

func (m *memStore) Get(ctx context.Context, id string) (*models.ImageRecord, error) {
	r, ok := m.recs[id]
	if !ok {
		return nil, fmt.Errorf("missing %s", id)
	}
	return r, nil
}

func (m *memStore) Update(ctx context.Context, id string, upd models.ImageUpdate) (*models.ImageRecord, error) {
	r := m.recs[id]
	if upd.State != nil {
		r.State = *upd.State
	}
	return r, nil
}

type airtableServer struct {
	mu       sync.Mutex
	created  []string
	uploads  []string
	batches  [][]string
	failNext bool
}

func (s *airtableServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/appTEST/Records", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		s.mu.Lock()
		defer s.mu.Unlock()

		switch r.Method {
		case http.MethodPost:
			if s.failNext {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`{"error":{"type":"INVALID_VALUE","message":"bad note"}}`))
				return
			}
			var body airtableRecord
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			s.created = append(s.created, body.Fields["note"].(string))
			_, _ = fmt.Fprintf(w, `{"id":"rec%d","fields":{}}`, len(s.created))
		case http.MethodPatch:
			var batch airtableBatch
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
			var ids []string
			for _, rec := range batch.Records {
				assert.Equal(t, "published", rec.Fields["status"])
				ids = append(ids, rec.ID)
			}
			s.batches = append(s.batches, ids)
			_, _ = w.Write([]byte(`{"records":[]}`))
		}
	})
	mux.HandleFunc("/content/appTEST/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, strings.HasSuffix(r.URL.Path, "/image/uploadAttachment"))
		s.mu.Lock()
		s.uploads = append(s.uploads, body["contentType"]+" "+body["filename"])
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	return mux
}

func setup(t *testing.T, n int) (*Publisher, *airtableServer, *memStore, []string) {
	t.Helper()
	srv := &airtableServer{}
	ts := httptest.NewServer(srv.handler(t))
	t.Cleanup(ts.Close)

	sink := NewAirtable(AirtableConfig{
		Token:      "tok",
		BaseID:     "appTEST",
		APIURL:     ts.URL + "/api",
		ContentURL: ts.URL + "/content",
	})

	store := &memStore{recs: map[string]*models.ImageRecord{}}
	var ids []string
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("img%02d", i)
		store.recs[id] = &models.ImageRecord{
			ID: id, Caption: "caption " + id, MimeType: "image/png",
			ImageData: []byte{0x89, 'P', 'N', 'G'}, State: models.StatePending,
		}
		ids = append(ids, id)
	}
	return NewPublisher(sink, store), srv, store, ids
}

func TestPublishCreatesRecordsInOrder(t *testing.T) {
	p, srv, store, ids := setup(t, 3)

	res, err := p.Publish(context.Background(), []string{ids[2], ids[0]})
	require.NoError(t, err)

	assert.Equal(t, []string{"img02", "img00"}, res.ImageIDs)
	assert.Equal(t, []string{"rec1", "rec2"}, res.RecordIDs)
	assert.Equal(t, []string{"caption img02", "caption img00"}, srv.created)
	assert.Equal(t, []string{"image/png img02.png", "image/png img00.png"}, srv.uploads)
	assert.Equal(t, [][]string{{"rec1", "rec2"}}, srv.batches)

	assert.True(t, store.recs["img02"].Published())
	assert.True(t, store.recs["img00"].Published())
	assert.False(t, store.recs["img01"].Published())
}

func TestFinishIsBatchedByTen(t *testing.T) {
	p, srv, _, ids := setup(t, 23)

	_, err := p.Publish(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, srv.batches, 3)
	assert.Len(t, srv.batches[0], 10)
	assert.Len(t, srv.batches[1], 10)
	assert.Len(t, srv.batches[2], 3)
}

func TestSinkErrorLeavesStoreUntouched(t *testing.T) {
	p, srv, store, ids := setup(t, 1)
	srv.failNext = true

	_, err := p.Publish(context.Background(), ids)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad note")
	assert.False(t, store.recs[ids[0]].Published())
}

func TestPublishWithoutSink(t *testing.T) {
	_, err := NewPublisher(nil, &memStore{}).Publish(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrNoSink)
}
