// Package publish pushes selected images to an external record sink and marks
// them published in the local store.
package publish

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAPIURL     = "https://api.airtable.com/v0"
	defaultContentURL = "https://content.airtable.com/v0"
	// Airtable accepts at most ten records per batch update.
	maxBatch = 10
)

// Attachment is an image uploaded to a created record.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Sink is an external collection of records.
type Sink interface {
	CreateRecord(ctx context.Context, note string) (string, error)
	UploadAttachment(ctx context.Context, recordID string, a Attachment) error
	FinishRecords(ctx context.Context, recordIDs []string) error
}

type AirtableConfig struct {
	Token   string
	BaseID  string
	Table   string
	Field   string
	Timeout time.Duration
	// APIURL and ContentURL override the public endpoints.
	APIURL     string
	ContentURL string
}

// AirtableSink implements Sink over the Airtable REST API.
type AirtableSink struct {
	api     *resty.Client
	content *resty.Client
	table   string
	field   string
}

type airtableFields map[string]any

type airtableRecord struct {
	ID     string         `json:"id,omitempty"`
	Fields airtableFields `json:"fields"`
}

type airtableBatch struct {
	Records []airtableRecord `json:"records"`
}

type airtableError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAirtable(cfg AirtableConfig) *AirtableSink {
	apiURL, contentURL := cfg.APIURL, cfg.ContentURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if contentURL == "" {
		contentURL = defaultContentURL
	}
	if cfg.Table == "" {
		cfg.Table = "Records"
	}
	if cfg.Field == "" {
		cfg.Field = "image"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	newClient := func(base string) *resty.Client {
		return resty.New().
			SetBaseURL(base+"/"+cfg.BaseID).
			SetAuthToken(cfg.Token).
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Timeout)
	}
	return &AirtableSink{
		api:     newClient(apiURL),
		content: newClient(contentURL),
		table:   cfg.Table,
		field:   cfg.Field,
	}
}

func checkResponse(resp *resty.Response, op string) error {
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	if e, ok := resp.Error().(*airtableError); ok && e.Error.Message != "" {
		return fmt.Errorf("airtable %s: %d %s: %s", op, resp.StatusCode(), e.Error.Type, e.Error.Message)
	}
	return fmt.Errorf("airtable %s: unexpected status %d", op, resp.StatusCode())
}

func (a *AirtableSink) CreateRecord(ctx context.Context, note string) (string, error) {
	var created airtableRecord
	resp, err := a.api.R().
		SetContext(ctx).
		SetBody(airtableRecord{Fields: airtableFields{"note": note}}).
		SetResult(&created).
		SetError(&airtableError{}).
		Post("/" + a.table)
	if err != nil {
		return "", fmt.Errorf("airtable create: %w", err)
	}
	if err := checkResponse(resp, "create"); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (a *AirtableSink) UploadAttachment(ctx context.Context, recordID string, at Attachment) error {
	resp, err := a.content.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"contentType": at.ContentType,
			"file":        base64.StdEncoding.EncodeToString(at.Data),
			"filename":    at.FileName,
		}).
		SetError(&airtableError{}).
		Post(fmt.Sprintf("/%s/%s/uploadAttachment", recordID, a.field))
	if err != nil {
		return fmt.Errorf("airtable upload: %w", err)
	}
	return checkResponse(resp, "upload")
}

// FinishRecords sets status=published on the records in batches.
func (a *AirtableSink) FinishRecords(ctx context.Context, recordIDs []string) error {
	for start := 0; start < len(recordIDs); start += maxBatch {
		end := min(start+maxBatch, len(recordIDs))

		batch := airtableBatch{}
		for _, id := range recordIDs[start:end] {
			batch.Records = append(batch.Records, airtableRecord{ID: id, Fields: airtableFields{"status": "published"}})
		}

		resp, err := a.api.R().
			SetContext(ctx).
			SetBody(batch).
			SetError(&airtableError{}).
			Patch("/" + a.table)
		if err != nil {
			return fmt.Errorf("airtable finish: %w", err)
		}
		if err := checkResponse(resp, "finish"); err != nil {
			return err
		}
	}
	return nil
}
