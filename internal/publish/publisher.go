package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/models"
)

// ErrNoSink is returned when publishing is attempted without a configured sink.
var ErrNoSink = errors.New("publishing sink is not configured")

// ImageStore is the part of the store the publisher needs.
type ImageStore interface {
	Get(ctx context.Context, id string) (*models.ImageRecord, error)
	Update(ctx context.Context, id string, upd models.ImageUpdate) (*models.ImageRecord, error)
}

// Result lists what was pushed.
type Result struct {
	ImageIDs  []string `json:"image_ids"`
	RecordIDs []string `json:"record_ids"`
}

type Publisher struct {
	sink  Sink
	store ImageStore
	log   zerolog.Logger
}

func NewPublisher(sink Sink, store ImageStore) *Publisher {
	return &Publisher{sink: sink, store: store, log: logger.For("publish")}
}

// Publish creates one sink record per image in order, attaches the image,
// closes the records and finally marks the images published locally.
func (p *Publisher) Publish(ctx context.Context, ids []string) (*Result, error) {
	if p.sink == nil {
		return nil, ErrNoSink
	}

	res := &Result{}
	for _, id := range ids {
		rec, err := p.store.Get(ctx, id)
		if err != nil {
			return res, fmt.Errorf("loading %s: %w", id, err)
		}

		recordID, err := p.sink.CreateRecord(ctx, rec.Caption)
		if err != nil {
			return res, err
		}
		if err := p.sink.UploadAttachment(ctx, recordID, attachmentFor(rec)); err != nil {
			return res, err
		}
		res.ImageIDs = append(res.ImageIDs, id)
		res.RecordIDs = append(res.RecordIDs, recordID)
		p.log.Debug().Str("image_id", id).Str("record_id", recordID).Msg("record created")
	}

	if err := p.sink.FinishRecords(ctx, res.RecordIDs); err != nil {
		return res, err
	}

	published := models.StatePublished
	for _, id := range res.ImageIDs {
		if _, err := p.store.Update(ctx, id, models.ImageUpdate{State: &published}); err != nil {
			return res, fmt.Errorf("marking %s published: %w", id, err)
		}
	}

	p.log.Info().Int("count", len(res.ImageIDs)).Msg("images published")
	return res, nil
}

func attachmentFor(rec *models.ImageRecord) Attachment {
	mime := rec.MimeType
	ext := mimetype.Lookup(mime)
	if mime == "" || ext == nil {
		detected := mimetype.Detect(rec.ImageData)
		mime = detected.String()
		ext = detected
	}
	return Attachment{
		FileName:    rec.ID + strings.TrimSpace(ext.Extension()),
		ContentType: mime,
		Data:        rec.ImageData,
	}
}
