package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/bilgisen/picreel/internal/models"
)

const imageColumns = `id, mime_type, size, caption, state, created_at, updated_at, published_at`

// Add stores a new image and returns its generated id.
func (s *Store) Add(ctx context.Context, data []byte, caption string, published bool) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image data is empty")
	}

	now := time.Now().UTC()
	state := models.StatePending
	var publishedAt sql.NullInt64
	if published {
		state = models.StatePublished
		publishedAt = sql.NullInt64{Int64: now.UnixNano(), Valid: true}
	}

	id := uuid.NewString()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO images (id, image_data, mime_type, size, caption, state, created_at, updated_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, data, mimetype.Detect(data).String(), len(data), caption, string(state),
		now.UnixNano(), now.UnixNano(), publishedAt,
	)
	if err != nil {
		return "", fmt.Errorf("inserting image: %w", err)
	}
	return id, nil
}

// Get returns the full record including image bytes.
func (s *Store) Get(ctx context.Context, id string) (*models.ImageRecord, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+imageColumns+`, image_data FROM images WHERE id = ?`, id)

	var rec models.ImageRecord
	var scan imageRow
	if err := row.Scan(scan.targets(&rec, &rec.ImageData)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading image %s: %w", id, err)
	}
	scan.apply(&rec)
	return &rec, nil
}

// GetMany loads the records for ids in the given order. Missing ids fail with ErrNotFound.
func (s *Store) GetMany(ctx context.Context, ids []string) ([]*models.ImageRecord, error) {
	out := make([]*models.ImageRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Update applies a partial update. Moving to published stamps PublishedAt once;
// moving back to pending clears it.
func (s *Store) Update(ctx context.Context, id string, upd models.ImageUpdate) (*models.ImageRecord, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	var state string
	var publishedAt sql.NullInt64
	err = tx.QueryRowContext(ctx, `SELECT state, published_at FROM images WHERE id = ?`, id).Scan(&state, &publishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", id, err)
	}

	now := time.Now().UTC()
	sets := []string{"updated_at = ?"}
	args := []any{now.UnixNano()}

	if upd.Caption != nil {
		sets = append(sets, "caption = ?")
		args = append(args, *upd.Caption)
	}
	if upd.State != nil {
		next := *upd.State
		if next != models.StatePending && next != models.StatePublished {
			return nil, fmt.Errorf("unknown image state %q", next)
		}
		sets = append(sets, "state = ?")
		args = append(args, string(next))
		switch {
		case next == models.StatePublished && models.ImageState(state) != models.StatePublished:
			sets = append(sets, "published_at = ?")
			args = append(args, now.UnixNano())
		case next == models.StatePending:
			sets = append(sets, "published_at = NULL")
		}
	}
	if len(upd.ImageData) > 0 {
		sets = append(sets, "image_data = ?", "mime_type = ?", "size = ?")
		args = append(args, upd.ImageData, mimetype.Detect(upd.ImageData).String(), len(upd.ImageData))
	}

	args = append(args, id)
	if _, err := tx.ExecContext(ctx, `UPDATE images SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("updating image %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes one record.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting image %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes every listed id in one transaction and reports how many existed.
func (s *Store) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk delete: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM images WHERE id = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing bulk delete: %w", err)
	}
	defer stmt.Close()

	removed := 0
	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("deleting image %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		removed += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk delete: %w", err)
	}
	return removed, nil
}

// Query lists records newest first without their image bytes.
func (s *Store) Query(ctx context.Context, filter models.ImageFilter) ([]*models.ImageRecord, error) {
	query := `SELECT ` + imageColumns + ` FROM images`
	var args []any
	if filter.State != nil {
		query += ` WHERE state = ?`
		args = append(args, string(*filter.State))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	// SQLite's LOWER only folds ASCII, so caption search is matched here.
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	var out []*models.ImageRecord
	for rows.Next() {
		var rec models.ImageRecord
		var scan imageRow
		if err := rows.Scan(scan.targets(&rec)...); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		scan.apply(&rec)
		if needle != "" && !strings.Contains(strings.ToLower(rec.Caption), needle) {
			continue
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// CountPending returns the number of images not yet published.
func (s *Store) CountPending(ctx context.Context) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images WHERE state = ?`, string(models.StatePending)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting pending images: %w", err)
	}
	return n, nil
}

// imageRow holds the columns that need conversion after Scan.
type imageRow struct {
	state       string
	createdAt   int64
	updatedAt   int64
	publishedAt sql.NullInt64
}

func (r *imageRow) targets(rec *models.ImageRecord, extra ...any) []any {
	dst := []any{&rec.ID, &rec.MimeType, &rec.Size, &rec.Caption, &r.state, &r.createdAt, &r.updatedAt, &r.publishedAt}
	return append(dst, extra...)
}

func (r *imageRow) apply(rec *models.ImageRecord) {
	rec.State = models.ImageState(r.state)
	rec.CreatedAt = time.Unix(0, r.createdAt).UTC()
	rec.UpdatedAt = time.Unix(0, r.updatedAt).UTC()
	if r.publishedAt.Valid {
		t := time.Unix(0, r.publishedAt.Int64).UTC()
		rec.PublishedAt = &t
	}
}
