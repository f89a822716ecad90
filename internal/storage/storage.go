package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/models"
)

const metaFile = "export.json"

// ErrNotFound is returned for an unknown export id.
var ErrNotFound = errors.New("export not found")

// Mirror copies artifacts to remote object storage.
type Mirror interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Storage keeps generated artifacts on disk under exports/YYYY/MM/DD/<id>/.
type Storage struct {
	basePath string
	mu       sync.RWMutex
	mirror   Mirror
	log      zerolog.Logger
}

func NewStorage(basePath string) (*Storage, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(filepath.Join(basePath, "exports"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
		log:      logger.For("storage"),
	}, nil
}

// SetMirror enables remote copies of every saved export.
func (s *Storage) SetMirror(m Mirror) {
	s.mu.Lock()
	s.mirror = m
	s.mu.Unlock()
}

func mirrorKey(exp *models.Export) string {
	return "exports/" + exp.ID + "/" + exp.FileName
}

// Save writes data and its metadata. ID, CreatedAt, Size and FilePath are filled in.
func (s *Storage) Save(ctx context.Context, exp *models.Export, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	exp.Size = int64(len(data))

	// Create dated directory (YYYY/MM/DD)
	dir := filepath.Join(s.basePath, "exports", exp.CreatedAt.Format("2006/01/02"), exp.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	exp.FilePath = filepath.Join(dir, filepath.Base(exp.FileName))
	if err := os.WriteFile(exp.FilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	if s.mirror != nil {
		url, err := s.mirror.Upload(ctx, mirrorKey(exp), exp.MimeType, data)
		if err != nil {
			s.log.Warn().Err(err).Str("export_id", exp.ID).Msg("mirror upload failed")
		} else {
			exp.RemoteURL = url
		}
	}

	return s.writeMeta(dir, exp)
}

func (s *Storage) writeMeta(dir string, exp *models.Export) error {
	meta, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), meta, 0644); err != nil {
		return fmt.Errorf("failed to write export metadata: %w", err)
	}
	return nil
}

// find walks the dated tree for id. Callers hold the lock.
func (s *Storage) find(id string) (*models.Export, error) {
	var found *models.Export
	err := filepath.WalkDir(filepath.Join(s.basePath, "exports"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || d.Name() != id {
			return nil
		}

		exp, err := readMeta(filepath.Join(path, metaFile))
		if err != nil {
			return err
		}
		found = exp
		return fs.SkipAll
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func readMeta(path string) (*models.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	var exp models.Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export: %w", err)
	}
	exp.FilePath = filepath.Join(filepath.Dir(path), filepath.Base(exp.FileName))
	return &exp, nil
}

// Get returns the metadata of one export.
func (s *Storage) Get(ctx context.Context, id string) (*models.Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(id)
}

// List returns exports newest first, paginated from page 1.
func (s *Storage) List(ctx context.Context, page, pageSize int) ([]*models.Export, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var exports []*models.Export
	err := filepath.WalkDir(filepath.Join(s.basePath, "exports"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != metaFile {
			return nil
		}
		exp, err := readMeta(path)
		if err != nil {
			return err
		}
		exports = append(exports, exp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}

	sort.Slice(exports, func(i, j int) bool {
		return exports[i].CreatedAt.After(exports[j].CreatedAt)
	})

	start := (page - 1) * pageSize
	if start >= len(exports) {
		return []*models.Export{}, nil
	}
	end := min(start+pageSize, len(exports))
	return exports[start:end], nil
}

// Delete removes the export directory and its remote copy.
func (s *Storage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exp, err := s.find(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Dir(exp.FilePath)); err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if s.mirror != nil && exp.RemoteURL != "" {
		if err := s.mirror.Delete(ctx, mirrorKey(exp)); err != nil {
			s.log.Warn().Err(err).Str("export_id", id).Msg("mirror delete failed")
		}
	}
	return nil
}
