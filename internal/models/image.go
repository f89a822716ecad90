package models

import (
	"fmt"
	"strings"
	"time"
)

// ImageState is the publish state of a stored image
type ImageState string

const (
	StatePending   ImageState = "pending"
	StatePublished ImageState = "published"
)

// ParseImageState accepts the state names used by the API and CLI.
func ParseImageState(s string) (ImageState, error) {
	switch ImageState(strings.ToLower(strings.TrimSpace(s))) {
	case StatePending:
		return StatePending, nil
	case StatePublished:
		return StatePublished, nil
	default:
		return "", fmt.Errorf("unknown image state %q", s)
	}
}

// ImageRecord represents a collected image and its caption
type ImageRecord struct {
	ID          string     `json:"id"`
	ImageData   []byte     `json:"-"`
	MimeType    string     `json:"mime_type"`
	Size        int        `json:"size"`
	Caption     string     `json:"caption"`
	State       ImageState `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Published is a convenience view over State.
func (r *ImageRecord) Published() bool {
	return r.State == StatePublished
}

// ImageUpdate carries the fields of a partial update. Nil fields are left untouched.
type ImageUpdate struct {
	Caption   *string
	State     *ImageState
	ImageData []byte
}

// ImageFilter narrows a query. Search matches captions case-insensitively.
type ImageFilter struct {
	Search string
	State  *ImageState
}
