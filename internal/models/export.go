package models

import (
	"fmt"
	"strings"
	"time"
)

// Orientation selects the output resolution profile of a video
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// ParseOrientation maps user input to an Orientation. An empty string yields the fallback.
func ParseOrientation(s string, fallback Orientation) (Orientation, error) {
	switch Orientation(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case OrientationLandscape:
		return OrientationLandscape, nil
	case OrientationPortrait:
		return OrientationPortrait, nil
	default:
		return "", fmt.Errorf("unknown orientation %q", s)
	}
}

// ExportKind distinguishes generated artifacts
type ExportKind string

const (
	ExportVideo   ExportKind = "video"
	ExportArticle ExportKind = "article"
)

// Export describes a generated artifact saved by the export storage
type Export struct {
	ID          string      `json:"id"`
	Kind        ExportKind  `json:"kind"`
	FileName    string      `json:"file_name"`
	MimeType    string      `json:"mime_type"`
	Format      string      `json:"format,omitempty"`
	Size        int64       `json:"size"`
	Orientation Orientation `json:"orientation,omitempty"`
	Items       []string    `json:"items"`
	FilePath    string      `json:"file_path,omitempty"`
	RemoteURL   string      `json:"remote_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
