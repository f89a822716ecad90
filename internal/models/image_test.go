package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestImageRecordJSONOmitsImageData(t *testing.T) {
	now := time.Now()
	record := ImageRecord{
		ID:        "test-id",
		ImageData: []byte{0x89, 0x50, 0x4e, 0x47},
		MimeType:  "image/png",
		Size:      4,
		Caption:   "Test caption",
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to marshal ImageRecord: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if _, ok := result["ImageData"]; ok {
		t.Errorf("Expected image bytes to be excluded from JSON")
	}
	if result["caption"] != "Test caption" {
		t.Errorf("Expected caption 'Test caption', got %v", result["caption"])
	}
	if result["state"] != "pending" {
		t.Errorf("Expected state 'pending', got %v", result["state"])
	}
	if _, ok := result["published_at"]; ok {
		t.Errorf("Expected published_at to be omitted for pending records")
	}
}

func TestParseImageState(t *testing.T) {
	state, err := ParseImageState(" Published ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != StatePublished {
		t.Errorf("Expected published, got %s", state)
	}
	if _, err := ParseImageState("archived"); err == nil {
		t.Errorf("Expected error for unknown state")
	}
}

func TestParseOrientation(t *testing.T) {
	o, err := ParseOrientation("", OrientationPortrait)
	if err != nil || o != OrientationPortrait {
		t.Errorf("Expected fallback portrait, got %q (%v)", o, err)
	}
	o, err = ParseOrientation("LANDSCAPE", OrientationPortrait)
	if err != nil || o != OrientationLandscape {
		t.Errorf("Expected landscape, got %q (%v)", o, err)
	}
	if _, err := ParseOrientation("square", OrientationLandscape); err == nil {
		t.Errorf("Expected error for unknown orientation")
	}
}
