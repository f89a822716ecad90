package audio

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Loader fetches the background track from a local path or an http(s) URL.
type Loader struct {
	client *resty.Client
}

func NewLoader(timeout time.Duration) *Loader {
	return &Loader{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second),
	}
}

// Load decodes the WAV found at src. An empty src returns nil without error.
func (l *Loader) Load(ctx context.Context, src string) (*Buffer, error) {
	if src == "" {
		return nil, nil
	}

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		resp, err := l.client.R().SetContext(ctx).Get(src)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch background from %s: %w", src, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), src)
		}
		return ReadWAV(bytes.NewReader(resp.Body()))
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening background: %w", err)
	}
	defer f.Close()
	return ReadWAV(f)
}
