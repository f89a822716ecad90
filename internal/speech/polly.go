package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-resty/resty/v2"
)

const placeholderAccessKey = "your-aws-access-key-id-here"

// Request is one narration call.
type Request struct {
	Text         string
	VoiceID      string
	Engine       string
	LanguageCode string
	SampleRate   int
}

// Provider turns text into raw 16-bit little-endian mono PCM at Request.SampleRate.
type Provider interface {
	Configured() bool
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// PollyConfig holds the Amazon Polly connection settings.
type PollyConfig struct {
	AccessKeyID string
	SecretKey   string
	Region      string
	// Endpoint overrides https://polly.<region>.amazonaws.com.
	Endpoint string
	Timeout  time.Duration
}

// PollyClient calls the Polly REST API with SigV4 signed requests.
type PollyClient struct {
	client     *resty.Client
	configured bool
}

type pollyRequest struct {
	Text         string `json:"Text"`
	VoiceId      string `json:"VoiceId"`
	OutputFormat string `json:"OutputFormat"`
	SampleRate   string `json:"SampleRate"`
	TextType     string `json:"TextType"`
	Engine       string `json:"Engine,omitempty"`
	LanguageCode string `json:"LanguageCode,omitempty"`
}

type pollyError struct {
	Message string `json:"message"`
}

func NewPollyClient(cfg PollyConfig) *PollyClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://polly.%s.amazonaws.com", cfg.Region)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	signer := &sigV4Transport{
		base:    http.DefaultTransport,
		signer:  v4.NewSigner(),
		creds:   credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		region:  cfg.Region,
		service: "polly",
		now:     time.Now,
	}

	return &PollyClient{
		client: resty.New().
			SetBaseURL(endpoint).
			SetTimeout(timeout).
			SetTransport(signer),
		configured: cfg.AccessKeyID != "" && cfg.SecretKey != "" && cfg.AccessKeyID != placeholderAccessKey,
	}
}

func (p *PollyClient) Configured() bool {
	return p.configured
}

// Synthesize requests PCM output for req.
func (p *PollyClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	body := pollyRequest{
		Text:         req.Text,
		VoiceId:      req.VoiceID,
		OutputFormat: "pcm",
		SampleRate:   strconv.Itoa(req.SampleRate),
		TextType:     "text",
		Engine:       req.Engine,
		LanguageCode: req.LanguageCode,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-amz-json-1.0").
		SetBody(body).
		Post("/v1/speech")
	if err != nil {
		return nil, fmt.Errorf("polly request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var perr pollyError
		if json.Unmarshal(resp.Body(), &perr) == nil && perr.Message != "" {
			return nil, fmt.Errorf("polly returned %d: %s", resp.StatusCode(), perr.Message)
		}
		return nil, fmt.Errorf("polly returned %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, fmt.Errorf("polly returned empty audio")
	}
	return resp.Body(), nil
}

// sigV4Transport signs every outgoing request with AWS Signature Version 4.
type sigV4Transport struct {
	base    http.RoundTripper
	signer  *v4.Signer
	creds   aws.CredentialsProvider
	region  string
	service string
	now     func() time.Time
}

func (t *sigV4Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
	}
	sum := sha256.Sum256(payload)

	signed := req.Clone(req.Context())
	signed.Body = io.NopCloser(bytes.NewReader(payload))
	signed.ContentLength = int64(len(payload))

	creds, err := t.creds.Retrieve(req.Context())
	if err != nil {
		return nil, fmt.Errorf("retrieving credentials: %w", err)
	}
	if err := t.signer.SignHTTP(req.Context(), creds, signed, hex.EncodeToString(sum[:]), t.service, t.region, t.now().UTC()); err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}
	return t.base.RoundTrip(signed)
}
