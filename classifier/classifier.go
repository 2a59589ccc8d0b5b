// Package classifier calls an external emotion-classification model and maps
// its six-class output onto the binary Hope/Hate labels.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"tubepulse/internal/retry"
)

// Binary sentiment labels derived from the model's emotion output.
const (
	Hope    = "Hope"
	Hate    = "Hate"
	Unknown = "Unknown"
)

// hopeEmotions is the fixed positive subset of the six-class emotion model
// (sadness, joy, love, anger, fear, surprise). Everything else maps to Hate.
var hopeEmotions = map[string]bool{
	"joy":      true,
	"love":     true,
	"surprise": true,
}

// ErrUnavailable indicates no classification endpoint is configured.
var ErrUnavailable = errors.New("classifier: service unavailable")

// Outcome is the per-comment classification result.
type Outcome struct {
	// Text is the classified comment.
	Text string `json:"text"`
	// HopeHate is Hope, Hate, or Unknown when classification failed.
	HopeHate string `json:"hope_hate"`
	// Emotion is the raw model label ("unknown" on failure).
	Emotion string `json:"emotion"`
	// Score is the model confidence for the winning label.
	Score float64 `json:"score"`
}

// UnknownOutcome is the degraded result for a comment whose classification
// failed. The batch continues; the caller just counts it as Unknown.
func UnknownOutcome(text string) Outcome {
	return Outcome{Text: text, HopeHate: Unknown, Emotion: "unknown", Score: 0}
}

// Classifier turns a piece of text into a Hope/Hate outcome.
type Classifier interface {
	Predict(ctx context.Context, text string) (Outcome, error)
}

// Client is an HTTP client for a hosted inference endpoint. Requests are
// rate-limited with a token bucket and transient failures are retried.
type Client struct {
	endpoint string
	token    string
	base     *http.Client
	limiter  *rate.Limiter
	policy   retry.Policy
	log      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.base = c }
}

// WithRateLimit overrides the default requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) { cl.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// New creates a classification client for the given endpoint. An empty
// endpoint returns ErrUnavailable so the caller can avoid starting a doomed
// analysis.
func New(endpoint, token string, log *slog.Logger, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrUnavailable
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Client{
		endpoint: endpoint,
		token:    token,
		base:     &http.Client{Timeout: 30 * time.Second},
		// Conservative default: hosted inference endpoints throttle hard.
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		policy:  retry.DefaultPolicy(),
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// inference request/response shapes (Hugging Face text-classification style).
type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// statusError marks an HTTP-level failure so the retry classifier can
// distinguish throttling from permanent rejections.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("classifier: endpoint returned %d: %s", e.Code, e.Body)
}

// Predict classifies text into an emotion and maps it to Hope or Hate.
// On any failure it returns the Unknown outcome together with the error;
// callers keep processing the rest of the batch.
func (c *Client) Predict(ctx context.Context, text string) (Outcome, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return UnknownOutcome(text), err
	}

	var top labelScore
	err := retry.Do(ctx, c.policy, transient, func(ctx context.Context) error {
		scores, err := c.infer(ctx, text)
		if err != nil {
			return err
		}
		if len(scores) == 0 {
			return fmt.Errorf("classifier: empty response")
		}
		top = scores[0]
		for _, s := range scores[1:] {
			if s.Score > top.Score {
				top = s
			}
		}
		return nil
	})
	if err != nil {
		c.log.Warn("classification failed", "error", err)
		return UnknownOutcome(text), err
	}

	label := Hate
	if hopeEmotions[top.Label] {
		label = Hope
	}
	return Outcome{Text: text, HopeHate: label, Emotion: top.Label, Score: top.Score}, nil
}

func (c *Client) infer(ctx context.Context, text string) ([]labelScore, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{Code: resp.StatusCode, Body: string(data)}
	}

	// The endpoint nests results one level per input; we always send one.
	var nested [][]labelScore
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 {
		return nested[0], nil
	}
	var flat []labelScore
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("classifier: decode response: %w", err)
	}
	return flat, nil
}

// transient reports whether an inference error is worth retrying.
func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		// 429 and 503 cover throttling and cold model starts.
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
