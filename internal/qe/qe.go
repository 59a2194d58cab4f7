// Package qe scores (source, translated) string pairs against an external
// quality-estimation service. Scoring is advisory: a failure here must never
// abort localization.
package qe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/uuid"
	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/region"
)

// DefaultThreshold flags translations scoring below it for review.
const DefaultThreshold = 0.7

// Config parameterizes the QE client.
type Config struct {
	Endpoint    string
	BearerToken string
	Threshold   float64
	Timeout     time.Duration
	MaxRetries  uint64
}

// DefaultConfig returns a disabled client configuration.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, Timeout: 30 * time.Second, MaxRetries: 2}
}

// Enabled reports whether scoring is configured.
func (c Config) Enabled() bool { return c.Endpoint != "" && c.BearerToken != "" }

// Result is the score for one string pair.
type Result struct {
	ID         string
	Source     string
	Translated string
	// Score is in [0,1]; negative means the service returned no score.
	Score   float64
	Flagged bool
}

// Client talks to the QE service.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a QE client for the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type requestItem struct {
	ID           string `json:"Id"`
	SourceString string `json:"SourceString"`
	TargetString string `json:"TargetString"`
	Comments     string `json:"Comments"`
}

type scoreRequest struct {
	Items            []requestItem `json:"Items"`
	TimeoutInSeconds int           `json:"TimeoutInSeconds"`
}

type responseItem struct {
	ID      string   `json:"Id"`
	QEScore *float64 `json:"LLMQEScore"`
}

type scoreResponse struct {
	Items []responseItem `json:"Items"`
}

// Score sends all pairs in one request and returns one Result per pair.
// The service scores 0-100; results are normalized to [0,1].
func (c *Client) Score(ctx context.Context, src, tgt []region.TextRegion, target language.Tag) ([]Result, error) {
	if !c.cfg.Enabled() {
		return nil, fmt.Errorf("qe scoring is not configured")
	}
	if len(src) != len(tgt) {
		return nil, fmt.Errorf("qe: %d source strings but %d translated", len(src), len(tgt))
	}
	if len(src) == 0 {
		return nil, nil
	}

	// The service rejects non-GUID item ids.
	ids := make([]string, len(src))
	items := make([]requestItem, len(src))
	for i := range src {
		ids[i] = uuid.Must(uuid.NewV4()).String()
		items[i] = requestItem{
			ID:           ids[i],
			SourceString: src[i].Text,
			TargetString: tgt[i].Text,
		}
	}
	body, err := json.Marshal(scoreRequest{
		Items:            items,
		TimeoutInSeconds: int(c.cfg.Timeout.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	base, _ := target.Base()
	url := fmt.Sprintf("%s/api/%s/calculate-llm-qe/sync",
		strings.TrimRight(c.cfg.Endpoint, "/"), base.String())

	var parsed scoreResponse
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(&parsed)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(fmt.Errorf("qe service rejected credentials: %s", resp.Status))
		case resp.StatusCode >= 500:
			return fmt.Errorf("qe service error: %s", resp.Status)
		default:
			return backoff.Permanent(fmt.Errorf("qe service returned %s", resp.Status))
		}
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.QEScore != nil {
			scores[it.ID] = *it.QEScore / 100.0
		}
	}

	results := make([]Result, len(src))
	for i := range src {
		score, ok := scores[ids[i]]
		if !ok {
			score = -1
		}
		results[i] = Result{
			ID:         ids[i],
			Source:     src[i].Text,
			Translated: tgt[i].Text,
			Score:      score,
			Flagged:    ok && score < c.cfg.Threshold,
		}
	}
	return results, nil
}

// Flagged returns the subset of results below the threshold.
func Flagged(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Flagged {
			out = append(out, r)
		}
	}
	return out
}
