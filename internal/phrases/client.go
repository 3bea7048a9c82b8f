// Package phrases is the read-only client for the external phrase corpus.
package phrases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/decyphr-net/practice-engine/internal/logger"
	"github.com/decyphr-net/practice-engine/pkg/models"
)

// ErrSourceUnavailable is returned once the bounded retries are exhausted.
// Callers surface it as a service-unavailable condition instead of serving
// stale or empty data.
var ErrSourceUnavailable = errors.New("phrase source unavailable")

// ErrPhraseNotFound is returned when a specific phrase id is requested and
// the corpus doesn't have it
var ErrPhraseNotFound = errors.New("phrase not found")

const maxRetries = 2

// Client fetches phrases over HTTP with bounded retries
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *logger.Logger
}

// NewClient creates a phrase-source client
func NewClient(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		log:     log.With("service", "PhraseClient"),
	}
}

// Phrases fetches the learner's phrase set. Entries missing text or
// translation are filtered out. Failures retry twice with increasing delay
// before surfacing ErrSourceUnavailable.
func (c *Client) Phrases(ctx context.Context, clientID string) ([]models.Phrase, error) {
	endpoint := fmt.Sprintf("%s/phrases?clientId=%s", c.baseURL, url.QueryEscape(clientID))

	var fetched []models.Phrase
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("phrase source returned status %d", resp.StatusCode)
		}
		fetched = nil
		if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
			return fmt.Errorf("failed to decode phrase response: %w", err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.log.Error("phrase source unreachable", "clientId", clientID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	phrases := make([]models.Phrase, 0, len(fetched))
	for _, p := range fetched {
		if p.Text == "" || p.Translation == "" {
			continue
		}
		phrases = append(phrases, p)
	}
	return phrases, nil
}

// PhraseByID fetches the learner's phrases and picks one by id
func (c *Client) PhraseByID(ctx context.Context, clientID string, phraseID int64) (*models.Phrase, error) {
	phrases, err := c.Phrases(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range phrases {
		if phrases[i].ID == phraseID {
			return &phrases[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrPhraseNotFound, phraseID)
}
