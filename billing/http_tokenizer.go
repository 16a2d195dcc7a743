package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTokenizer tokenizes cards against a provider's REST endpoint. It talks
// to the provider directly with its own HTTP client; provider calls never go
// through the AICE transport or carry AICE credentials.
type HTTPTokenizer struct {
	URL    string
	Client *http.Client
}

var _ Tokenizer = (*HTTPTokenizer)(nil)

// NewHTTPTokenizer creates a tokenizer posting to the given endpoint.
func NewHTTPTokenizer(url string) *HTTPTokenizer {
	return &HTTPTokenizer{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type httpTokenizeRequest struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	CVC      string `json:"cvc"`
}

type httpTokenizeResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func (t *HTTPTokenizer) Tokenize(ctx context.Context, card CardDetails) (string, error) {
	payload, err := json.Marshal(httpTokenizeRequest{
		Number:   card.Number,
		ExpMonth: card.ExpMonth,
		ExpYear:  card.ExpYear,
		CVC:      card.CVC,
	})
	if err != nil {
		return "", fmt.Errorf("encoding tokenize request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building tokenize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tokenize request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading tokenize response: %w", err)
	}
	var out httpTokenizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding tokenize response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		reason := out.Error
		if reason == "" {
			reason = fmt.Sprintf("provider returned %d", resp.StatusCode)
		}
		return "", &TokenizeError{Reason: reason}
	}
	if out.ID == "" {
		return "", fmt.Errorf("tokenize: malformed response")
	}
	return out.ID, nil
}
