package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"warden/contexts/trust-safety/content-analysis-service/domain/entities"
	domainerrors "warden/contexts/trust-safety/content-analysis-service/domain/errors"
	"warden/contexts/trust-safety/content-analysis-service/ports"
)

// ClassifierClient talks to the external moderation classifier over HTTP.
// Any transport or decode failure surfaces as a dependency error so callers
// can map it uniformly.
type ClassifierClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewClassifierClient(baseURL string, apiKey string) *ClassifierClient {
	return &ClassifierClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type classifyRequest struct {
	Input string `json:"input"`
}

type classifyResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

func (c *ClassifierClient) Classify(ctx context.Context, content string) (entities.ClassificationResult, error) {
	body, err := json.Marshal(classifyRequest{Input: content})
	if err != nil {
		return entities.ClassificationResult{}, fmt.Errorf("%w: encode classification request: %v", domainerrors.ErrDependencyUnavailable, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/moderations", bytes.NewReader(body))
	if err != nil {
		return entities.ClassificationResult{}, fmt.Errorf("%w: build classification request: %v", domainerrors.ErrDependencyUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return entities.ClassificationResult{}, fmt.Errorf("%w: classification request failed: %v", domainerrors.ErrDependencyUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.ClassificationResult{}, fmt.Errorf("%w: classifier returned status %d", domainerrors.ErrDependencyUnavailable, resp.StatusCode)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return entities.ClassificationResult{}, fmt.Errorf("%w: decode classification response: %v", domainerrors.ErrDependencyUnavailable, err)
	}
	if len(decoded.Results) == 0 {
		return entities.ClassificationResult{
			Categories:     map[string]bool{},
			CategoryScores: map[string]float64{},
		}, nil
	}
	first := decoded.Results[0]
	result := entities.ClassificationResult{
		Flagged:        first.Flagged,
		Categories:     first.Categories,
		CategoryScores: first.CategoryScores,
	}
	if result.Categories == nil {
		result.Categories = map[string]bool{}
	}
	if result.CategoryScores == nil {
		result.CategoryScores = map[string]float64{}
	}
	return result, nil
}

func (c *ClassifierClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

var _ ports.ClassifierClient = (*ClassifierClient)(nil)
