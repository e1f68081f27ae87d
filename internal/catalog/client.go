package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ecobuild/internal/pkg/apperrors"
)

const defaultTimeout = 10 * time.Second

// ImpactFactors is the indicator triple an external catalog entry declares
// per unit of material.
type ImpactFactors struct {
	GWP   float64 `json:"gwp"`
	UBP   float64 `json:"ubp"`
	PENRE float64 `json:"penre"`
}

// Entry is one search result from the external material database.
// Score is the service's similarity confidence in [0,1].
type Entry struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Score         float64       `json:"score"`
	DeclaredUnit  string        `json:"declaredUnit"`
	Density       *float64      `json:"density,omitempty"`
	ImpactFactors ImpactFactors `json:"impactFactors"`
}

// Searcher is what the match engine depends on.
type Searcher interface {
	Search(ctx context.Context, name string) ([]Entry, error)
}

// Client queries the external material-database search API over HTTP.
// Results are kept in a bounded, time-expiring cache so repeated
// ingestions of the same project don't hammer the remote service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *gocache.Cache
}

func NewClient(baseURL, apiKey string, timeout, cacheTTL time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
	}
}

type searchResponse struct {
	Results []Entry `json:"results"`
}

// Search returns the catalog entries for a material name. The remote
// service is treated as possibly slow and possibly down: any transport or
// non-200 failure comes back as an external-service error, never as an
// empty result.
func (c *Client) Search(ctx context.Context, name string) ([]Entry, error) {
	const op = "catalog.Search"

	if cached, ok := c.cache.Get(name); ok {
		return cached.([]Entry), nil
	}

	u := fmt.Sprintf("%s/materials/search?name=%s", c.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, apperrors.ExternalService(op, "catalog", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.ExternalService(op, "catalog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.ExternalService(op, "catalog",
			fmt.Errorf("received non-200 response: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ExternalService(op, "catalog", err)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, apperrors.ExternalService(op, "catalog",
			fmt.Errorf("error unmarshaling search response: %w", err))
	}

	c.cache.SetDefault(name, sr.Results)
	return sr.Results, nil
}
