package stash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"stashbatch/internal/config"
	"stashbatch/internal/logging"
)

// ErrGraphQL marks application-level errors returned by the catalog.
var ErrGraphQL = errors.New("graphql error")

// Entity is a remote catalog record identified by an opaque ID and a
// display name.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client issues GraphQL requests against the media catalog.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient builds a catalog client from application config. Requests carry
// an explicit per-request timeout and retry transient failures (429 and 5xx)
// with exponential backoff.
func NewClient(cfg *config.Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Catalog.RequestTimeout) * time.Second
	backoff := time.Duration(cfg.Catalog.RetryBackoff) * time.Second

	httpClient := resty.New().
		SetBaseURL(cfg.Catalog.URL).
		SetTimeout(timeout).
		SetRetryCount(cfg.Catalog.MaxRetries).
		SetRetryWaitTime(backoff).
		SetRetryMaxWaitTime(backoff * 8).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("User-Agent", "stashbatch/0.1")

	if cfg.Catalog.APIKey != "" {
		httpClient.SetHeader("ApiKey", cfg.Catalog.APIKey)
	}

	return &Client{
		http:   httpClient,
		logger: logging.WithComponent(logger, "catalog"),
	}
}

// NewClientWithBaseURL builds a client against an explicit endpoint with no
// retries (used in tests).
func NewClientWithBaseURL(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second),
		logger: logging.WithComponent(logger, "catalog"),
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// execute posts a query to the /graphql endpoint and decodes the data
// payload into out.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	var parsed graphQLResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&parsed).
		Post("/graphql")
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("catalog returned %d", resp.StatusCode())
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrGraphQL, parsed.Errors[0].Message)
	}
	if out == nil {
		return nil
	}
	if len(parsed.Data) == 0 {
		return fmt.Errorf("%w: empty data payload", ErrGraphQL)
	}
	if err := json.Unmarshal(parsed.Data, out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

const systemStatusQuery = `query SystemStatus { systemStatus { databaseSchema } }`

// TestConnection verifies the catalog endpoint answers a trivial query.
func (c *Client) TestConnection(ctx context.Context) error {
	var out struct {
		SystemStatus struct {
			DatabaseSchema int `json:"databaseSchema"`
		} `json:"systemStatus"`
	}
	if err := c.execute(ctx, systemStatusQuery, nil, &out); err != nil {
		return fmt.Errorf("catalog connection test: %w", err)
	}
	return nil
}

// nameFilter builds the equality filter used by the find queries. Aliases
// are included so an alternate display name resolves to the same entity.
func nameFilter(name string, withAliases bool) map[string]any {
	filter := map[string]any{
		"name": map[string]any{"value": name, "modifier": "EQUALS"},
	}
	if withAliases {
		filter["OR"] = map[string]any{
			"aliases": map[string]any{"value": name, "modifier": "EQUALS"},
		}
	}
	return filter
}

// allPages requests every result in one page.
func allPages() map[string]any {
	return map[string]any{"per_page": -1}
}
