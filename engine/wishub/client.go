package wishub

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wishub-ai/wishub-mcp/engine/mcp"
	"github.com/wishub-ai/wishub-mcp/pkg/config"
	"github.com/wishub-ai/wishub-mcp/pkg/logger"
)

// Client talks to the WisHub knowledge core. All fetches return the raw
// JSON document as a map so context payloads flow through untouched.
type Client struct {
	client  *resty.Client
	baseURL string
}

// NewClient builds a WisHub client from the application configuration.
func NewClient(cfg *config.Config) *Client {
	wh := &cfg.WisHub
	baseURL := strings.TrimRight(wh.BaseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(wh.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(wh.RetryCount).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)
	if cfg.Runtime.LogLevel == "debug" {
		client.SetDebug(true)
	}
	return &Client{client: client, baseURL: baseURL}
}

// retryCondition retries network errors, server errors, and throttling.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

// BaseURL returns the configured WisHub endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetKnowledgeContext fetches the context document for contextID, routed by
// contextType.
func (c *Client) GetKnowledgeContext(
	ctx context.Context,
	contextID string,
	contextType mcp.ContextType,
) (map[string]any, error) {
	switch contextType {
	case mcp.ContextTypeWisUnit:
		return c.GetWisUnit(ctx, contextID, true)
	case mcp.ContextTypeKnowledgeGraph:
		return c.GetKnowledgeGraphNode(ctx, contextID)
	case mcp.ContextTypeWisdomCore:
		return c.GetWisdomCore(ctx, contextID)
	default:
		return nil, fmt.Errorf("unsupported context type: %s", contextType)
	}
}

// GetWisUnit fetches one wisunit, optionally including its content body.
func (c *Client) GetWisUnit(ctx context.Context, wisunitID string, includeContent bool) (map[string]any, error) {
	var result map[string]any
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("include_content", strconv.FormatBool(includeContent)).
		SetResult(&result).
		Get("/api/v1/wisunit/" + url.PathEscape(wisunitID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wisunit %s: %w", wisunitID, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch wisunit %s: %w", wisunitID, err)
	}
	logger.FromContext(ctx).Debug("fetched wisunit", "wisunit_id", wisunitID)
	return result, nil
}

// SearchWisUnits runs a paginated full-text search over wisunits.
func (c *Client) SearchWisUnits(ctx context.Context, query string, limit, offset int) (map[string]any, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var result map[string]any
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      query,
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		}).
		SetResult(&result).
		Get("/api/v1/wisunit/search")
	if err != nil {
		return nil, fmt.Errorf("failed to search wisunits: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("failed to search wisunits: %w", err)
	}
	return result, nil
}

// GetKnowledgeGraphNode fetches one knowledge graph node.
func (c *Client) GetKnowledgeGraphNode(ctx context.Context, nodeID string) (map[string]any, error) {
	var result map[string]any
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/v1/knowledge_graph/node/" + url.PathEscape(nodeID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch knowledge graph node %s: %w", nodeID, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch knowledge graph node %s: %w", nodeID, err)
	}
	return result, nil
}

// GetWisdomCore fetches one wisdom core document.
func (c *Client) GetWisdomCore(ctx context.Context, coreID string) (map[string]any, error) {
	var result map[string]any
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/v1/wisdom_core/" + url.PathEscape(coreID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wisdom core %s: %w", coreID, err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, fmt.Errorf("failed to fetch wisdom core %s: %w", coreID, err)
	}
	return result, nil
}

// HealthCheck probes the WisHub /health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("wishub-core health check failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("wishub-core health check returned status %d", resp.StatusCode())
	}
	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.client.GetClient().CloseIdleConnections()
}

// checkResponse converts non-2xx responses into errors.
func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	return fmt.Errorf("wishub-core returned status %d: %s", resp.StatusCode(), resp.String())
}
