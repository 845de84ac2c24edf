package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"deadlock-tracker/internal/config"

	"github.com/valyala/fasthttp"
)

// AssetsClient talks to the assets catalog API. The image-field schema of
// these endpoints is undocumented and inconsistent across asset kinds, so
// rows are decoded as loose maps and interpreted downstream.
type AssetsClient struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

func NewAssetsClient(cfg *config.Config) *AssetsClient {
	return &AssetsClient{
		baseURL: strings.TrimRight(cfg.AssetsBaseURL, "/"),
		timeout: cfg.APITimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// RawAsset is one loosely typed row from the assets API.
type RawAsset map[string]interface{}

func (c *AssetsClient) GetHeroes(ctx context.Context) ([]RawAsset, error) {
	return c.list(ctx, "/v2/heroes")
}

func (c *AssetsClient) GetItems(ctx context.Context) ([]RawAsset, error) {
	return c.list(ctx, "/v2/items")
}

func (c *AssetsClient) GetRanks(ctx context.Context) ([]RawAsset, error) {
	return c.list(ctx, "/v2/ranks")
}

// BaseURL is the origin used to absolutize relative icon paths.
func (c *AssetsClient) BaseURL() string {
	return c.baseURL
}

func (c *AssetsClient) list(ctx context.Context, path string) ([]RawAsset, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("GET %s: API error: %d", path, resp.StatusCode())
	}

	var rows []RawAsset
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		return nil, fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return rows, nil
}
