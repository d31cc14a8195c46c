package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"astrolab/pkg/model"
)

// Client fetches image records from the NASA images API.
type Client struct {
	http *resty.Client
}

// NewClient creates a client from the sources configuration.
func NewClient(cfg Config) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{http: c}
}

// Search queries the upstream /search endpoint. Page numbers are 1-based, as
// the upstream expects. An empty query browses the whole image collection.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) ([]searchItem, error) {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("media_type", "image").
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("page_size", strconv.Itoa(pageSize))
	if query != "" {
		req.SetQueryParam("q", query)
	}

	resp, err := req.Get("/search")
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrCanceled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", model.ErrUpstream, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: upstream returned %s", model.ErrUpstream, resp.Status())
	}

	var payload searchResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrUpstream, err)
	}
	return payload.Collection.Items, nil
}
