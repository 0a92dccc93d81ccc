package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListLogs returns one page of backend log entries matching the query.
func (c *Client) ListLogs(ctx context.Context, query LogQuery) (*LogPage, error) {
	q := url.Values{}
	if query.Level != "" {
		q.Set("level", query.Level)
	}
	if query.Search != "" {
		q.Set("search", query.Search)
	}
	if query.Limit > 0 {
		q.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		q.Set("offset", strconv.Itoa(query.Offset))
	}

	var out LogPage
	if err := c.do(ctx, http.MethodGet, "/api/logs", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
