package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListReports returns the report configurations owned by a user.
func (c *Client) ListReports(ctx context.Context, username string) ([]ReportConfig, error) {
	q := url.Values{}
	if username != "" {
		q.Set("created_by", username)
	}
	var out []ReportConfig
	if err := c.do(ctx, http.MethodGet, "/api/reports", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport fetches a single report configuration by id.
func (c *Client) GetReport(ctx context.Context, id int) (*ReportConfig, error) {
	var out ReportConfig
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/reports/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReport saves a new report configuration.
func (c *Client) CreateReport(ctx context.Context, req ReportRequest) (*ReportConfig, error) {
	var out ReportConfig
	if err := c.do(ctx, http.MethodPost, "/api/reports", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReport patches an existing report configuration.
func (c *Client) UpdateReport(ctx context.Context, id int, req ReportRequest) (*ReportConfig, error) {
	var out ReportConfig
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/reports/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReport removes a report configuration.
func (c *Client) DeleteReport(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/reports/%d", id), nil, nil, nil)
}

// PreviewSQL asks the server for the SQL it would run for a report and cycle.
// The result is display-only; nothing is executed.
func (c *Client) PreviewSQL(ctx context.Context, reportID, cycleCode int) (*SQLPreview, error) {
	body := map[string]int{"cycle_code": cycleCode}
	var out SQLPreview
	path := fmt.Sprintf("/api/reports/%d/preview-sql", reportID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunCalculation executes one calculation or raw SQL fragment server-side.
func (c *Client) RunCalculation(ctx context.Context, req RunRequest) (*RunResult, error) {
	var out RunResult
	if err := c.do(ctx, http.MethodPost, "/api/calculations/run", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportReport downloads a report run as xlsx or csv bytes.
func (c *Client) ExportReport(ctx context.Context, reportID, cycleCode int, format string) ([]byte, error) {
	q := url.Values{}
	q.Set("cycle_code", strconv.Itoa(cycleCode))
	q.Set("format", format)
	return c.download(ctx, fmt.Sprintf("/api/reports/%d/export", reportID), q)
}
