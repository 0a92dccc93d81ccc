package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListDeals returns all deals, optionally filtered by issuer code.
func (c *Client) ListDeals(ctx context.Context, issuerCode string) ([]Deal, error) {
	q := url.Values{}
	if issuerCode != "" {
		q.Set("issr_cde", issuerCode)
	}
	var out []Deal
	if err := c.do(ctx, http.MethodGet, "/api/deals", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTranches returns the tranches of one deal.
func (c *Client) ListTranches(ctx context.Context, dlNbr int) ([]Tranche, error) {
	var out []Tranche
	path := fmt.Sprintf("/api/deals/%d/tranches", dlNbr)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCalculations returns the calculations available for a scope (DEAL or TRANCHE).
func (c *Client) ListCalculations(ctx context.Context, scope string) ([]Calculation, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", scope)
	}
	var out []Calculation
	if err := c.do(ctx, http.MethodGet, "/api/calculations", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIssuerCodes returns the distinct issuer codes for deal filtering.
func (c *Client) ListIssuerCodes(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/deals/issuer-codes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCycleCodes returns the available reporting cycles, newest first.
func (c *Client) ListCycleCodes(ctx context.Context) ([]int, error) {
	var out []int
	if err := c.do(ctx, http.MethodGet, "/api/cycles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
