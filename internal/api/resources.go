package api

import (
	"context"
	"fmt"
	"net/http"
)

// Users

func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, u User) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, u User) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/users/%d", id), nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil, nil, nil)
}

// Employees

func (c *Client) ListEmployees(ctx context.Context) ([]Employee, error) {
	var out []Employee
	if err := c.do(ctx, http.MethodGet, "/api/employees", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEmployee(ctx context.Context, e Employee) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, http.MethodPost, "/api/employees", nil, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id int, e Employee) (*Employee, error) {
	var out Employee
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/employees/%d", id), nil, e, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/employees/%d", id), nil, nil, nil)
}

// Subscribers

func (c *Client) ListSubscribers(ctx context.Context) ([]Subscriber, error) {
	var out []Subscriber
	if err := c.do(ctx, http.MethodGet, "/api/subscribers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSubscriber(ctx context.Context, s Subscriber) (*Subscriber, error) {
	var out Subscriber
	if err := c.do(ctx, http.MethodPost, "/api/subscribers", nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSubscriber(ctx context.Context, id int, s Subscriber) (*Subscriber, error) {
	var out Subscriber
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/subscribers/%d", id), nil, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSubscriber(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/subscribers/%d", id), nil, nil, nil)
}
