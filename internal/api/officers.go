package api

import (
	"context"
	"net/url"

	"edhumeni-admin/internal/domain"
)

func (c *Client) ListOfficers(ctx context.Context, region string) ([]*domain.Officer, error) {
	path := "/api/officers"
	if region != "" {
		path += "?region=" + url.QueryEscape(region)
	}

	var officers []*domain.Officer
	if err := c.get(ctx, path, &officers); err != nil {
		return nil, err
	}
	return officers, nil
}

func (c *Client) GetOfficer(ctx context.Context, id string) (*domain.Officer, error) {
	var officer domain.Officer
	if err := c.get(ctx, "/api/officers/"+url.PathEscape(id), &officer); err != nil {
		return nil, err
	}
	return &officer, nil
}

func (c *Client) CreateOfficer(ctx context.Context, input domain.OfficerInput) (*domain.Officer, error) {
	var officer domain.Officer
	if err := c.send(ctx, "POST", "/api/officers", input, &officer); err != nil {
		return nil, err
	}
	return &officer, nil
}

func (c *Client) UpdateOfficer(ctx context.Context, id string, input domain.OfficerInput) (*domain.Officer, error) {
	var officer domain.Officer
	if err := c.send(ctx, "PUT", "/api/officers/"+url.PathEscape(id), input, &officer); err != nil {
		return nil, err
	}
	return &officer, nil
}

func (c *Client) DeleteOfficer(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/officers/"+url.PathEscape(id), nil, nil)
}
