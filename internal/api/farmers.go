package api

import (
	"context"
	"net/url"

	"edhumeni-admin/internal/domain"
)

// FarmerFilter narrows List results. Zero values mean no filtering.
type FarmerFilter struct {
	Region    string
	OfficerID string
}

func (c *Client) ListFarmers(ctx context.Context, filter FarmerFilter) ([]*domain.Farmer, error) {
	q := url.Values{}
	if filter.Region != "" {
		q.Set("region", filter.Region)
	}
	if filter.OfficerID != "" {
		q.Set("officerId", filter.OfficerID)
	}
	path := "/api/farmers"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var farmers []*domain.Farmer
	if err := c.get(ctx, path, &farmers); err != nil {
		return nil, err
	}
	return farmers, nil
}

func (c *Client) GetFarmer(ctx context.Context, id string) (*domain.Farmer, error) {
	var farmer domain.Farmer
	if err := c.get(ctx, "/api/farmers/"+url.PathEscape(id), &farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (c *Client) CreateFarmer(ctx context.Context, input domain.FarmerInput) (*domain.Farmer, error) {
	var farmer domain.Farmer
	if err := c.send(ctx, "POST", "/api/farmers", input, &farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (c *Client) UpdateFarmer(ctx context.Context, id string, input domain.FarmerInput) (*domain.Farmer, error) {
	var farmer domain.Farmer
	if err := c.send(ctx, "PUT", "/api/farmers/"+url.PathEscape(id), input, &farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (c *Client) DeleteFarmer(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/farmers/"+url.PathEscape(id), nil, nil)
}
