package api

import (
	"context"
	"net/url"

	"edhumeni-admin/internal/domain"
)

// ContractFilter narrows List results. Zero values mean no filtering.
type ContractFilter struct {
	FarmerID string
	Status   string
	Season   string
}

func (c *Client) ListContracts(ctx context.Context, filter ContractFilter) ([]*domain.Contract, error) {
	q := url.Values{}
	if filter.FarmerID != "" {
		q.Set("farmerId", filter.FarmerID)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Season != "" {
		q.Set("season", filter.Season)
	}
	path := "/api/contracts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var contracts []*domain.Contract
	if err := c.get(ctx, path, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (c *Client) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	var contract domain.Contract
	if err := c.get(ctx, "/api/contracts/"+url.PathEscape(id), &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *Client) CreateContract(ctx context.Context, input domain.ContractInput) (*domain.Contract, error) {
	var contract domain.Contract
	if err := c.send(ctx, "POST", "/api/contracts", input, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *Client) UpdateContract(ctx context.Context, id string, input domain.ContractInput) (*domain.Contract, error) {
	var contract domain.Contract
	if err := c.send(ctx, "PUT", "/api/contracts/"+url.PathEscape(id), input, &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (c *Client) DeleteContract(ctx context.Context, id string) error {
	return c.send(ctx, "DELETE", "/api/contracts/"+url.PathEscape(id), nil, nil)
}
