package api

import (
	"context"

	"edhumeni-admin/internal/domain"
)

// DashboardSummary fetches the aggregates behind the dashboard charts.
func (c *Client) DashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	var summary domain.DashboardSummary
	if err := c.get(ctx, "/api/dashboard/summary", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
