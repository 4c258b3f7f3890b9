package gateway

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
	"github.com/SAP-F-2025/thesis-review-portal/internal/session"
)

// GetStats fetches the aggregate counters. It returns nil on failure.
func (c *Client) GetStats(ctx context.Context, sess *session.Session, n Notifier) *models.Stats {
	const op = "get_stats"

	var stats models.Stats
	if err := c.do(ctx, op, request{method: http.MethodGet, path: "/stats", sess: sess}, &stats); err != nil {
		c.fail(ctx, n, op, err, "Failed to load statistics", "Failed to load statistics, please check your network connection")
		return nil
	}
	return &stats
}
