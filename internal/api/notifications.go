package api

import (
	"context"
	"net/http"
)

// UnreadCount fetches the authoritative unread-notification count for
// the current user. The poller calls this on a fixed interval; the
// result overwrites any optimistic deltas applied from push events.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.do(ctx, requestParams{
		Method: http.MethodGet,
		Path:   "/notifications/unread-count",
		Out:    &out,
	})
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}
