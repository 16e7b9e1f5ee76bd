package notifyapi

import (
	"context"
	"fmt"

	"github.com/nhle/storefront/internal/model"
)

// Notification API routes, relative to the client base URL.
const (
	pathList        = "/notifications/notifications/"
	pathUnread      = "/notifications/notifications/unread/"
	pathMarkRead    = "/notifications/notifications/%d/mark_as_read/"
	pathMarkAllRead = "/notifications/notifications/mark_all_as_read/"
)

// ListAll returns the viewer's full notification history, newest first.
func (c *Client) ListAll(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	if err := c.Get(ctx, pathList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnread returns the viewer's unread notifications, newest first.
func (c *Client) ListUnread(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	if err := c.Get(ctx, pathUnread, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks one notification read and returns the updated record.
func (c *Client) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	var out model.Notification
	if err := c.Post(ctx, fmt.Sprintf(pathMarkRead, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkAllRead marks every notification of the viewer read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.Post(ctx, pathMarkAllRead, nil, nil)
}
