// Package feed is the client for the notification service.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/nhle/teaminbox/internal/httpapi"
	"github.com/nhle/teaminbox/internal/model"
)

// ServiceName identifies the notification service in errors and logs.
const ServiceName = "notifications"

const notificationsPath = "/api/v1/notifications"

// Service is the contract the poller and the action coordinator need from
// the notification service.
type Service interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Client implements Service over HTTP.
type Client struct {
	api *httpapi.Client
}

// NewClient creates a notification service client.
func NewClient(baseURL, token string, opts ...httpapi.Option) *Client {
	return &Client{
		api: httpapi.NewClient(ServiceName, baseURL, token, opts...),
	}
}

// listResponse accepts both the enveloped and the bare-array forms.
type listResponse struct {
	Notifications []model.Notification
}

func (r *listResponse) UnmarshalJSON(data []byte) error {
	var bare []model.Notification
	if err := json.Unmarshal(data, &bare); err == nil {
		r.Notifications = bare
		return nil
	}

	var env struct {
		Notifications []model.Notification `json:"notifications"`
		Data          []model.Notification `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	r.Notifications = env.Notifications
	if r.Notifications == nil {
		r.Notifications = env.Data
	}
	return nil
}

// List fetches the viewer's notifications.
func (c *Client) List(ctx context.Context) ([]model.Notification, error) {
	var resp listResponse
	if err := c.api.Get(ctx, notificationsPath, &resp); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return resp.Notifications, nil
}

// MarkRead marks a single notification as read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	path := fmt.Sprintf("%s/%s/read", notificationsPath, url.PathEscape(id))
	if err := c.api.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return nil
}
