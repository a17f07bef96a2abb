// Package authz is the client for the authorization service that owns
// team invitations.
package authz

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/teaminbox/internal/httpapi"
)

// ServiceName identifies the authorization service in errors and logs.
const ServiceName = "authorization"

// Service accepts or rejects an invitation addressed by its token.
type Service interface {
	AcceptInvitation(ctx context.Context, token string) error
	RejectInvitation(ctx context.Context, token string) error
}

// Client implements Service over HTTP.
type Client struct {
	api *httpapi.Client
}

// NewClient creates an authorization service client.
func NewClient(baseURL, token string, opts ...httpapi.Option) *Client {
	return &Client{
		api: httpapi.NewClient(ServiceName, baseURL, token, opts...),
	}
}

// AcceptInvitation accepts the invitation identified by token.
func (c *Client) AcceptInvitation(ctx context.Context, token string) error {
	if err := c.api.Post(ctx, invitationPath(token, "accept"), nil, nil); err != nil {
		return fmt.Errorf("accepting invitation: %w", err)
	}
	return nil
}

// RejectInvitation rejects the invitation identified by token.
func (c *Client) RejectInvitation(ctx context.Context, token string) error {
	if err := c.api.Post(ctx, invitationPath(token, "reject"), nil, nil); err != nil {
		return fmt.Errorf("rejecting invitation: %w", err)
	}
	return nil
}

func invitationPath(token, verb string) string {
	return fmt.Sprintf("/api/v1/invitations/%s/%s", url.PathEscape(token), verb)
}
