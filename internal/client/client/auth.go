package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
)

func (c *Client) postJSON(ctx context.Context, method, path string, body any, token string, forceBearer bool, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.send(ctx, method, c.baseURL+path, nil, "application/json", bytes.NewReader(b), token, forceBearer, out)
}

// Me verifies token and returns the identity it belongs to.
func (c *Client) Me(ctx context.Context, token string) (models.Identity, error) {
	var env models.UserEnvelope
	if err := c.send(ctx, http.MethodGet, c.baseURL+"/auth/me", nil, "", nil, token, true, &env); err != nil {
		return models.Identity{}, err
	}
	return env.User, nil
}

// Login exchanges email and password for a credential and identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	body := models.Credentials{Email: email, Password: password}
	if err := c.postJSON(ctx, http.MethodPost, "/auth/login", body, "", false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its credential and identity.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.postJSON(ctx, http.MethodPost, "/auth/register", reg, "", false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile sends the changed fields with token attached, even when the
// token is empty, and returns the server's full updated identity.
func (c *Client) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (models.Identity, error) {
	var env models.UserEnvelope
	if err := c.postJSON(ctx, http.MethodPut, "/users/profile", upd, token, true, &env); err != nil {
		return models.Identity{}, err
	}
	return env.User, nil
}
