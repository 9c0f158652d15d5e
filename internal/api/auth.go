package api

import (
	"context"
	"net/http"

	"github.com/ghaggin/cems/internal/model"
)

type credentials struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}

	err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errEmptyToken
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, username, password string, role model.Role) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, credentials{
		Username: username,
		Password: password,
		Role:     role,
	}, nil)
}
