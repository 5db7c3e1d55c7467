package api

import (
	"context"
	"fmt"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

type userPayload struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		UserID:   p.UserID,
		Email:    p.Email,
		FullName: p.FullName,
		Avatar:   p.Avatar,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.User, error) {
	var resp struct {
		User userPayload `json:"user"`
	}

	err := c.postJSON(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return domain.User{}, err
	}

	return resp.User.toDomain(), nil
}

// Signup creates the account. It does not issue a session; callers log in
// explicitly afterwards.
func (c *Client) Signup(ctx context.Context, email, password, fullName string) error {
	return c.postJSON(ctx, "/auth/signup", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	}, nil)
}

// ExchangeIdentity trades a third-party identity token for a backend session.
func (c *Client) ExchangeIdentity(ctx context.Context, token domain.IdentityToken) (domain.User, error) {
	var resp struct {
		User userPayload `json:"user"`
	}

	err := c.postJSON(ctx, "/auth/google", map[string]string{
		"token":    token.Token,
		"email":    token.Email,
		"fullName": token.FullName,
		"avatar":   token.Avatar,
	}, &resp)
	if err != nil {
		return domain.User{}, err
	}

	return resp.User.toDomain(), nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var resp userPayload
	if err := c.getJSON(ctx, "/auth/me", &resp); err != nil {
		return domain.User{}, err
	}

	return resp.toDomain(), nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/auth/logout", map[string]string{}, nil)
}

func (c *Client) UpdateAvatar(ctx context.Context, avatar string) (string, error) {
	var resp struct {
		Avatar string `json:"avatar"`
	}

	err := c.postJSON(ctx, "/auth/update-avatar", map[string]string{
		"avatar": avatar,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Avatar == "" {
		return "", fmt.Errorf("avatar response missing avatar field")
	}

	return resp.Avatar, nil
}
