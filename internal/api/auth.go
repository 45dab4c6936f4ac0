package api

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"
)

type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access   string `json:"access"`
	Refresh  string `json:"refresh"`
	Username string `json:"username"`
	UserType string `json:"user_type"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"user_type,omitempty"`
}

// Login exchanges credentials for a session. Wrong credentials come back as an
// *Error of kind ErrInvalidCredentials.
func (ac *AuthClient) Login(ctx context.Context, username, password string) (domain.Session, error) {
	var resp loginResponse
	req := request{
		method:    http.MethodPost,
		path:      "users/login/",
		body:      loginRequest{Username: username, Password: password},
		anonymous: true,
	}
	if err := ac.c.doJSON(ctx, "login", req, &resp); err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status != 0 {
			switch apiErr.Status {
			case http.StatusBadRequest, http.StatusUnauthorized:
				apiErr.Kind = ErrInvalidCredentials
				if apiErr.Message == "" || apiErr.Fields != nil {
					apiErr.Message = "Invalid username or password."
				}
			default:
				if apiErr.Message == "" {
					apiErr.Message = "Login failed. Try again."
				}
			}
		}
		return domain.Session{}, err
	}
	if resp.Access == "" {
		return domain.Session{}, &ParseError{Op: "login", Reason: "no access token"}
	}
	if resp.Username == "" {
		resp.Username = username
	}
	return domain.Session{
		Access:   resp.Access,
		Refresh:  resp.Refresh,
		Username: resp.Username,
		Role:     domain.ParseRole(resp.UserType),
	}, nil
}

func (ac *AuthClient) Register(ctx context.Context, in RegisterInput) error {
	_, err := ac.c.do(ctx, request{method: http.MethodPost, path: "users/register/", body: in, anonymous: true})
	return err
}
