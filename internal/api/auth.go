package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/types"
)

// LoginResult is the backend login response with the user already normalized.
type LoginResult struct {
	Token string
	User  types.User
}

// RegisterParams is the account-creation payload. Role is optional; the
// backend defaults it to customer.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Login exchanges credentials for a bearer token and the normalized user.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var response struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	err := c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/auth/login",
		op:     "login",
		body: map[string]string{
			"email":    email,
			"password": password,
		},
	}, &response)
	if err != nil {
		return LoginResult{}, err
	}
	if strings.TrimSpace(response.Token) == "" || len(response.User) == 0 {
		return LoginResult{}, pkgerrors.New(pkgerrors.CodeDependency, "login response missing token or user")
	}
	return LoginResult{
		Token: response.Token,
		User:  normalizeUser(response.User),
	}, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, params RegisterParams) error {
	return c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/auth/register",
		op:     "register",
		body:   params,
	}, nil)
}

// VerifyPassword re-checks the caller's password, used as the second phase of
// destructive-action confirmation.
func (c *Client) VerifyPassword(ctx context.Context, token, password string) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return c.do(ctx, requestSpec{
		method: http.MethodPost,
		path:   "/api/auth/verify-password",
		op:     "verify_password",
		token:  token,
		body:   map[string]string{"password": password},
	}, nil)
}
