package repository

import (
	"context"
	"net/url"

	"github.com/noah-isme/coaching-portal/internal/models"
)

// AuthRepository covers credential exchange and account endpoints.
type AuthRepository struct {
	client *BackendClient
}

// NewAuthRepository constructs an auth repository.
func NewAuthRepository(client *BackendClient) *AuthRepository {
	return &AuthRepository{client: client}
}

// Token exchanges credentials for a bearer token.
func (r *AuthRepository) Token(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp models.TokenResponse
	if err := r.client.PostForm(ctx, "auth.token", "", tokenPath, form, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Me resolves the identity behind a token.
func (r *AuthRepository) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.client.Get(ctx, "auth.me", token, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new account.
func (r *AuthRepository) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	var user models.User
	if err := r.client.PostJSON(ctx, "users.create", "", "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns accounts, optionally filtered by role.
func (r *AuthRepository) ListUsers(ctx context.Context, token string, role models.UserRole) ([]models.User, error) {
	var query url.Values
	if role != "" {
		query = url.Values{"role": []string{string(role)}}
	}
	var users []models.User
	if err := r.client.Get(ctx, "users.list", token, "/users", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}
