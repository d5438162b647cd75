package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"nexdoc/console/api"
	"nexdoc/console/models"
	"nexdoc/console/session"
)

// AuthService drives the login, register, and logout flows and owns the
// session writes they imply. Login and logout are the only writers of the
// session token.
type AuthService struct {
	api      *api.Client
	session  *session.Store
	validate *validator.Validate
}

// NewAuthService creates the auth dispatcher.
func NewAuthService(client *api.Client, sess *session.Store) *AuthService {
	return &AuthService{
		api:      client,
		session:  sess,
		validate: validator.New(),
	}
}

// LoginInput is validated before any request leaves the client.
type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// RegisterInput mirrors POST /auth/register.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token, fetches the user profile,
// and persists both session keys. The token endpoint is form-encoded with
// the email passed as "username".
func (s *AuthService) Login(ctx context.Context, in LoginInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid login input: %w", err)
	}

	form := url.Values{}
	form.Set("username", in.Email)
	form.Set("password", in.Password)

	var tok tokenResponse
	if err := s.api.PostForm(ctx, "/auth/login", form, &tok); err != nil {
		return err
	}
	if err := s.session.SetToken(tok.AccessToken); err != nil {
		return err
	}

	var user models.User
	if err := s.api.GetJSON(ctx, "/auth/users/me", &user); err != nil {
		// A token without a resolvable profile is useless; roll back.
		if clearErr := s.session.Clear(); clearErr != nil {
			log.Errorf("Failed to clear session after profile fetch error: %v", clearErr)
		}
		return fmt.Errorf("error fetching user profile: %w", err)
	}

	name := user.FullName
	if name == "" {
		name = user.Email
	}
	if err := s.session.SetProfile(&session.Profile{
		Email:   user.Email,
		Name:    name,
		Company: "NexDoc",
	}); err != nil {
		return err
	}

	log.Infof("Logged in as %s", user.Email)
	return nil
}

// Register creates an account. It does not log the user in; the caller
// sends them to the login screen on success.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("invalid registration input: %w", err)
	}
	return s.api.PostJSON(ctx, "/auth/register", in, nil)
}

// Logout clears both persisted session keys. In-flight requests finishing
// with 401 afterwards are absorbed by the session's idempotent
// unauthorized handling.
func (s *AuthService) Logout() error {
	return s.session.Clear()
}
