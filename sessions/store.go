// Package sessions owns authentication state. Session is the shared handle
// to the token and profile; Store exposes the lifecycle intents (login,
// registration, password reset and change, revalidation, logout) that
// mutate it.
package sessions

import (
	"context"
	"net/http"

	"github.com/jrsteele09/bell-client/httpclient"
	apperrors "github.com/jrsteele09/bell-client/internal/errors"
	"github.com/jrsteele09/bell-client/internal/intent"
	"github.com/jrsteele09/bell-client/internal/validate"
	"github.com/jrsteele09/bell-client/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	intentLogin          = intent.Intent{Name: "login", Fallback: "Login failed"}
	intentRegister       = intent.Intent{Name: "register", Fallback: "Registration failed"}
	intentForgotPassword = intent.Intent{Name: "forgotPassword", Fallback: "Failed to send reset email"}
	intentResetPassword  = intent.Intent{Name: "resetPassword", Fallback: "Failed to reset password"}
	intentChangePassword = intent.Intent{Name: "changePassword", Fallback: "Failed to change password"}
)

// Store runs the session lifecycle intents against the API.
type Store struct {
	intent.Flags
	session  *Session
	api      httpclient.Requester
	validate *validate.Validator
	logger   zerolog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store that mutates session.
func NewStore(session *Session, api httpclient.Requester, opts ...StoreOption) *Store {
	s := &Store{
		session:  session,
		api:      api,
		validate: validate.New(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns the handle this store mutates.
func (s *Store) Session() *Session {
	return s.session
}

// Login authenticates and stores the returned token and profile.
func (s *Store) Login(ctx context.Context, credentials model.LoginRequest) (model.SessionData, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentLogin,
		func(ctx context.Context) (model.SessionData, error) {
			var data model.SessionData
			err := s.post(ctx, intentLogin.Name, "/auth/login", credentials, &data)
			return data, err
		},
		func(data model.SessionData) {
			s.session.Set(data.Token, &data.User)
			s.logger.Info().Str("username", data.User.Username).Msg("Logged in")
		},
	)
}

// Register creates an account. It does not sign the new account in.
func (s *Store) Register(ctx context.Context, req model.RegisterRequest) (model.RegisterResponse, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentRegister,
		func(ctx context.Context) (model.RegisterResponse, error) {
			var resp model.RegisterResponse
			err := s.post(ctx, intentRegister.Name, "/auth/register", req, &resp)
			return resp, err
		}, nil)
}

// ForgotPassword asks the server to mail a reset link.
func (s *Store) ForgotPassword(ctx context.Context, email string) (model.MessageResponse, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentForgotPassword,
		func(ctx context.Context) (model.MessageResponse, error) {
			var resp model.MessageResponse
			err := s.post(ctx, intentForgotPassword.Name, "/auth/forgot-password", model.ForgotPasswordRequest{Email: email}, &resp)
			return resp, err
		}, nil)
}

// ResetPassword sets a new password using a mailed reset token.
func (s *Store) ResetPassword(ctx context.Context, token, newPassword string) (model.MessageResponse, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentResetPassword,
		func(ctx context.Context) (model.MessageResponse, error) {
			var resp model.MessageResponse
			err := s.post(ctx, intentResetPassword.Name, "/auth/reset-password", model.ResetPasswordRequest{Token: token, Password: newPassword}, &resp)
			return resp, err
		}, nil)
}

// ChangePassword changes the signed-in user's password and refreshes the
// stored profile, which clears a pending forced change.
func (s *Store) ChangePassword(ctx context.Context, currentPassword, newPassword string) (model.UserProfile, error) {
	return intent.Run(ctx, &s.Flags, s.logger, intentChangePassword,
		func(ctx context.Context) (model.UserProfile, error) {
			var resp model.ChangePasswordResponse
			req := model.ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
			if err := s.post(ctx, intentChangePassword.Name, "/auth/change-password", req, &resp); err != nil {
				return model.UserProfile{}, err
			}
			if resp.User != nil {
				return *resp.User, nil
			}
			// The server answered with a message only: the change it just
			// accepted is what lifts the forced change flag.
			user := s.session.User()
			if user == nil {
				return model.UserProfile{}, nil
			}
			user.ForcePasswordChange = false
			return *user, nil
		},
		func(user model.UserProfile) {
			if user.ID != 0 || user.Username != "" {
				s.session.SetUser(&user)
			}
		},
	)
}

// Logout ends the session locally. It needs no network call.
func (s *Store) Logout() {
	s.session.Clear()
	s.logger.Info().Msg("Logged out")
}

// CheckAuth revalidates the held token against /auth/me. Without a token it
// returns false at once; a failed revalidation ends the session.
func (s *Store) CheckAuth(ctx context.Context) bool {
	if !s.session.IsAuthenticated() {
		return false
	}
	var user model.UserProfile
	if err := s.api.Send(ctx, httpclient.Request{Method: http.MethodGet, Path: "/auth/me"}, &user); err != nil {
		s.logger.Info().Err(err).Msg("Session revalidation failed")
		s.session.Clear()
		return false
	}
	s.session.SetUser(&user)
	return true
}

// post validates body, sends it and wraps any failure as an AuthError.
func (s *Store) post(ctx context.Context, op, path string, body, out any) error {
	if err := s.validate.Struct(body); err != nil {
		return &apperrors.AuthError{Op: op, Err: err}
	}
	if err := s.api.Send(ctx, httpclient.Request{Method: http.MethodPost, Path: path, Body: body}, out); err != nil {
		return &apperrors.AuthError{Op: op, Err: err}
	}
	return nil
}
