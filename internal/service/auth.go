package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "holidaze/internal/errors"
	"holidaze/internal/logger"
	"holidaze/internal/models"
	"holidaze/internal/session"
	"holidaze/internal/validation"
)

const (
	DefaultAvatarURL = "https://cdn.pixabay.com/photo/2017/11/10/05/48/user-2935527_960_720.png"
	DefaultAvatarAlt = "Default user avatar, credit: raphaelsilva at pixabay.com"
	UserAvatarAlt    = "User avatar"

	msgNameTaken = "Username or email is already in use"
)

type AuthService struct {
	api       API
	validator *validation.Validator
}

func NewAuthService(deps Deps) *AuthService {
	return &AuthService{api: deps.API, validator: deps.Validator}
}

// Login exchanges email and password for a token and stores it in sess
func (s *AuthService) Login(ctx context.Context, sess *session.Session, req *models.LoginRequest) (*models.LoginResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := s.api.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return nil, err
	}

	creds := models.Credentials{AccessToken: result.AccessToken, ProfileName: result.Name}
	if err := sess.Login(ctx, creds); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	logger.WithContext(ctx).Info("User logged in", "profile", result.Name)
	return result, nil
}

// Register creates a profile. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, form *models.RegisterForm) (*models.Profile, error) {
	req := &models.RegisterRequest{
		Name:         strings.TrimSpace(form.Name),
		Email:        strings.TrimSpace(form.Email),
		Password:     form.Password,
		VenueManager: form.VenueManager,
		Avatar:       &models.Media{URL: DefaultAvatarURL, Alt: DefaultAvatarAlt},
	}
	if url := strings.TrimSpace(form.Avatar); url != "" {
		req.Avatar = &models.Media{URL: url, Alt: UserAvatarAlt}
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, registrationError(err)
	}

	logger.WithContext(ctx).Info("Profile registered", "profile", profile.Name)
	return profile, nil
}

// registrationError hides which of name or email collided
func registrationError(err error) error {
	var rej *apperrors.APIRejection
	if !errors.As(err, &rej) {
		return err
	}
	lower := strings.ToLower(rej.Message)
	if strings.Contains(lower, "email") || strings.Contains(lower, "name") || rej.Message == "Profile already exists" {
		return &apperrors.APIRejection{Status: rej.Status, Message: msgNameTaken}
	}
	return err
}

// Logout clears the stored credential; observers are told afterwards
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if err := sess.Logout(ctx); err != nil {
		return err
	}
	logger.WithContext(ctx).Info("User logged out")
	return nil
}
