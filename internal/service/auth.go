// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) ↘ PasswordService (bcrypt)
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/config"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxBioLength      = 500
)

// AuthService handles registration, login, token refresh, and profile
// management.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	policy    config.PasswordPolicy
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	policy config.PasswordPolicy,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		policy:    policy,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued token pair so the
// handler can respond in one step. The embedded pair flattens to
// top-level accessToken/refreshToken fields on the wire.
type AuthResult struct {
	User *model.User `json:"user"`
	auth.TokenPair
}

// Register creates a new account and issues tokens.
//
// Username/email uniqueness is NOT pre-checked with a SELECT: the
// repository surfaces the unique-constraint violation as ErrConflict, so
// two concurrent registrations of the same email cannot both succeed.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}
	if err := auth.CheckPasswordPolicy(s.policy, password); err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issueFor(user)
}

// Login verifies credentials and issues tokens. Unknown email and wrong
// password return the identical error so callers can't probe which emails
// are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if user.IsSuspended {
		return nil, apperror.Forbidden("account is suspended")
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issueFor(user)
}

// Refresh exchanges a valid refresh token for a fresh pair. The token
// service rejects access tokens presented here (typ claim mismatch).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperror.Unauthorized("invalid refresh token")
	}
	if user.IsSuspended {
		return nil, apperror.Forbidden("account is suspended")
	}

	return s.issueFor(user)
}

// ChangePassword verifies the old password and applies the policy to the
// new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.passwords.Verify(user.PasswordHash, oldPassword); err != nil {
		return apperror.Unauthorized("current password is incorrect")
	}
	if err := auth.CheckPasswordPolicy(s.policy, newPassword); err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return apperror.ValidationFailed("newPassword", err.Error())
	}

	user.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("service/auth: updating password for user %s: %w", userID, err)
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

// GetProfile returns the user record for the given internal ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// ProfileUpdate carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type ProfileUpdate struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Bio        *string `json:"bio"`
	AvatarURL  *string `json:"avatarUrl"`
	AvatarIcon *string `json:"avatarIcon"`
}

// UpdateProfile applies a partial profile update. Username/email
// uniqueness is enforced by the store (ErrConflict on duplicate).
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
			return nil, apperror.ValidationFailed("username",
				fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
		}
		user.Username = username
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, apperror.ValidationFailed("email", "email address is not valid")
		}
		user.Email = email
	}
	if update.Bio != nil {
		if len(*update.Bio) > MaxBioLength {
			return nil, apperror.ValidationFailed("bio",
				fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
		}
		user.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if update.AvatarIcon != nil {
		user.AvatarIcon = *update.AvatarIcon
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginOrRegisterGitHub completes the OAuth callback: upsert the account
// keyed on github_id, then issue the same token pair as password login.
// First login derives a username from the GitHub login; collisions get a
// numeric suffix.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:   ghUser.ID,
		Username:   ghUser.Login,
		Email:      strings.ToLower(ghUser.Email),
		AvatarURL:  ghUser.AvatarURL,
		IsVerified: true, // GitHub has already verified the email
	}

	err := s.users.UpsertGitHub(ctx, user)
	for i := 2; err != nil && isConflict(err) && i < 10; i++ {
		user.Username = fmt.Sprintf("%s%d", ghUser.Login, i)
		err = s.users.UpsertGitHub(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting GitHub user %d: %w", ghUser.ID, err)
	}
	if user.IsSuspended {
		return nil, apperror.Forbidden("account is suspended")
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.issueFor(user)
}

func isConflict(err error) bool {
	return errors.Is(err, apperror.ErrConflict)
}

func (s *AuthService) issueFor(user *model.User) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing tokens for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, TokenPair: pair}, nil
}
