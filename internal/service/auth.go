package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/code-translator/internal/apperror"
	"github.com/sakif/code-translator/internal/auth"
	"github.com/sakif/code-translator/internal/model"
	"github.com/sakif/code-translator/internal/repository"
)

// Local account rules.
const (
	MinPasswordLength = 8
	MaxLoginLength    = 39
)

var loginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// AuthService signs users in through GitHub or a local password and issues
// session tokens.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the account with its freshly issued token.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub upserts the GitHub account and issues a token.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, errors.New("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Login:     ghUser.Login,
		Email:     ghUser.Email,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	return s.issue(user)
}

// Register creates a local account and signs it in.
func (s *AuthService) Register(ctx context.Context, login, password, email string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	switch {
	case login == "":
		return nil, apperror.ValidationFailed("login", "login is required")
	case len(login) > MaxLoginLength:
		return nil, apperror.ValidationFailed("login",
			fmt.Sprintf("login must be %d characters or less", MaxLoginLength))
	case !loginPattern.MatchString(login):
		return nil, apperror.ValidationFailed("login",
			"login may only contain letters, digits, '-' and '_'")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Login:        login,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}
	if err := s.users.CreateLocal(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("local account registered",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
	)

	return s.issue(user)
}

// Login verifies a local password. Unknown logins and wrong passwords give
// the same error.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	invalid := apperror.Unauthorized("Invalid login or password")

	user, err := s.users.GetLocalUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: looking up %q: %w", login, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Info("failed login attempt", slog.String("login", user.Login))
			return nil, invalid
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	return s.issue(user)
}

// GetUserByID returns the account for a validated session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.Unauthorized("Authentication required")
	}
	return s.users.GetUserByID(ctx, id)
}

// SessionTTL is the lifetime of issued tokens, for cookie expiry.
func (s *AuthService) SessionTTL() int {
	return int(s.tokens.TTL().Seconds())
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
