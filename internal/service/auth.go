package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emilythestrangee/stackit/backend/internal/auth"
	"github.com/emilythestrangee/stackit/backend/internal/logging"
	"github.com/emilythestrangee/stackit/backend/internal/models"
	"github.com/emilythestrangee/stackit/backend/internal/store"
)

// AuthService is the credential store: registration, login and bearer token
// resolution. Tokens stay valid until they expire; nothing revokes them.
type AuthService struct {
	store  *store.Store
	hasher auth.PasswordHasher
	tokens *auth.TokenIssuer
	log    *slog.Logger
}

type Session struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a verified user with the default role.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrBadRequest)
	}

	_, err := s.store.Users().First(ctx, "email = ?", email)
	if err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
		Role:         models.RoleUser,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, storeErr(err, "user")
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "request_id", logging.RequestID(ctx))
	return user, nil
}

// Authenticate checks the password and issues a bearer token whose subject is
// the user's email.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.Users().First(ctx, "email = ?", normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
	}

	token, exp, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "issued token", "user_id", user.ID, "expires_at", exp, "request_id", logging.RequestID(ctx))
	return &Session{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

// Resolve maps a bearer token back to its user.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: could not validate credentials", ErrUnauthorized)
	}
	user, err := s.store.Users().First(ctx, "email = ?", claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: could not validate credentials", ErrUnauthorized)
		}
		return nil, err
	}
	return user, nil
}

// Promote grants the admin role. Registration never does, so this is how the
// first administrator is created.
func (s *AuthService) Promote(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users().First(ctx, "email = ?", normalizeEmail(email))
	if err != nil {
		return nil, storeErr(err, "user")
	}
	if user.Role == models.RoleAdmin {
		return user, nil
	}
	if err := s.store.Users().SetColumns(ctx, user.ID, map[string]any{"role": models.RoleAdmin}); err != nil {
		return nil, storeErr(err, "user")
	}
	user.Role = models.RoleAdmin
	s.log.InfoContext(ctx, "user promoted to admin", "user_id", user.ID)
	return user, nil
}
