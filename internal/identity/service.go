// Package identity handles accounts: signup, login, password hashing,
// JWT issuance and verification, and the request middleware that gates
// authenticated routes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"astrolab/internal/storage"
	"astrolab/pkg/model"
)

// Credential failures share one sentinel so responses never reveal whether
// the email or the password was wrong.
var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

// timestampFormat matches the document store's stored timestamp format.
const timestampFormat = "2006-01-02T15:04:05.000000Z"

type contextKey string

const (
	userIDKey    contextKey = "identity.user_id"
	userEmailKey contextKey = "identity.user_email"
)

// Service implements account management and authentication.
type Service struct {
	cfg    Config
	users  *UserStore
	tokens *TokenService
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates the identity service and its backing user store.
func NewService(ctx context.Context, cfg Config, store storage.Store, logger *slog.Logger) (*Service, error) {
	users, err := NewUserStore(ctx, store)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:    cfg,
		users:  users,
		tokens: NewTokenService(cfg),
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(timestampFormat)
}

// SignUp registers a new account and returns the user with a fresh token.
func (s *Service) SignUp(ctx context.Context, email, password, firstName, lastName string) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, "", fmt.Errorf("%w: a valid email is required", model.ErrInvalidArgument)
	}
	if len(password) < s.cfg.MinPasswordLength {
		return User{}, "", fmt.Errorf("%w: password must be at least %d characters",
			model.ErrInvalidArgument, s.cfg.MinPasswordLength)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return User{}, "", ErrEmailTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return User{}, "", err
	}

	hash, algo, err := HashPassword(password)
	if err != nil {
		return User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, email, hash, algo, firstName, lastName, s.timestamp())
	if err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return User{}, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// SignIn verifies credentials and returns the user with a fresh token. All
// failure modes map to ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}

	algo := user.passwordAlgo
	if algo == "" {
		algo = AlgoBcrypt
	}
	ok, err := VerifyPassword(password, user.passwordHash, algo)
	if err != nil || !ok {
		return User{}, "", ErrInvalidCredentials
	}

	user, err = s.users.Update(ctx, user.ID, model.Document{"last_login": s.timestamp()})
	if err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return User{}, "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// ValidateToken verifies a token and re-fetches the account behind it, so a
// token for a deleted user no longer validates.
func (s *Service) ValidateToken(ctx context.Context, token string) (User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return User{}, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return User{}, ErrInvalidToken
		}
		return User{}, err
	}
	return user, nil
}

// GetUser returns the account for the given id.
func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile merges profile fields into the account. Identity fields and
// the password are not updatable through this path.
func (s *Service) UpdateProfile(ctx context.Context, userID string, fields model.Document) (User, error) {
	updates := fields.Clone()
	delete(updates, "id")
	delete(updates, "email")
	delete(updates, "password")
	delete(updates, "password_algo")
	delete(updates, "created_at")
	updates["updated_at"] = s.timestamp()

	return s.users.Update(ctx, userID, updates)
}

// Middleware rejects requests without a valid Bearer token and stashes the
// authenticated user's id and email in the request context.
func (s *Service) Middleware(onUnauthorized func(w http.ResponseWriter, message string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				onUnauthorized(w, "missing or malformed authorization header")
				return
			}

			user, err := s.ValidateToken(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					onUnauthorized(w, ErrInvalidToken.Error())
					return
				}
				s.logger.Error("token validation failed", "error", err)
				onUnauthorized(w, ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, user.ID)
			ctx = context.WithValue(ctx, userEmailKey, user.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// UserIDFromContext returns the authenticated user's id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// UserEmailFromContext returns the authenticated user's email, if any.
func UserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok && email != ""
}
