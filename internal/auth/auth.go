// Package auth issues and verifies the bearer tokens the HTTP layer relies
// on. Tokens are signed JWTs; logout revokes the token's unique id until its
// natural expiry, so a revoked token cannot be replayed.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rxtech-lab/trade-journal/internal/logger"
	"github.com/rxtech-lab/trade-journal/internal/repository"
	"github.com/rxtech-lab/trade-journal/internal/types"
	"github.com/rxtech-lab/trade-journal/pkg/errors"
)

// DefaultTokenTTL bounds a session when the config does not say otherwise.
const DefaultTokenTTL = 24 * time.Hour

const minPasswordLength = 8

// Service registers users, checks credentials and manages token lifecycle.
type Service struct {
	users  repository.UserRepository
	logger *logger.Logger
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewService creates an auth service signing tokens with secret. A zero ttl
// falls back to DefaultTokenTTL.
func NewService(users repository.UserRepository, log *logger.Logger, secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &Service{
		users:   users,
		logger:  log,
		secret:  secret,
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (types.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	violations := errors.NewValidationError()
	if name == "" {
		violations.Add("name", errors.ErrCodeMissingField, "name is required")
	}

	if email == "" || !strings.Contains(email, "@") {
		violations.Add("email", errors.ErrCodeInvalidParameter, "email is not a valid address")
	}

	if len(password) < minPasswordLength {
		violations.Add("password", errors.ErrCodeInvalidParameter, "password must be at least 8 characters")
	}

	if !violations.Empty() {
		return types.User{}, violations
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, errors.Wrap(errors.ErrCodeStorageFailed, "failed to hash password", err)
	}

	user := types.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return types.User{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))

	return user, nil
}

// Login checks the credentials and returns the user with a fresh signed
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeUserNotFound) {
			return types.User{}, "", errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
		}

		return types.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, "", errors.New(errors.ErrCodeInvalidCredentials, "invalid email or password")
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return types.User{}, "", err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))

	return user, token, nil
}

// Authenticate verifies the token and returns the session it represents.
func (s *Service) Authenticate(ctx context.Context, token string) (types.Session, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return types.Session{}, err
	}

	if s.isRevoked(claims.ID) {
		return types.Session{}, errors.New(errors.ErrCodeTokenRevoked, "token has been revoked")
	}

	if _, err := s.users.GetUser(ctx, claims.Subject); err != nil {
		if errors.HasCode(err, errors.ErrCodeUserNotFound) {
			return types.Session{}, errors.New(errors.ErrCodeInvalidToken, "token subject no longer exists")
		}

		return types.Session{}, err
	}

	return types.Session{UserID: claims.Subject, Token: token}, nil
}

// Logout revokes the token. Revoking an already-revoked token is a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return err
	}

	expiry := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.revoked[claims.ID] = expiry
	s.pruneLocked()
	s.mu.Unlock()

	s.logger.Info("user logged out", zap.String("user_id", claims.Subject))

	return nil
}

func (s *Service) signToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidToken, "failed to sign token", err)
	}

	return token, nil
}

func (s *Service) parseToken(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf(errors.ErrCodeInvalidToken, "unexpected signing method %q", t.Method.Alg())
		}

		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidToken, "failed to parse token", err)
	}

	if !parsed.Valid {
		return nil, errors.New(errors.ErrCodeInvalidToken, "token is not valid")
	}

	return claims, nil
}

func (s *Service) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.revoked[jti]
	if !ok {
		return false
	}

	// An expired revocation entry is dead weight; the token itself would be
	// rejected as expired anyway.
	if time.Now().After(expiry) {
		delete(s.revoked, jti)

		return false
	}

	return true
}

func (s *Service) pruneLocked() {
	now := time.Now()
	for jti, expiry := range s.revoked {
		if now.After(expiry) {
			delete(s.revoked, jti)
		}
	}
}
