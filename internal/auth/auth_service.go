// Package auth issues and checks portal identities: bcrypt passwords, JWT
// access tokens, role permissions and login throttling.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserInactive       = errors.New("Account is inactive. Please contact support.")
)

// LockedError is returned while the login limiter blocks a caller.
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("Too many failed login attempts. Try again in %d seconds.", int(e.RetryAfter.Seconds())+1)
}

type AuthService struct {
	users      repository.UserRepository
	jwtManager *JWTManager
	limiter    *LoginRateLimiter
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, jwtManager *JWTManager, limiter *LoginRateLimiter, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		limiter:    limiter,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AuthService) JWT() *JWTManager { return s.jwtManager }

// Login checks the credentials and returns the profile plus an access token.
// ip feeds the login limiter and may be empty.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*models.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if s.limiter != nil {
		if blocked, wait := s.limiter.IsBlocked(ip, email); blocked {
			return nil, &LockedError{RetryAfter: wait}
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.fail(ip, email)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		s.fail(ip, email)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if s.limiter != nil {
		s.limiter.RecordSuccess(ip, email)
	}

	if user.Name == "" {
		user.Name = "Unknown User"
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.Email, now); err != nil {
		s.logger.Warn("failed to record last login", zap.String("email", user.Email), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	token, expires, err := s.jwtManager.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.logger.Info("user logged in", zap.String("email", user.Email), zap.String("role", string(user.Role)))

	return &models.LoginResponse{
		Profile:     user.Profile(),
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expires,
	}, nil
}

// Me reloads the caller's profile so deactivated accounts are noticed.
func (s *AuthService) Me(ctx context.Context, claims *Claims) (*models.Profile, error) {
	user, err := s.users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	p := user.Profile()
	return &p, nil
}

func (s *AuthService) fail(ip, email string) {
	if s.limiter != nil {
		s.limiter.RecordFailure(ip, email)
	}
	s.logger.Info("failed login", zap.String("email", email), zap.String("ip", ip))
}

// HashPassword returns a bcrypt hash at the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
