package service

import (
	"context" // Request-scoped cancellation
	"fmt"     // Error wrapping
	"strings" // String manipulation
	"time"    // Token lifetimes

	"music_library/internal/domain" // Domain models
	"music_library/internal/utils"  // JWT helpers

	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// AuthService hashes credentials and issues tokens
type AuthService struct {
	users  *UserService
	secret string
	ttl    time.Duration
	cost   int
	dummy  []byte // Hash compared against when the email is unknown
}

// NewAuthService creates an AuthService signing tokens with secret for ttl
func NewAuthService(users *UserService, secret string, ttl time.Duration, cost int) *AuthService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("no-such-user"), cost)
	return &AuthService{users: users, secret: secret, ttl: ttl, cost: cost, dummy: dummy}
}

// RegisterInput describes a new account
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	AvatarURL *string
}

// TokenTTL is how long issued tokens stay valid
func (s *AuthService) TokenTTL() time.Duration {
	return s.ttl
}

// HashPassword salts and hashes a password
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword reports whether password matches hash
func (s *AuthService) ComparePassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken signs a token carrying the user's id, email and role
func (s *AuthService) GenerateToken(user *domain.User) (string, error) {
	return utils.GenerateJWT(user.ID, user.Email, user.Role, s.secret, s.ttl)
}

// Register creates a regular account; a taken email is a conflict
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %q: %w", in.Email, domain.ErrConflict)
	}
	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        in.Email,
		PasswordHash: hash,
		AvatarURL:    in.AvatarURL,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logrus.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Authenticate checks credentials and returns a token. An unknown email and a
// wrong password fail with the same ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		// Spend the same hashing time as a real check
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return "", nil, domain.ErrInvalidCredentials
	}
	if !s.ComparePassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if user.IsBlocked {
		return "", nil, domain.ErrBlocked
	}
	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}
	return token, user, nil
}
