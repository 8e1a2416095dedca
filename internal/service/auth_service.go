package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boutique/internal/domain"
	"boutique/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Claims represents the JWT claims issued at login.
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService defines the interface for account and credential logic.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// MigrateLegacyPasswords rehashes every plaintext credential in place
	// and returns how many records were rewritten. Running it again after
	// all records carry the digest tag performs no writes.
	MigrateLegacyPasswords(ctx context.Context) (int, error)
}

type authService struct {
	userRepo     repository.UserRepository
	jwtSecret    string
	accessExpiry time.Duration
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, accessExpiry time.Duration) AuthService {
	if accessExpiry <= 0 {
		accessExpiry = 15 * time.Minute
	}
	return &authService{
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// Register creates a new customer account with a hashed credential.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	digest, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:      name,
		Email:     email,
		Password:  digest,
		Role:      domain.RoleCustomer,
		CreatedAt: time.Now().UTC(),
	}

	// The unique index on email is the source of truth for duplicates;
	// no pre-check, so concurrent signups cannot race past it.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, repository.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a signed access token. Whether
// the email or the password was wrong is never distinguished.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !VerifyPassword(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return token, user, nil
}

// MigrateLegacyPasswords scans for credentials lacking the digest tag and
// overwrites each with a fresh hash of the stored plaintext. Each record
// is a single atomic UPDATE, so a login landing mid-migration sees either
// the old plaintext (legacy fallback) or the new digest, never a torn
// value.
func (s *authService) MigrateLegacyPasswords(ctx context.Context) (int, error) {
	legacy, err := s.userRepo.ListLegacy(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list legacy credentials: %w", err)
	}

	migrated := 0
	for _, user := range legacy {
		digest, err := HashPassword(user.Password)
		if err != nil {
			return migrated, fmt.Errorf("failed to hash legacy credential: %w", err)
		}

		if err := s.userRepo.UpdatePassword(ctx, user.ID, digest); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				// Record deleted since the scan; nothing to migrate.
				continue
			}
			return migrated, fmt.Errorf("failed to migrate credential: %w", err)
		}
		migrated++
	}

	return migrated, nil
}

// generateAccessToken signs a JWT carrying the user's id, email, and role.
func (s *authService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
