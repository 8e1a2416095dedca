package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boutique/internal/database"
	"boutique/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListLegacy returns users whose stored credential lacks the digest
	// tag, i.e. pre-migration plaintext records.
	ListLegacy(ctx context.Context) ([]*domain.User, error)
	// UpdatePassword overwrites one credential in a single atomic write,
	// so a concurrent login sees either the old or the new value.
	UpdatePassword(ctx context.Context, id int64, digest string) error
}

type userRepository struct {
	store database.Store
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(store database.Store) UserRepository {
	return &userRepository{store: store}
}

// Create inserts a new user and assigns the generated id.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, email, password, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	id, err := r.store.Insert(
		ctx,
		query,
		user.Name,
		user.Email,
		user.Password,
		user.Role,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return nil
}

// FindByEmail retrieves a user by email using parameterized queries
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, password, role, created_at
		FROM users
		WHERE email = ?
	`

	user := &domain.User{}
	err := r.store.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// ListLegacy retrieves all users still holding a plaintext credential.
func (r *userRepository) ListLegacy(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, password, role, created_at
		FROM users
		WHERE password NOT LIKE ?
	`

	rows, err := r.store.Query(ctx, query, domain.DigestPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user := &domain.User{}
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Password,
			&user.Role,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdatePassword overwrites the stored credential for one user.
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, digest string) error {
	query := `UPDATE users SET password = ? WHERE id = ?`

	result, err := r.store.Exec(ctx, query, digest, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
