package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pkg/database"
)

const userColumns = `id, name, role, username, password, company_id, created_at, updated_at`

// UserRepository handles user data operations in PostgreSQL
type UserRepository struct {
	db *database.PostgresDB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.PostgresDB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Role,
		&u.Username,
		&u.PasswordHash,
		&u.CompanyID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOne returns the user matching criteria, or nil when there is none
func (r *UserRepository) FindOne(ctx context.Context, criteria domain.Criteria) (*domain.User, error) {
	where, args := whereClause(criteria, "name")
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY id LIMIT 1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Create inserts a user and fills its generated fields
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (name, role, username, password, company_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.Name,
		user.Role,
		user.Username,
		user.PasswordHash,
		user.CompanyID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return writeError("create user", err)
	}
	return nil
}

// Update saves the user
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, username = $4, password = $5, company_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Role,
		user.Username,
		user.PasswordHash,
		user.CompanyID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return writeError("update user", err)
	}
	return nil
}

// Destroy deletes the user
func (r *UserRepository) Destroy(ctx context.Context, user *domain.User) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// FindAndCountAll returns the total number of matching users and one page of them
func (r *UserRepository) FindAndCountAll(ctx context.Context, filter domain.Filter, limit, offset int) (int, []domain.User, error) {
	where := ""
	var args []any
	if filter.Query != "" {
		args = append(args, likePattern(filter.Query))
		where = ` WHERE CAST(id AS TEXT) ILIKE $1 OR name ILIKE $1`
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY id LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0, pageCapacity(total, limit, offset))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return total, users, nil
}
