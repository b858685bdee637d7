package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corpdir/api/internal/config"
	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pkg/database"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// getTestDB returns a database connection for integration tests.
// Returns nil if the database is not available (skips tests).
func getTestDB(t *testing.T) *database.PostgresDB {
	// Check if we're running integration tests
	if os.Getenv("POSTGRES_TEST_HOST") == "" {
		t.Skip("Skipping integration test: POSTGRES_TEST_HOST not set")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:     os.Getenv("POSTGRES_TEST_HOST"),
		Port:     5432,
		User:     os.Getenv("POSTGRES_TEST_USER"),
		Password: os.Getenv("POSTGRES_TEST_PASS"),
		Database: os.Getenv("POSTGRES_TEST_DB"),
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	if cfg.Database == "" {
		cfg.Database = "test_corpdir"
	}
	if cfg.User == "" {
		cfg.User = "postgres"
	}

	db, err := database.NewPostgres(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to PostgreSQL: %v", err)
		return nil
	}

	if _, err := db.Pool.Exec(context.Background(), Schema); err != nil {
		db.Close()
		t.Skipf("Skipping integration test: failed to create schema: %v", err)
		return nil
	}

	return db
}

// cleanupUsers removes test users from the database
func cleanupUsers(t *testing.T, db *database.PostgresDB, usernames ...string) {
	ctx := context.Background()
	for _, username := range usernames {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM users WHERE username = $1", username)
	}
}

// cleanupCompanies removes test companies from the database
func cleanupCompanies(t *testing.T, db *database.PostgresDB, names ...string) {
	ctx := context.Background()
	for _, name := range names {
		_, _ = db.Pool.Exec(ctx, "DELETE FROM companies WHERE name = $1", name)
	}
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name     string
		criteria domain.Criteria
		where    string
		args     []any
	}{
		{name: "empty", criteria: domain.Criteria{}, where: "", args: nil},
		{name: "id", criteria: domain.ByID(4), where: " WHERE id = $1", args: []any{4}},
		{
			name:     "id and username",
			criteria: domain.Criteria{ID: 4, Username: "bob"},
			where:    " WHERE id = $1 AND username = $2",
			args:     []any{4, "bob"},
		},
		{name: "name", criteria: domain.Criteria{Name: "Acme"}, where: " WHERE name = $1", args: []any{"Acme"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := whereClause(tt.criteria, "name")
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%acme%", likePattern("acme"))
	assert.Equal(t, `%100\%\_a\\b%`, likePattern(`100%_a\b`))
}

func TestWriteError(t *testing.T) {
	t.Run("unique violation", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", TableName: "companies", ConstraintName: "companies_name_key"}
		err := writeError("create company", pgErr)

		ue := apperrors.GetUniqueConstraintError(err)
		require.NotNil(t, ue)
		require.Len(t, ue.Violations, 1)
		assert.Equal(t, "name", ue.Violations[0].Field)
		assert.Equal(t, "name must be unique", ue.Violations[0].Message)
		assert.ErrorIs(t, err, pgErr)
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := writeError("update user", cause)
		assert.False(t, apperrors.IsUniqueConstraint(err))
		assert.EqualError(t, err, fmt.Sprintf("failed to update user: %v", cause))
	})
}

func TestConstraintField(t *testing.T) {
	assert.Equal(t, "username", constraintField("users", "users_username_key"))
	assert.Equal(t, "users_username", constraintField("", "users_username_key"))
	assert.Equal(t, "value", constraintField("users", ""))
}

func TestPageCapacity(t *testing.T) {
	tests := []struct {
		name                 string
		total, limit, offset int
		want                 int
	}{
		{"full page", 50, 20, 0, 20},
		{"last partial page", 50, 20, 40, 10},
		{"past the end", 50, 20, 60, 0},
		{"huge limit is bounded by total", 3, 2000000000, 0, 3},
		{"empty table", 0, 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageCapacity(tt.total, tt.limit, tt.offset))
		})
	}
}
