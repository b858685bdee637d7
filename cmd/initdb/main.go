// Command initdb creates the directory schema and seeds the root company
// with an admin and a regular account. Running it again leaves existing rows
// untouched.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/corpdir/api/internal/config"
	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pkg/logger"
	pgrepo "github.com/corpdir/api/internal/repository/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Postgres.DSN())
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	if err := initSchema(ctx, db); err != nil {
		log.Fatal("failed to create schema", zap.Error(err))
	}

	result, err := seed(ctx, db, cfg.Seed)
	if err != nil {
		log.Fatal("failed to seed data", zap.Error(err))
	}

	log.Info("database initialized",
		zap.Int("company_id", result.CompanyID),
		zap.Int("accounts_created", result.Created),
	)
}

// initSchema creates the tables if they are missing
func initSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, pgrepo.Schema)
	return err
}

// seedResult reports what seed did
type seedResult struct {
	CompanyID int
	Created   int
}

type account struct {
	Name     string      `db:"name"`
	Role     domain.Role `db:"role"`
	Username string      `db:"username"`
	Password string      `db:"password"`
	Company  int         `db:"company_id"`
}

// seed inserts the root company and the seed accounts in one transaction
func seed(ctx context.Context, db *sqlx.DB, cfg config.SeedConfig) (seedResult, error) {
	var result seedResult

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.GetContext(ctx, &result.CompanyID, `
		INSERT INTO companies (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, cfg.CompanyName)
	if err != nil {
		return result, fmt.Errorf("failed to create company: %w", err)
	}

	accounts := []struct {
		username string
		password string
		role     domain.Role
		name     string
	}{
		{cfg.AdminUsername, cfg.AdminPassword, domain.RoleAdmin, "Administrator"},
		{cfg.UserUsername, cfg.UserPassword, domain.RoleUser, "User"},
	}

	for _, a := range accounts {
		if a.username == "" {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return result, fmt.Errorf("failed to hash password: %w", err)
		}

		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO users (name, role, username, password, company_id)
			VALUES (:name, :role, :username, :password, :company_id)
			ON CONFLICT (username) DO NOTHING`, account{
			Name:     a.name,
			Role:     a.role,
			Username: a.username,
			Password: string(hash),
			Company:  result.CompanyID,
		})
		if err != nil {
			return result, fmt.Errorf("failed to create user %s: %w", a.username, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			result.Created += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}
