package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pkg/database"
)

const companyColumns = `id, name, image, url, created_at, updated_at`

// CompanyRepository handles company data operations in PostgreSQL
type CompanyRepository struct {
	db  *database.PostgresDB
	log *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *database.PostgresDB, log *zap.Logger) *CompanyRepository {
	return &CompanyRepository{db: db, log: log}
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Image, &c.URL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOne returns the company matching criteria, or nil when there is none
func (r *CompanyRepository) FindOne(ctx context.Context, criteria domain.Criteria) (*domain.Company, error) {
	where, args := whereClause(criteria, "name")
	query := `SELECT ` + companyColumns + ` FROM companies` + where + ` ORDER BY id LIMIT 1`

	company, err := scanCompany(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// Create inserts a company and fills its generated fields
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	query := `
		INSERT INTO companies (name, image, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, company.Name, company.Image, company.URL).
		Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		return writeError("create company", err)
	}
	return nil
}

// Update saves the company
func (r *CompanyRepository) Update(ctx context.Context, company *domain.Company) error {
	query := `
		UPDATE companies
		SET name = $2, image = $3, url = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, company.ID, company.Name, company.Image, company.URL).
		Scan(&company.UpdatedAt)
	if err != nil {
		return writeError("update company", err)
	}
	return nil
}

// Destroy deletes the company and detaches its users
func (r *CompanyRepository) Destroy(ctx context.Context, company *domain.Company) error {
	return database.Transaction(ctx, r.db, r.log, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE users SET company_id = NULL, updated_at = NOW() WHERE company_id = $1`, company.ID); err != nil {
			return fmt.Errorf("failed to detach users: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, company.ID); err != nil {
			return fmt.Errorf("failed to delete company: %w", err)
		}
		return nil
	})
}

// FindAndCountAll returns the total number of matching companies and one page of them
func (r *CompanyRepository) FindAndCountAll(ctx context.Context, filter domain.Filter, limit, offset int) (int, []domain.Company, error) {
	where := ""
	var args []any
	if filter.Query != "" {
		args = append(args, likePattern(filter.Query))
		where = ` WHERE name ILIKE $1`
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`+where, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("failed to count companies: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM companies%s ORDER BY id LIMIT $%d OFFSET $%d`,
		companyColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Pool.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]domain.Company, 0, pageCapacity(total, limit, offset))
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return total, companies, nil
}
