package postgres

import (
	"fmt"
	"strings"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pkg/database"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Schema creates the directory tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS companies (
	id         SERIAL PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	image      VARCHAR(512),
	url        VARCHAR(512),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT companies_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS users (
	id         SERIAL PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	role       SMALLINT NOT NULL,
	username   VARCHAR(255) NOT NULL,
	password   VARCHAR(255) NOT NULL,
	company_id INTEGER REFERENCES companies (id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT users_username_key UNIQUE (username)
);
`

// whereClause renders criteria as a WHERE clause starting at placeholder $1
func whereClause(c domain.Criteria, nameColumn string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if c.ID != 0 {
		add("id", c.ID)
	}
	if c.Name != "" {
		add(nameColumn, c.Name)
	}
	if c.Username != "" {
		add("username", c.Username)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// likePattern escapes q for use in an ILIKE substring match
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// writeError converts unique violations into UniqueConstraintError and
// wraps everything else.
func writeError(action string, err error) error {
	if pgErr, ok := database.UniqueViolation(err); ok {
		field := constraintField(pgErr.TableName, pgErr.ConstraintName)
		return apperrors.NewUniqueConstraintError(err, apperrors.ConstraintViolation{
			Constraint: pgErr.ConstraintName,
			Field:      field,
			Message:    field + " must be unique",
		})
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// constraintField extracts the column from a "<table>_<column>_key" name
func constraintField(table, constraint string) string {
	field := strings.TrimSuffix(constraint, "_key")
	if table != "" {
		field = strings.TrimPrefix(field, table+"_")
	}
	if field == "" {
		return "value"
	}
	return field
}

// pageCapacity is the number of rows a page can hold given the matching total
func pageCapacity(total, limit, offset int) int {
	return max(0, min(limit, total-offset))
}
