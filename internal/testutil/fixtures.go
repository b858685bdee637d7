// Package testutil provides shared test utilities for the directory API.
package testutil

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/corpdir/api/internal/domain"
)

// TestPassword is the plain password of users built by NewTestUser
const TestPassword = "secret-password"

// NewTestCompany creates a test company with default values.
func NewTestCompany(name string) *domain.Company {
	return &domain.Company{
		Name: name,
		URL:  strPtr("https://" + name + ".example.com"),
	}
}

// NewTestUser creates a test user whose password is TestPassword.
func NewTestUser(username string, role domain.Role) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return &domain.User{
		Name:         "Test " + username,
		Role:         role,
		Username:     username,
		PasswordHash: string(hash),
	}
}

func strPtr(s string) *string {
	return &s
}
