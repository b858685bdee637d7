package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/corpdir/api/internal/domain"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
	"github.com/corpdir/api/internal/testutil"
)

type userFixture struct {
	svc       *UserService
	users     *testutil.MemoryRepository[domain.User]
	companies *testutil.MemoryRepository[domain.Company]
}

func newUserService() userFixture {
	f := userFixture{
		users:     testutil.NewUserStore(),
		companies: testutil.NewCompanyStore(),
	}
	f.svc = NewUserService(f.users, f.companies, newBuilder())
	return f
}

func userPayloadFor(username string) map[string]any {
	return map[string]any{
		"name":     "Bob",
		"role":     "3",
		"username": username,
		"password": "pa55word",
	}
}

func TestUserService_Create(t *testing.T) {
	f := newUserService()
	acme := f.companies.Seed(testutil.NewTestCompany("acme"))

	payload := userPayloadFor("bob")
	payload["companyId"] = acme.ID

	result, err := run(f.svc.Service, OpCreate, payload)
	require.NoError(t, err)

	user := result.(*domain.User)
	assert.NotZero(t, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
	require.NotNil(t, user.CompanyID)
	assert.Equal(t, acme.ID, *user.CompanyID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pa55word")))
}

func TestUserService_CreateDuplicateUsername(t *testing.T) {
	f := newUserService()
	f.users.Seed(testutil.NewTestUser("bob", domain.RoleUser))

	_, err := run(f.svc.Service, OpCreate, userPayloadFor("bob"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "User already existed with username=bob", apperrors.GetAppError(err).Message)
	assert.Equal(t, 1, f.users.Len())
}

func TestUserService_CreateUnknownCompany(t *testing.T) {
	f := newUserService()

	payload := userPayloadFor("bob")
	payload["companyId"] = 12

	_, err := run(f.svc.Service, OpCreate, payload)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.Zero(t, f.users.Len())
}

func TestUserService_CreateValidation(t *testing.T) {
	f := newUserService()

	_, err := run(f.svc.Service, OpCreate, map[string]any{
		"name":     "Bob",
		"role":     9,
		"password": "x",
	})
	require.True(t, apperrors.IsValidation(err))

	violations := apperrors.GetAppError(err).Violations
	require.Len(t, violations, 2)
	assert.Equal(t, []string{"payload", "role"}, violations[0].Path)
	assert.Equal(t, []string{"payload", "username"}, violations[1].Path)
}

func TestUserService_SearchAndGet(t *testing.T) {
	f := newUserService()
	alice := f.users.Seed(testutil.NewTestUser("alice", domain.RoleAdmin))
	f.users.Seed(testutil.NewTestUser("bob", domain.RoleUser))

	result, err := run(f.svc.Service, OpSearch, map[string]any{"query": "alice"})
	require.NoError(t, err)
	page := result.(*domain.Page[domain.User])
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "alice", page.Items[0].Username)

	result, err = run(f.svc.Service, OpGet, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", result.(*domain.User).Username)

	_, err = run(f.svc.Service, OpGet, 77)
	assert.Equal(t, "User not found", apperrors.GetAppError(err).Message)
}

func TestUserService_Update(t *testing.T) {
	f := newUserService()
	bob := f.users.Seed(testutil.NewTestUser("bob", domain.RoleUser))
	f.users.Seed(testutil.NewTestUser("carol", domain.RoleUser))

	// keeping the same username is not a conflict
	payload := userPayloadFor("bob")
	payload["role"] = 2
	result, err := run(f.svc.Service, OpUpdate, bob.ID, payload)
	require.NoError(t, err)
	updated := result.(*domain.User)
	assert.Equal(t, domain.RoleManager, updated.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("pa55word")))

	_, err = run(f.svc.Service, OpUpdate, bob.ID, userPayloadFor("carol"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestUserService_Remove(t *testing.T) {
	f := newUserService()
	bob := f.users.Seed(testutil.NewTestUser("bob", domain.RoleUser))

	_, err := run(f.svc.Service, OpRemove, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, f.users.Len())
}
