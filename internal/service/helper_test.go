package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pipeline"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
	"github.com/corpdir/api/internal/testutil"
)

// run drives one exported operation on the trampoline, the way the HTTP
// layer does
func run(svc pipeline.Service, name string, args ...any) (any, error) {
	async := pipeline.ToAsync(func(ctx context.Context, await pipeline.Await, a pipeline.Args) (any, error) {
		return svc.Call(ctx, await, name, a...)
	})
	return async(context.Background(), args...).Wait()
}

func newBuilder() *pipeline.Builder {
	return pipeline.NewBuilder(nil, nil)
}

func TestEnsureExist(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewCompanyStore()
	acme := store.Seed(testutil.NewTestCompany("acme"))

	got, err := EnsureExist(ctx, pipeline.Block, store, "Company", domain.ByID(acme.ID))
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)

	_, err = EnsureExist(ctx, pipeline.Block, store, "Company", domain.ByID(99))
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Company not found", apperrors.GetAppError(err).Message)

	_, err = EnsureExist(ctx, pipeline.Block, store, "Company", domain.ByID(99), AsBadRequest(), WithMessage("no such company"))
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
	assert.Equal(t, "no such company", apperrors.GetAppError(err).Message)
}

func TestEnsureNotExist(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewUserStore()
	store.Seed(testutil.NewTestUser("alice", domain.RoleUser))

	assert.NoError(t, EnsureNotExist(ctx, pipeline.Block, store, "User", domain.Criteria{Username: "bob"}, ""))

	err := EnsureNotExist(ctx, pipeline.Block, store, "User", domain.Criteria{Username: "alice"}, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, "User already exists", apperrors.GetAppError(err).Message)
}

func TestFindOneAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewCompanyStore()
	acme := store.Seed(testutil.NewTestCompany("acme"))

	updated, err := FindOneAndUpdate(ctx, pipeline.Block, store, "Company", domain.ByID(acme.ID), func(c *domain.Company) error {
		c.Name = "acme-2"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-2", updated.Name)

	stored, err := store.FindOne(ctx, domain.ByID(acme.ID))
	require.NoError(t, err)
	assert.Equal(t, "acme-2", stored.Name)

	boom := errors.New("refused")
	_, err = FindOneAndUpdate(ctx, pipeline.Block, store, "Company", domain.ByID(acme.ID), func(c *domain.Company) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestFindOneAndRemove(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewCompanyStore()
	acme := store.Seed(testutil.NewTestCompany("acme"))

	removed, err := FindOneAndRemove(ctx, pipeline.Block, store, "Company", domain.ByID(acme.ID))
	require.NoError(t, err)
	assert.Equal(t, acme.ID, removed.ID)
	assert.Zero(t, store.Len())

	_, err = FindOneAndRemove(ctx, pipeline.Block, store, "Company", domain.ByID(acme.ID))
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindAndCountAll(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewCompanyStore()
	for _, name := range []string{"alpha", "beta", "alphabet", "gamma"} {
		store.Seed(testutil.NewTestCompany(name))
	}

	page, err := FindAndCountAll(ctx, pipeline.Block, store, domain.Filter{Query: "alpha"}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alpha", page.Items[0].Name)

	page, err = FindAndCountAll(ctx, pipeline.Block, store, domain.Filter{}, 5, 20)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestPersistFailureUnderTrampoline(t *testing.T) {
	store := testutil.NewCompanyStore()
	store.Err = errors.New("connection refused")

	reached := false
	async := pipeline.ToAsync(func(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
		_, err := FindOne(ctx, await, store, domain.ByID(1))
		reached = true
		return nil, err
	})

	_, err := async(context.Background()).Wait()
	require.Error(t, err)
	assert.Equal(t, "connection refused", err.Error())
	assert.False(t, reached)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.NoError(t, CheckPassword("hunter2", hash, "nope"))

	err = CheckPassword("wrong", hash, "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, "nope", apperrors.GetAppError(err).Message)
}

func TestTokenSigner(t *testing.T) {
	signer := NewTokenSigner("test-secret", time.Hour, "corpdir")
	token, err := signer.SignToken(&domain.User{ID: 7, Name: "Alice", Role: domain.RoleManager})
	require.NoError(t, err)

	claims, err := signer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "corpdir", claims.Issuer)

	other := NewTokenSigner("other-secret", time.Hour, "corpdir")
	_, err = other.ValidateToken(token)
	assert.True(t, apperrors.IsUnauthorized(err))

	expired := NewTokenSigner("test-secret", -time.Minute, "corpdir")
	token, err = expired.SignToken(&domain.User{ID: 7})
	require.NoError(t, err)
	_, err = signer.ValidateToken(token)
	assert.True(t, apperrors.IsUnauthorized(err))
}
