package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pipeline"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Repository is the persistence collaborator for one resource kind.
// FindOne returns nil, nil when nothing matches.
type Repository[T any] interface {
	FindOne(ctx context.Context, criteria domain.Criteria) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Destroy(ctx context.Context, entity *T) error
	FindAndCountAll(ctx context.Context, filter domain.Filter, limit, offset int) (int, []T, error)
}

// CompanyRepository defines company repository operations
type CompanyRepository = Repository[domain.Company]

// UserRepository defines user repository operations
type UserRepository = Repository[domain.User]

// Export names shared by the CRUD services
const (
	OpCreate = "create"
	OpSearch = "search"
	OpGet    = "get"
	OpUpdate = "update"
	OpRemove = "remove"
	OpLogin  = "login"
)

// persist runs fn as a suspension point of the calling operation
func persist[T any](ctx context.Context, await pipeline.Await, fn func(ctx context.Context) (T, error)) (T, error) {
	return pipeline.AwaitAs[T](await, pipeline.Go(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}))
}

// exec is persist for calls without a result
func exec(ctx context.Context, await pipeline.Await, fn func(ctx context.Context) error) error {
	_, err := await(pipeline.Go(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	}))
	return err
}

// FindOne looks up the entity matching criteria
func FindOne[T any](ctx context.Context, await pipeline.Await, repo Repository[T], criteria domain.Criteria) (*T, error) {
	return persist(ctx, await, func(ctx context.Context) (*T, error) {
		return repo.FindOne(ctx, criteria)
	})
}

// LookupOption customizes the failure raised by EnsureExist
type LookupOption func(*lookup)

type lookup struct {
	message    string
	badRequest bool
}

// WithMessage replaces the default "<Resource> not found" message
func WithMessage(msg string) LookupOption {
	return func(l *lookup) { l.message = msg }
}

// AsBadRequest reports a missing entity as 400 instead of 404
func AsBadRequest() LookupOption {
	return func(l *lookup) { l.badRequest = true }
}

// EnsureExist returns the entity matching criteria or fails with NotFound
// (or BadRequest when requested).
func EnsureExist[T any](ctx context.Context, await pipeline.Await, repo Repository[T], resource string, criteria domain.Criteria, opts ...LookupOption) (*T, error) {
	entity, err := FindOne(ctx, await, repo, criteria)
	if err != nil {
		return nil, err
	}
	if entity != nil {
		return entity, nil
	}

	l := lookup{message: resource + " not found"}
	for _, opt := range opts {
		opt(&l)
	}
	if l.badRequest {
		return nil, apperrors.BadRequest(l.message)
	}
	return nil, apperrors.NotFoundMessage(l.message)
}

// EnsureNotExist fails with Conflict when an entity matches criteria. An
// empty msg defaults to "<Resource> already exists".
func EnsureNotExist[T any](ctx context.Context, await pipeline.Await, repo Repository[T], resource string, criteria domain.Criteria, msg string) error {
	entity, err := FindOne(ctx, await, repo, criteria)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}
	if msg == "" {
		msg = resource + " already exists"
	}
	return apperrors.Conflict(msg)
}

// FindOneAndUpdate loads the entity, applies changes and saves it
func FindOneAndUpdate[T any](ctx context.Context, await pipeline.Await, repo Repository[T], resource string, criteria domain.Criteria, apply func(*T) error, opts ...LookupOption) (*T, error) {
	entity, err := EnsureExist(ctx, await, repo, resource, criteria, opts...)
	if err != nil {
		return nil, err
	}
	if err := apply(entity); err != nil {
		return nil, err
	}
	if err := exec(ctx, await, func(ctx context.Context) error { return repo.Update(ctx, entity) }); err != nil {
		return nil, err
	}
	return entity, nil
}

// FindOneAndRemove loads the entity, deletes it and returns it
func FindOneAndRemove[T any](ctx context.Context, await pipeline.Await, repo Repository[T], resource string, criteria domain.Criteria, opts ...LookupOption) (*T, error) {
	entity, err := EnsureExist(ctx, await, repo, resource, criteria, opts...)
	if err != nil {
		return nil, err
	}
	if err := exec(ctx, await, func(ctx context.Context) error { return repo.Destroy(ctx, entity) }); err != nil {
		return nil, err
	}
	return entity, nil
}

type countResult[T any] struct {
	total int
	rows  []T
}

// FindAndCountAll returns the zero-based page of entities matching filter
func FindAndCountAll[T any](ctx context.Context, await pipeline.Await, repo Repository[T], filter domain.Filter, page, pageSize int) (*domain.Page[T], error) {
	res, err := persist(ctx, await, func(ctx context.Context) (countResult[T], error) {
		total, rows, err := repo.FindAndCountAll(ctx, filter, pageSize, page*pageSize)
		return countResult[T]{total: total, rows: rows}, err
	})
	if err != nil {
		return nil, err
	}

	items := res.rows
	if items == nil {
		items = []T{}
	}
	return &domain.Page[T]{
		Total:    res.total,
		Page:     page,
		PageSize: pageSize,
		Items:    items,
	}, nil
}

// HashPassword hashes a plain password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword fails with Unauthorized(msg) when plain does not match hash
func CheckPassword(plain, hash, msg string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return apperrors.Unauthorized(msg)
	}
	return nil
}

// TokenSigner signs and validates access tokens
type TokenSigner struct {
	secret []byte
	expiry time.Duration
	issuer string
}

// NewTokenSigner creates a TokenSigner
func NewTokenSigner(secret string, expiry time.Duration, issuer string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), expiry: expiry, issuer: issuer}
}

// SignToken signs a token carrying the user's id, role and name
func (s *TokenSigner) SignToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &domain.JWTClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an access token
func (s *TokenSigner) ValidateToken(tokenString string) (*domain.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*domain.JWTClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}

// decode copies a validated payload into out
func decode(payload any, out any) error {
	if err := mapstructure.Decode(payload, out); err != nil {
		return apperrors.Internal("failed to decode payload").WithError(err)
	}
	return nil
}

// qualify names every operation "<resource>.<export>" so traces and
// metrics tell services apart
func qualify(resource string, svc pipeline.Service) pipeline.Service {
	for name, op := range svc {
		if op != nil && op.Name == "" {
			op.Name = resource + "." + name
		}
	}
	return svc
}
