package service

import (
	"context"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pipeline"
	apperrors "github.com/corpdir/api/internal/pkg/errors"
	"github.com/corpdir/api/internal/validator"
)

// WrongCredentialsMessage is returned for any failed login
const WrongCredentialsMessage = "Wrong username or password"

// AuthService handles authentication
type AuthService struct {
	pipeline.Service

	users  UserRepository
	signer *TokenSigner
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, signer *TokenSigner, builder *pipeline.Builder) *AuthService {
	s := &AuthService{users: users, signer: signer}
	s.Service = builder.Build(qualify("auth", pipeline.Service{
		OpLogin: {
			Params: []string{"payload"},
			Schema: validator.Schema{
				"payload": validator.Object(
					validator.Field("username", validator.String().Required()),
					validator.Field("password", validator.String().Required()),
				).Required(),
			},
			Fn: s.login,
		},
	}))
	return s
}

// ValidateToken verifies an access token
func (s *AuthService) ValidateToken(token string) (*domain.JWTClaims, error) {
	return s.signer.ValidateToken(token)
}

func (s *AuthService) login(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var in domain.LoginInput
	if err := decode(args[0], &in); err != nil {
		return nil, err
	}

	user, err := FindOne(ctx, await, s.users, domain.Criteria{Username: in.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.Unauthorized(WrongCredentialsMessage)
	}

	if err := CheckPassword(in.Password, user.PasswordHash, WrongCredentialsMessage); err != nil {
		return nil, err
	}

	token, err := s.signer.SignToken(user)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResult{Token: token}, nil
}
