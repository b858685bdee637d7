package service

import (
	"context"
	"fmt"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pipeline"
	"github.com/corpdir/api/internal/validator"
)

const userResource = "User"

// UserService manages users. Password hashes never leave the service: the
// JSON form of domain.User omits them.
type UserService struct {
	pipeline.Service

	users     UserRepository
	companies CompanyRepository
}

func userPayload() *validator.Rule {
	return validator.Object(
		validator.Field("name", validator.String().Max(255).Required()),
		validator.Field("role", validator.Enum(domain.RoleValues()...).Required()),
		validator.Field("username", validator.String().Max(255).Required()),
		validator.Field("password", validator.String().Max(45).Required()),
		validator.Field("companyId", validator.Integer().Min(1)),
	).Required()
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, companies CompanyRepository, builder *pipeline.Builder) *UserService {
	s := &UserService{users: users, companies: companies}
	s.Service = builder.Build(qualify("user", pipeline.Service{
		OpCreate: {
			Params: []string{"payload"},
			Schema: validator.Schema{"payload": userPayload()},
			Fn:     s.create,
		},
		OpSearch: {
			Params: []string{"criteria"},
			Schema: validator.Schema{"criteria": searchCriteria()},
			Fn:     s.search,
		},
		OpGet: {
			Params: []string{"id"},
			Schema: validator.Schema{"id": idRule()},
			Fn:     s.get,
		},
		OpUpdate: {
			Params: []string{"id", "payload"},
			Schema: validator.Schema{"id": idRule(), "payload": userPayload()},
			Fn:     s.update,
		},
		OpRemove: {
			Params: []string{"id"},
			Schema: validator.Schema{"id": idRule()},
			Fn:     s.remove,
		},
	}))
	return s
}

func (s *UserService) ensureUsernameFree(ctx context.Context, await pipeline.Await, username string) error {
	return EnsureNotExist(ctx, await, s.users, userResource, domain.Criteria{Username: username},
		fmt.Sprintf("User already existed with username=%s", username))
}

// ensureCompany rejects references to unknown companies with 400
func (s *UserService) ensureCompany(ctx context.Context, await pipeline.Await, companyID *int) error {
	if companyID == nil {
		return nil
	}
	_, err := EnsureExist(ctx, await, s.companies, companyResource, domain.ByID(*companyID), AsBadRequest())
	return err
}

func (s *UserService) create(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var in domain.UserInput
	if err := decode(args[0], &in); err != nil {
		return nil, err
	}

	if err := s.ensureUsernameFree(ctx, await, in.Username); err != nil {
		return nil, err
	}
	if err := s.ensureCompany(ctx, await, in.CompanyID); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         in.Name,
		Role:         in.Role,
		Username:     in.Username,
		PasswordHash: hash,
		CompanyID:    in.CompanyID,
	}
	if err := exec(ctx, await, func(ctx context.Context) error { return s.users.Create(ctx, user) }); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) search(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var criteria domain.SearchCriteria
	if err := decode(args[0], &criteria); err != nil {
		return nil, err
	}
	return FindAndCountAll(ctx, await, s.users, domain.Filter{Query: criteria.Query}, criteria.Page, criteria.PageSize)
}

func (s *UserService) get(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	return EnsureExist(ctx, await, s.users, userResource, domain.ByID(args[0].(int)))
}

func (s *UserService) update(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var in domain.UserInput
	if err := decode(args[1], &in); err != nil {
		return nil, err
	}

	user, err := EnsureExist(ctx, await, s.users, userResource, domain.ByID(args[0].(int)))
	if err != nil {
		return nil, err
	}

	if user.Username != in.Username {
		if err := s.ensureUsernameFree(ctx, await, in.Username); err != nil {
			return nil, err
		}
	}
	if err := s.ensureCompany(ctx, await, in.CompanyID); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Role = in.Role
	user.Username = in.Username
	user.PasswordHash = hash
	user.CompanyID = in.CompanyID

	if err := exec(ctx, await, func(ctx context.Context) error { return s.users.Update(ctx, user) }); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) remove(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	return FindOneAndRemove(ctx, await, s.users, userResource, domain.ByID(args[0].(int)))
}
