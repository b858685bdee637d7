package service

import (
	"context"

	"github.com/corpdir/api/internal/domain"
	"github.com/corpdir/api/internal/pipeline"
	"github.com/corpdir/api/internal/validator"
)

const companyResource = "Company"

// CompanyService manages companies
type CompanyService struct {
	pipeline.Service

	companies CompanyRepository
}

func companyPayload() *validator.Rule {
	return validator.Object(
		validator.Field("name", validator.String().Max(255).Required()),
		validator.Field("image", validator.String().Max(512)),
		validator.Field("url", validator.String().Max(512)),
	).Required()
}

const (
	maxPageSize = 100
	maxPage     = 1000000
)

func searchCriteria() *validator.Rule {
	return validator.Object(
		validator.Field("page", validator.Integer().Min(0).Max(maxPage).Default(0)),
		validator.Field("pageSize", validator.Integer().Min(1).Max(maxPageSize).Default(20)),
		validator.Field("query", validator.String()),
	).Default(map[string]any{})
}

func idRule() *validator.Rule {
	return validator.Integer().Min(1).Required()
}

// NewCompanyService creates a new company service
func NewCompanyService(companies CompanyRepository, builder *pipeline.Builder) *CompanyService {
	s := &CompanyService{companies: companies}
	s.Service = builder.Build(qualify("company", pipeline.Service{
		OpCreate: {
			Params: []string{"payload"},
			Schema: validator.Schema{"payload": companyPayload()},
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
			Schema: validator.Schema{"id": idRule(), "payload": companyPayload()},
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

func (s *CompanyService) create(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var in domain.CompanyInput
	if err := decode(args[0], &in); err != nil {
		return nil, err
	}

	company := &domain.Company{}
	in.Apply(company)
	if err := exec(ctx, await, func(ctx context.Context) error { return s.companies.Create(ctx, company) }); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) search(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var criteria domain.SearchCriteria
	if err := decode(args[0], &criteria); err != nil {
		return nil, err
	}
	return FindAndCountAll(ctx, await, s.companies, domain.Filter{Query: criteria.Query}, criteria.Page, criteria.PageSize)
}

func (s *CompanyService) get(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	return EnsureExist(ctx, await, s.companies, companyResource, domain.ByID(args[0].(int)))
}

func (s *CompanyService) update(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	var in domain.CompanyInput
	if err := decode(args[1], &in); err != nil {
		return nil, err
	}
	return FindOneAndUpdate(ctx, await, s.companies, companyResource, domain.ByID(args[0].(int)), func(c *domain.Company) error {
		in.Apply(c)
		return nil
	})
}

func (s *CompanyService) remove(ctx context.Context, await pipeline.Await, args pipeline.Args) (any, error) {
	return FindOneAndRemove(ctx, await, s.companies, companyResource, domain.ByID(args[0].(int)))
}
