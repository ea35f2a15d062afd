package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
)

// BrandStore is the brand persistence used by BrandService.
type BrandStore interface {
	Create(ctx context.Context, b *models.Brand) error
	GetByID(ctx context.Context, id int) (*models.Brand, error)
	List(ctx context.Context) ([]models.Brand, error)
	Search(ctx context.Context, q repository.LabelQuery) ([]models.Brand, int, error)
	Update(ctx context.Context, b *models.Brand) error
	Delete(ctx context.Context, id int) error
}

// LabelSearch is a parsed brand or category search.
type LabelSearch struct {
	Query repository.LabelQuery
	Page  int
	Limit int
}

// ParseLabelSearch applies the product sort-key and paging rules to a
// brand or category search.
func ParseLabelSearch(q, sortKey, page, limit string, limits catalog.Limits) (*LabelSearch, error) {
	sort, err := catalog.ParseSort(sortKey, repository.LabelSortFields)
	if err != nil {
		return nil, err
	}
	p, l := catalog.ParsePaging(page, limit, limits)
	return &LabelSearch{
		Query: repository.LabelQuery{
			Search: strings.TrimSpace(q),
			Sort:   sort,
			Limit:  l,
			Offset: (p - 1) * l,
		},
		Page:  p,
		Limit: l,
	}, nil
}

// BrandService manages brands.
type BrandService struct {
	brands  BrandStore
	reports ReportInvalidator
}

// NewBrandService constructs a BrandService.
func NewBrandService(brands BrandStore, reports ReportInvalidator) *BrandService {
	return &BrandService{brands: brands, reports: reports}
}

func (s *BrandService) List(ctx context.Context) ([]models.Brand, error) {
	return s.brands.List(ctx)
}

func (s *BrandService) Get(ctx context.Context, id int) (*models.Brand, error) {
	return s.brands.GetByID(ctx, id)
}

// Search returns one page of brands and the total match count.
func (s *BrandService) Search(ctx context.Context, search *LabelSearch) ([]models.Brand, int, error) {
	return s.brands.Search(ctx, search.Query)
}

func (s *BrandService) Create(ctx context.Context, name string) (*models.Brand, error) {
	b := &models.Brand{Name: strings.TrimSpace(name)}
	if err := s.brands.Create(ctx, b); err != nil {
		return nil, err
	}
	log.Info().Int("brand_id", b.ID).Str("name", b.Name).Msg("Brand created")
	invalidate(ctx, s.reports)
	return b, nil
}

func (s *BrandService) Update(ctx context.Context, id int, name string) (*models.Brand, error) {
	b := &models.Brand{ID: id, Name: strings.TrimSpace(name)}
	if err := s.brands.Update(ctx, b); err != nil {
		return nil, err
	}
	invalidate(ctx, s.reports)
	return b, nil
}

func (s *BrandService) Delete(ctx context.Context, id int) error {
	if err := s.brands.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int("brand_id", id).Msg("Brand deleted")
	invalidate(ctx, s.reports)
	return nil
}

func invalidate(ctx context.Context, reports ReportInvalidator) {
	if reports == nil {
		return
	}
	if err := reports.Invalidate(ctx, ReportCatalog); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate catalog report")
	}
}
