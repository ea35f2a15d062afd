package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
)

// CategoryStore is the category persistence used by CategoryService.
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Search(ctx context.Context, q repository.LabelQuery) ([]models.Category, int, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int) error
}

// CategoryService manages categories and their cover images.
type CategoryService struct {
	categories CategoryStore
	releaser   mediaReleaser
	reports    ReportInvalidator
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(categories CategoryStore, media MediaStore, queue MediaQueue, reports ReportInvalidator) *CategoryService {
	return &CategoryService{
		categories: categories,
		releaser:   mediaReleaser{media: media, queue: queue},
		reports:    reports,
	}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// Search returns one page of categories and the total match count.
func (s *CategoryService) Search(ctx context.Context, search *LabelSearch) ([]models.Category, int, error) {
	return s.categories.Search(ctx, search.Query)
}

// Create inserts a category. A staged image is released if the insert fails.
func (s *CategoryService) Create(ctx context.Context, name string, image *string) (*models.Category, error) {
	c := &models.Category{Name: strings.TrimSpace(name), Image: image}
	if err := s.categories.Create(ctx, c); err != nil {
		if image != nil && *image != "" {
			s.releaser.release(ctx, []string{*image})
			return nil, &StagedMediaError{Refs: []string{*image}, Err: err}
		}
		return nil, err
	}
	log.Info().Int("category_id", c.ID).Str("name", c.Name).Msg("Category created")
	invalidate(ctx, s.reports)
	return c, nil
}

// Update renames a category. A nil image keeps the current one; a replaced
// image is released after the write.
func (s *CategoryService) Update(ctx context.Context, id int, name string, image *string) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	old := c.Image
	c.Name = strings.TrimSpace(name)
	if image != nil {
		c.Image = image
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	if old != nil && *old != "" && (c.Image == nil || *c.Image != *old) {
		s.releaser.release(ctx, []string{*old})
	}
	invalidate(ctx, s.reports)
	return c, nil
}

// Delete removes a category and releases its image.
func (s *CategoryService) Delete(ctx context.Context, id int) error {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	if c.Image != nil && *c.Image != "" {
		s.releaser.release(ctx, []string{*c.Image})
	}
	log.Info().Int("category_id", id).Msg("Category deleted")
	invalidate(ctx, s.reports)
	return nil
}
