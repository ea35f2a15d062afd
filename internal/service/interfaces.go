package service

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
)

// ProductStore is the product persistence used by ProductService.
type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Replace(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) (*models.Product, error)
	FindMany(ctx context.Context, spec *catalog.FilterSpec) ([]models.Product, error)
	Count(ctx context.Context, spec *catalog.FilterSpec) (int64, error)
	FindByGroup(ctx context.Context, groupID string) ([]models.Product, error)
	CountMediaRefs(ctx context.Context, url string, exclude primitive.ObjectID) (int64, error)
	PropagateColor(ctx context.Context, groupID string, change catalog.ColorChange) (int64, error)
}

// MediaStore uploads and deletes media objects addressed by URL.
type MediaStore interface {
	Upload(ctx context.Context, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, urls []string) error
}

// MediaQueue defers deletes that failed for the cleanup worker.
type MediaQueue interface {
	Push(ctx context.Context, urls ...string) error
}

// ReportInvalidator drops cached reports after catalog writes.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, names ...string) error
}
