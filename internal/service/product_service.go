package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
)

// ReportCatalog is the cached report invalidated by catalog writes.
const ReportCatalog = "catalog"

// ProductService provides product-related business logic.
type ProductService struct {
	products ProductStore
	releaser mediaReleaser
	reports  ReportInvalidator
	policy   catalog.Policy
	limits   catalog.Limits
}

// NewProductService constructs a ProductService.
func NewProductService(
	products ProductStore,
	media MediaStore,
	queue MediaQueue,
	reports ReportInvalidator,
	policy catalog.Policy,
	limits catalog.Limits,
) *ProductService {
	return &ProductService{
		products: products,
		releaser: mediaReleaser{media: media, queue: queue},
		reports:  reports,
		policy:   policy,
		limits:   limits,
	}
}

// SearchResult is one page of a product search.
type SearchResult struct {
	Products   []models.Product
	Page       int
	Limit      int
	TotalItems int64
	TotalPages int
}

// Create normalizes a raw product payload and persists it. When anything
// fails, the media the payload references is released unless another
// product still holds it, and the error is a *StagedMediaError.
func (s *ProductService) Create(ctx context.Context, raw []byte) (*models.Product, error) {
	in, err := catalog.DecodeInput(raw)
	if err != nil {
		return nil, err
	}

	product, err := catalog.Normalize(in, s.policy)
	if err == nil {
		err = s.products.Create(ctx, product)
	}
	if err != nil {
		return nil, s.compensate(ctx, catalog.ImageRefs(in), primitive.NilObjectID, err)
	}

	log.Info().
		Str("product_id", product.ID.Hex()).
		Str("shape", string(product.Shape())).
		Msg("Product created")
	s.invalidateReport(ctx)
	return product, nil
}

// Get returns a product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListGroup returns the color siblings sharing groupID.
func (s *ProductService) ListGroup(ctx context.Context, groupID string) ([]models.Product, error) {
	return s.products.FindByGroup(ctx, groupID)
}

// Search runs a product search. Count and page are fetched concurrently and
// sized results are annotated with the size that best matches the text.
func (s *ProductService) Search(ctx context.Context, values url.Values) (*SearchResult, error) {
	params := catalog.ParseSearchParams(values)
	spec, err := catalog.BuildQuery(params, s.limits)
	if err != nil {
		return nil, err
	}

	var (
		products []models.Product
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.products.Count(gctx, spec)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.products.FindMany(gctx, spec)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	catalog.Rank(products, params.Query)

	return &SearchResult{
		Products:   products,
		Page:       spec.Page,
		Limit:      spec.Limit,
		TotalItems: total,
		TotalPages: spec.TotalPages(total),
	}, nil
}

// Update applies a partial update. Renamed or re-imaged colors are copied
// to every sibling in the group, then media no longer referenced is released.
func (s *ProductService) Update(ctx context.Context, id string, raw []byte) (*models.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := existing.MediaRefs()

	patch, err := catalog.DecodePatch(raw)
	if err != nil {
		return nil, err
	}

	updated, changes, err := catalog.ApplyUpdate(existing, patch, s.policy)
	if err != nil {
		return nil, s.compensate(ctx, subtract(catalog.PatchImageRefs(patch), before), existing.ID, err)
	}
	after := updated.MediaRefs()

	if err := s.products.Replace(ctx, updated); err != nil {
		return nil, s.compensate(ctx, subtract(after, before), existing.ID, err)
	}

	if updated.GroupID != "" {
		for _, change := range changes {
			n, err := s.products.PropagateColor(ctx, updated.GroupID, change)
			if err != nil {
				log.Error().Err(err).
					Str("group_id", updated.GroupID).
					Str("connection_id", change.ConnectionID).
					Msg("Failed to propagate color change")
				continue
			}
			log.Debug().
				Str("group_id", updated.GroupID).
				Str("connection_id", change.ConnectionID).
				Int64("modified", n).
				Msg("Color change propagated")
		}
	}

	s.releaseUnheld(ctx, subtract(before, after), updated.ID)
	s.invalidateReport(ctx)
	return updated, nil
}

// ReplaceImage uploads a new file into one image slot, persists the swap and
// releases the media that was there before.
func (s *ProductService) ReplaceImage(ctx context.Context, id string, slot int, filename string, body io.Reader, contentType string) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot < 0 || slot >= len(p.Images) {
		return nil, &catalog.Error{
			Kind:   catalog.ErrInvalidPayload,
			Field:  "slot",
			Detail: fmt.Sprintf("must be between 0 and %d", len(p.Images)-1),
		}
	}
	if s.releaser.media == nil {
		return nil, errors.New("media store not configured")
	}

	newURL, err := s.releaser.media.Upload(ctx, filename, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	old := p.Images[slot]
	images := append([]string(nil), p.Images...)
	images[slot] = newURL
	p.Images = images

	if err := s.products.Replace(ctx, p); err != nil {
		return nil, s.compensate(ctx, []string{newURL}, p.ID, err)
	}

	s.releaseUnheld(ctx, []string{old}, p.ID)
	s.invalidateReport(ctx)
	return p, nil
}

// Delete removes a product and releases every media reference it held that
// no other product still uses.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	log.Info().Str("product_id", id).Msg("Product deleted")

	s.releaseUnheld(ctx, deleted.MediaRefs(), deleted.ID)
	s.invalidateReport(ctx)
	return nil
}

func (s *ProductService) compensate(ctx context.Context, staged []string, owner primitive.ObjectID, cause error) error {
	if len(staged) == 0 {
		return cause
	}
	s.releaseUnheld(ctx, staged, owner)
	return &StagedMediaError{Refs: staged, Err: cause}
}

// releaseUnheld releases the urls that no product other than owner references.
func (s *ProductService) releaseUnheld(ctx context.Context, urls []string, owner primitive.ObjectID) {
	var free []string
	for _, u := range dedupe(urls) {
		n, err := s.products.CountMediaRefs(ctx, u, owner)
		if err != nil {
			log.Error().Err(err).Str("url", u).Msg("Failed to count media references, keeping media")
			continue
		}
		if n == 0 {
			free = append(free, u)
		}
	}
	s.releaser.release(ctx, free)
}

func (s *ProductService) invalidateReport(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx, ReportCatalog); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate catalog report")
	}
}

// subtract returns the entries of a missing from b.
func subtract(a, b []string) []string {
	held := make(map[string]bool, len(b))
	for _, v := range b {
		held[v] = true
	}
	var out []string
	for _, v := range a {
		if v != "" && !held[v] {
			out = append(out, v)
		}
	}
	return out
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
