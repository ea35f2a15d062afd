package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/catalog_api/internal/catalog"
)

// maxParallelUploads bounds concurrent PutObject calls per request.
const maxParallelUploads = 4

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// Upload is one file of a multipart media request.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// MediaService stages product media ahead of product writes.
type MediaService struct {
	releaser mediaReleaser
	maxFiles int
	maxBytes int64
}

// NewMediaService constructs a MediaService.
func NewMediaService(media MediaStore, queue MediaQueue, maxFiles int, maxBytes int64) *MediaService {
	return &MediaService{
		releaser: mediaReleaser{media: media, queue: queue},
		maxFiles: maxFiles,
		maxBytes: maxBytes,
	}
}

// UploadImages uploads files in parallel and returns their URLs in input
// order. If any upload fails the ones that succeeded are released.
func (s *MediaService) UploadImages(ctx context.Context, files []Upload) ([]string, error) {
	if err := s.check(files); err != nil {
		return nil, err
	}

	urls := make([]string, len(files))
	var (
		mu       sync.Mutex
		uploaded []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Filename, err)
			}
			defer rc.Close()

			u, err := s.releaser.media.Upload(gctx, f.Filename, rc, f.ContentType)
			if err != nil {
				return err
			}
			urls[i] = u
			mu.Lock()
			uploaded = append(uploaded, u)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// gctx is cancelled by now; release on the parent context.
		s.releaser.release(ctx, uploaded)
		if len(uploaded) > 0 {
			return nil, &StagedMediaError{Refs: uploaded, Err: err}
		}
		return nil, err
	}

	log.Info().Int("count", len(urls)).Msg("Media uploaded")
	return urls, nil
}

func (s *MediaService) check(files []Upload) error {
	if len(files) == 0 {
		return &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: "images"}
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		return &catalog.Error{
			Kind:   catalog.ErrInvalidPayload,
			Field:  "images",
			Detail: fmt.Sprintf("at most %d files per request", s.maxFiles),
		}
	}
	for i, f := range files {
		field := fmt.Sprintf("images[%d]", i)
		ct := strings.ToLower(strings.TrimSpace(strings.Split(f.ContentType, ";")[0]))
		if !allowedImageTypes[ct] {
			return &catalog.Error{Kind: catalog.ErrInvalidPayload, Field: field, Detail: fmt.Sprintf("unsupported content type %q", f.ContentType)}
		}
		if s.maxBytes > 0 && f.Size > s.maxBytes {
			return &catalog.Error{Kind: catalog.ErrInvalidPayload, Field: field, Detail: fmt.Sprintf("exceeds %d bytes", s.maxBytes)}
		}
	}
	return nil
}

// CheckImage validates a single upload the same way UploadImages does.
func (s *MediaService) CheckImage(f Upload) error {
	return s.check([]Upload{f})
}
