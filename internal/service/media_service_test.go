package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/catalog"
)

func upload(name, contentType string) Upload {
	return Upload{
		Filename:    name,
		ContentType: contentType,
		Size:        3,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("img")), nil
		},
	}
}

func TestUploadImagesKeepsOrder(t *testing.T) {
	media := &fakeMedia{}
	svc := NewMediaService(media, &fakeQueue{}, 5, 1024)

	urls, err := svc.UploadImages(context.Background(), []Upload{
		upload("a.jpg", "image/jpeg"),
		upload("b.png", "image/png"),
		upload("c.webp", "image/webp; charset=binary"),
	})
	require.NoError(t, err)
	require.Len(t, urls, 3)
	assert.True(t, strings.HasSuffix(urls[0], "-a.jpg"))
	assert.True(t, strings.HasSuffix(urls[1], "-b.png"))
	assert.True(t, strings.HasSuffix(urls[2], "-c.webp"))
}

func TestUploadImagesRejectsBeforeUploading(t *testing.T) {
	media := &fakeMedia{}
	svc := NewMediaService(media, &fakeQueue{}, 2, 2)

	_, err := svc.UploadImages(context.Background(), nil)
	assert.ErrorIs(t, err, catalog.ErrMissingRequiredField)

	_, err = svc.UploadImages(context.Background(), []Upload{upload("a.jpg", "image/jpeg"), upload("b.jpg", "image/jpeg"), upload("c.jpg", "image/jpeg")})
	assert.ErrorIs(t, err, catalog.ErrInvalidPayload)

	_, err = svc.UploadImages(context.Background(), []Upload{upload("a.pdf", "application/pdf")})
	assert.ErrorIs(t, err, catalog.ErrInvalidPayload)

	// 3 bytes against a 2 byte limit
	err = svc.CheckImage(upload("a.jpg", "image/jpeg"))
	var ce *catalog.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "images[0]", ce.Field)

	assert.Empty(t, media.uploaded)
}

func TestUploadImagesReleasesOnFailure(t *testing.T) {
	media := &fakeMedia{failOn: "bad.jpg"}
	svc := NewMediaService(media, &fakeQueue{}, 0, 0)

	_, err := svc.UploadImages(context.Background(), []Upload{
		upload("a.jpg", "image/jpeg"),
		upload("bad.jpg", "image/jpeg"),
		upload("c.jpg", "image/jpeg"),
	})
	require.Error(t, err)
	assert.ElementsMatch(t, media.uploaded, media.deleted)

	var staged *StagedMediaError
	if errors.As(err, &staged) {
		assert.ElementsMatch(t, media.uploaded, staged.Refs)
	} else {
		assert.Empty(t, media.uploaded)
	}
}
