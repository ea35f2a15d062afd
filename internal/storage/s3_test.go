package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/catalog_api/internal/config"
)

type fakeS3 struct {
	objects   map[string]string
	deleteErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = string(body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	for _, id := range in.Delete.Objects {
		delete(f.objects, aws.ToString(id.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func newTestStore() (*S3MediaStore, *fakeS3) {
	fake := &fakeS3{objects: map[string]string{}}
	store := newS3MediaStore(fake, &config.S3Config{
		Bucket:        "catalog-media",
		Region:        "ap-southeast-3",
		PublicBaseURL: "https://cdn.example.com/",
		KeyPrefix:     "/products/",
	})
	return store, fake
}

func TestUploadAndDelete(t *testing.T) {
	store, fake := newTestStore()
	ctx := context.Background()

	url, err := store.Upload(ctx, "Shoe.JPG", strings.NewReader("img"), "image/jpeg")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example.com/products/"))
	require.True(t, strings.HasSuffix(url, ".jpg"))

	key, ok := store.KeyFor(url)
	require.True(t, ok)
	assert.Equal(t, "img", fake.objects[key])

	require.NoError(t, store.Delete(ctx, []string{url, url, "https://elsewhere.com/x.jpg"}))
	assert.Empty(t, fake.objects)
}

func TestDeleteFailure(t *testing.T) {
	store, fake := newTestStore()
	fake.deleteErr = errors.New("boom")

	err := store.Delete(context.Background(), []string{"https://cdn.example.com/products/a.jpg"})
	require.Error(t, err)

	// nothing owned, nothing to call
	require.NoError(t, store.Delete(context.Background(), []string{"https://other/a.jpg"}))
}

func TestDefaultBaseURL(t *testing.T) {
	store := newS3MediaStore(&fakeS3{}, &config.S3Config{Bucket: "b", Region: "us-east-1"})
	assert.Equal(t, "https://b.s3.us-east-1.amazonaws.com/k", store.URL("k"))

	minio := newS3MediaStore(&fakeS3{}, &config.S3Config{Bucket: "b", Endpoint: "http://minio:9000/"})
	assert.Equal(t, "http://minio:9000/b/k", minio.URL("k"))
	_, ok := minio.KeyFor("http://minio:9000/b/")
	assert.False(t, ok)
}
