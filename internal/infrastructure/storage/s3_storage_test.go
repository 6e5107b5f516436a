package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zambezimeats/backend/internal/infrastructure/config"
)

func testConfig() config.StorageConfig {
	return config.StorageConfig{
		Bucket:          "zambezi-media",
		Region:          "ap-southeast-2",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		PresignExpiry:   10 * time.Minute,
	}
}

func newTestStorage(t *testing.T, cfg config.StorageConfig) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func TestNewS3Storage_Validation(t *testing.T) {
	t.Run("missing bucket", func(t *testing.T) {
		cfg := testConfig()
		cfg.Bucket = ""
		_, err := NewS3Storage(context.Background(), cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		cfg := testConfig()
		cfg.Endpoint = "::not a url"
		_, err := NewS3Storage(context.Background(), cfg)
		assert.ErrorContains(t, err, "invalid storage endpoint")
	})

	t.Run("default expiry", func(t *testing.T) {
		cfg := testConfig()
		cfg.PresignExpiry = 0
		s := newTestStorage(t, cfg)
		assert.Equal(t, 15*time.Minute, s.expiry)
		assert.Equal(t, "zambezi-media", s.Bucket())
	})
}

func TestS3Storage_PublicURL(t *testing.T) {
	t.Run("custom endpoint", func(t *testing.T) {
		s := newTestStorage(t, testConfig())
		assert.Equal(t, "http://localhost:9000/zambezi-media/products/a.jpg", s.PublicURL("products/a.jpg"))
	})

	t.Run("aws", func(t *testing.T) {
		cfg := testConfig()
		cfg.Endpoint = ""
		s := newTestStorage(t, cfg)
		assert.Equal(t, "https://zambezi-media.s3.ap-southeast-2.amazonaws.com/products/a.jpg", s.PublicURL("/products/a.jpg"))
	})

	t.Run("cdn base", func(t *testing.T) {
		cfg := testConfig()
		cfg.PublicBaseURL = "https://cdn.zambezimeats.com.au/"
		s := newTestStorage(t, cfg)
		assert.Equal(t, "https://cdn.zambezimeats.com.au/products/a.jpg", s.PublicURL("products/a.jpg"))
	})
}

func TestS3Storage_PresignUpload(t *testing.T) {
	s := newTestStorage(t, testConfig())

	_, err := s.PresignUpload(context.Background(), "", "image/png")
	assert.Error(t, err)

	up, err := s.PresignUpload(context.Background(), "products/p1/img.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "PUT", up.Method)
	assert.Equal(t, "products/p1/img.png", up.Key)
	assert.Equal(t, "image/png", up.Headers["Content-Type"])
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), up.ExpiresAt, 5*time.Second)

	u, err := url.Parse(up.URL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Path, "/zambezi-media/products/p1/img.png"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Storage_PresignDownload(t *testing.T) {
	s := newTestStorage(t, testConfig())

	_, _, err := s.PresignDownload(context.Background(), "")
	assert.Error(t, err)

	link, expires, err := s.PresignDownload(context.Background(), "pod/o1/photo.jpg")
	require.NoError(t, err)
	assert.Contains(t, link, "/zambezi-media/pod/o1/photo.jpg")
	assert.Contains(t, link, "X-Amz-Expires=600")
	assert.True(t, expires.After(time.Now()))
}

func TestS3Storage_DeleteRequiresKey(t *testing.T) {
	s := newTestStorage(t, testConfig())
	assert.Error(t, s.Delete(context.Background(), ""))
}
