package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zambezimeats/backend/internal/domain/catalog"
	"github.com/zambezimeats/backend/internal/domain/shared"
	"github.com/zambezimeats/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// ObjectStorage is the part of the object store the catalog needs.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.PresignedUpload, error)
	PublicURL(key string) string
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// imageExtensions is the upload whitelist. SVG is excluded as it can carry script.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageService manages product galleries stored in object storage. Clients
// upload straight to the bucket with a presigned URL and then attach the key.
type ImageService struct {
	productRepo catalog.ProductRepository
	storage     ObjectStorage
	logger      *zap.Logger
}

// NewImageService creates a new ImageService
func NewImageService(productRepo catalog.ProductRepository, storage ObjectStorage, logger *zap.Logger) *ImageService {
	return &ImageService{
		productRepo: productRepo,
		storage:     storage,
		logger:      logger,
	}
}

// RequestUpload returns a presigned PUT URL under the product's key prefix.
func (s *ImageService) RequestUpload(ctx context.Context, productID uuid.UUID, req ImageUploadRequest) (*ImageUploadResponse, error) {
	ext, ok := imageExtensions[strings.ToLower(req.ContentType)]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Only JPEG, PNG and WebP images are accepted")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(product.Images) >= catalog.MaxProductImages {
		return nil, shared.NewDomainError("TOO_MANY_IMAGES", "A product can have at most 8 images")
	}

	key := imageKey(productID, req.Filename, ext)
	upload, err := s.storage.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		return nil, err
	}
	return &ImageUploadResponse{
		UploadURL:  upload.URL,
		Method:     upload.Method,
		Headers:    upload.Headers,
		StorageKey: upload.Key,
		ExpiresAt:  upload.ExpiresAt,
	}, nil
}

// Attach adds an uploaded object to the gallery.
func (s *ImageService) Attach(ctx context.Context, productID uuid.UUID, req AttachImageRequest) (*ProductResponse, error) {
	if !strings.HasPrefix(req.StorageKey, imagePrefix(productID)) {
		return nil, shared.NewDomainError("INVALID_IMAGE", "Storage key does not belong to this product")
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, img := range product.Images {
		if img.StorageKey == req.StorageKey {
			return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Image is already attached")
		}
	}
	exists, err := s.storage.Exists(ctx, req.StorageKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("IMAGE_NOT_UPLOADED", "No uploaded file was found for this storage key")
	}

	if _, err := product.AddImage(req.StorageKey, s.storage.PublicURL(req.StorageKey), req.AltText, req.IsPrimary); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, nil)
	return &resp, nil
}

// Remove detaches an image and deletes its object. A failed object delete
// is logged; the gallery change stands.
func (s *ImageService) Remove(ctx context.Context, productID, imageID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	removed, err := product.RemoveImage(imageID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := s.storage.Delete(ctx, removed.StorageKey); err != nil {
		s.logger.Warn("Failed to delete product image object",
			zap.String("product_id", productID.String()),
			zap.String("storage_key", removed.StorageKey),
			zap.Error(err))
	}
	resp := ToProductResponse(product, nil)
	return &resp, nil
}

func imagePrefix(productID uuid.UUID) string {
	return "products/" + productID.String() + "/"
}

func imageKey(productID uuid.UUID, filename, ext string) string {
	base := catalog.Slugify(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
	if base == "" {
		base = "image"
	}
	if len(base) > 60 {
		base = strings.TrimRight(base[:60], "-")
	}
	return fmt.Sprintf("%s%s-%s%s", imagePrefix(productID), uuid.NewString()[:8], base, ext)
}
