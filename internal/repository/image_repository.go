package repository

import (
	"context"

	"github.com/anime-shed/erosion-inspector-go/internal/storage"
)

// URLValidator is the subset of validation the repository needs.
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}

// HTTPImageRepository implements ImageRepository using HTTP storage
type HTTPImageRepository struct {
	fetcher   storage.ImageFetcher
	validator URLValidator
}

// NewHTTPImageRepository creates a new HTTP-based image repository
func NewHTTPImageRepository(fetcher storage.ImageFetcher, validator URLValidator) ImageRepository {
	return &HTTPImageRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

func (r *HTTPImageRepository) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	return r.fetcher.FetchImage(ctx, imageURL)
}

func (r *HTTPImageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
