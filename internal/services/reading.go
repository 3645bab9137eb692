package services

import (
	"context"

	"github.com/uvify/apiserver/types"
)

// ReadingRepository defines persistence operations for UV readings.
type ReadingRepository interface {
	Create(ctx context.Context, reading types.Reading) (types.Reading, error)
	ListForUser(ctx context.Context, userID int) ([]types.Reading, error)
	ListAll(ctx context.Context, userID *int) ([]types.Reading, error)
	DeleteForUser(ctx context.Context, userID int) (int64, error)
}

// ReadingService encapsulates reading use-cases.
type ReadingService struct {
	repo ReadingRepository
}

func NewReadingService(repo ReadingRepository) *ReadingService {
	return &ReadingService{repo: repo}
}

func (s *ReadingService) Create(ctx context.Context, reading types.Reading) (types.Reading, error) {
	return s.repo.Create(ctx, reading)
}

func (s *ReadingService) ListForUser(ctx context.Context, userID int) ([]types.Reading, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *ReadingService) ListAll(ctx context.Context, userID *int) ([]types.Reading, error) {
	return s.repo.ListAll(ctx, userID)
}

func (s *ReadingService) DeleteForUser(ctx context.Context, userID int) (int64, error) {
	return s.repo.DeleteForUser(ctx, userID)
}
