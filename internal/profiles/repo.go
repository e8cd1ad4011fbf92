package profiles

import (
	"context"

	"classify-backend/internal/recommend"
)

// Repo defines persistence operations for profiles.
// Create and AttachRecommendations are atomic; failures wrap ErrPersistence.
type Repo interface {
	Create(ctx context.Context, in NewProfile) (Profile, error)
	AttachRecommendations(ctx context.Context, id int64, recs []recommend.Recommendation) (Profile, error)
	GetByID(ctx context.Context, id int64) (Profile, error)
	// List returns every profile, newest first.
	List(ctx context.Context) ([]Profile, error)
}
