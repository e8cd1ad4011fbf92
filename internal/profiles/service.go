package profiles

import (
	"context"
	"fmt"
	"time"

	"classify-backend/internal/recommend"
	"classify-backend/internal/shared/metrics"
	"classify-backend/internal/shared/telemetry"
)

// Generator produces recommendations for a profile snapshot.
type Generator interface {
	Generate(ctx context.Context, in recommend.Input) (recommend.Result, error)
}

// Service contains business logic for profiles.
type Service struct {
	Repo      Repo
	Generator Generator
	// Configured reports whether the recommendation provider has a credential.
	Configured bool
	// WorkTimeout bounds generation and attach once the profile is stored. Zero uses defaultWorkTimeout.
	WorkTimeout time.Duration
}

const defaultWorkTimeout = 2 * time.Minute

// Classification is the outcome of a successful Classify call.
type Classification struct {
	Profile  Profile
	Degraded bool
	Reason   string
}

// Classify persists the profile, generates recommendations and attaches them.
// The provider credential is checked before anything is stored.
// Once the profile exists, generation and attach run detached from ctx cancellation,
// so a client hang-up or server shutdown still leaves the profile with recommendations.
func (s *Service) Classify(ctx context.Context, in NewProfile) (Classification, error) {
	if !s.Configured || s.Generator == nil {
		return Classification{}, ErrNotConfigured
	}

	profile, err := s.Repo.Create(ctx, in)
	if err != nil {
		return Classification{}, err
	}
	metrics.IncProfileCreated()
	telemetry.Info("profile.created", map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"profile_id": profile.ID,
	})

	timeout := s.WorkTimeout
	if timeout <= 0 {
		timeout = defaultWorkTimeout
	}
	workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	result, err := s.Generator.Generate(workCtx, in.Input())
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	profile, err = s.Repo.AttachRecommendations(workCtx, profile.ID, result.Recommendations)
	if err != nil {
		return Classification{}, err
	}
	return Classification{
		Profile:  profile,
		Degraded: result.Degraded,
		Reason:   result.Reason,
	}, nil
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id int64) (Profile, error) {
	return s.Repo.GetByID(ctx, id)
}

// List returns all profiles, newest first.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.Repo.List(ctx)
}
