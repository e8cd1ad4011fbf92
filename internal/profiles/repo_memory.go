package profiles

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"classify-backend/internal/recommend"
)

// MemoryRepo stores profiles in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Profile
	now    func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[int64]Profile),
		now:  time.Now,
	}
}

// Create stores a new profile with empty recommendations.
func (r *MemoryRepo) Create(ctx context.Context, in NewProfile) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if utf8.RuneCountInString(in.PersonalityType) > MaxPersonalityTypeLen {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, errPersonalityTooLong)
	}
	in = in.normalized()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p := Profile{
		ID:                r.nextID,
		CreatedAt:         r.now().UTC(),
		Subjects:          in.Subjects,
		Grades:            in.Grades,
		FavoriteSubjects:  in.FavoriteSubjects,
		Hobbies:           in.Hobbies,
		Interests:         in.Interests,
		PersonalityType:   in.PersonalityType,
		PersonalityScores: in.PersonalityScores,
		Recommendations:   []recommend.Recommendation{},
	}
	stored := p.clone()
	r.byID[p.ID] = stored
	return stored.clone(), nil
}

// AttachRecommendations replaces the recommendations of an existing profile.
func (r *MemoryRepo) AttachRecommendations(ctx context.Context, id int64, recs []recommend.Recommendation) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p.Recommendations = cloneRecommendations(recs)
	r.byID[id] = p
	return p.clone(), nil
}

// GetByID returns a profile by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p.clone(), nil
}

// List returns all profiles ordered by created_at then id, newest first.
func (r *MemoryRepo) List(ctx context.Context) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	r.mu.RLock()
	out := make([]Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
