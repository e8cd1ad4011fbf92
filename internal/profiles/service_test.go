package profiles

import (
	"context"
	"errors"
	"testing"

	"classify-backend/internal/llm"
	"classify-backend/internal/recommend"
)

type stubGenerator struct {
	result recommend.Result
	err    error
	calls  int
	last   recommend.Input
}

func (s *stubGenerator) Generate(ctx context.Context, in recommend.Input) (recommend.Result, error) {
	s.calls++
	s.last = in
	return s.result, s.err
}

func TestClassifyAttachesRecommendations(t *testing.T) {
	repo := NewMemoryRepo()
	gen := &stubGenerator{result: recommend.Result{Recommendations: []recommend.Recommendation{
		{Name: "Physics", CareerPaths: recommend.CareerPaths{"Physicist"}},
	}}}
	svc := &Service{Repo: repo, Generator: gen, Configured: true}

	out, err := svc.Classify(context.Background(), sampleNewProfile())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if out.Degraded {
		t.Fatalf("expected non-degraded classification")
	}
	if len(out.Profile.Recommendations) != 1 || out.Profile.Recommendations[0].Name != "Physics" {
		t.Fatalf("unexpected recommendations: %+v", out.Profile.Recommendations)
	}
	if gen.last.PersonalityType != "INTJ" || len(gen.last.Subjects) != 2 {
		t.Fatalf("generator received unexpected input: %+v", gen.last)
	}

	stored, err := repo.GetByID(context.Background(), out.Profile.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Recommendations) != 1 {
		t.Fatalf("expected recommendations persisted, got %+v", stored.Recommendations)
	}
}

func TestClassifyReportsDegradedGeneration(t *testing.T) {
	gen := &stubGenerator{result: recommend.Result{
		Recommendations: recommend.Fallback(),
		Degraded:        true,
		Reason:          recommend.ReasonTimeout,
	}}
	svc := &Service{Repo: NewMemoryRepo(), Generator: gen, Configured: true}

	out, err := svc.Classify(context.Background(), sampleNewProfile())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !out.Degraded || out.Reason != recommend.ReasonTimeout {
		t.Fatalf("expected degraded timeout, got %+v", out)
	}
	if out.Profile.Recommendations[0].Name != "General Studies" {
		t.Fatalf("expected fallback stored, got %+v", out.Profile.Recommendations)
	}
}

func TestClassifyNotConfiguredPersistsNothing(t *testing.T) {
	repo := NewMemoryRepo()
	gen := &stubGenerator{}
	svc := &Service{Repo: repo, Generator: gen, Configured: false}

	_, err := svc.Classify(context.Background(), sampleNewProfile())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected generator not to be called")
	}
	list, _ := repo.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("expected no profile persisted, got %d", len(list))
	}
}

func TestClassifyGenerationErrorLeavesEmptyProfile(t *testing.T) {
	repo := NewMemoryRepo()
	gen := &stubGenerator{err: errors.New("render prompt: broken template")}
	svc := &Service{Repo: repo, Generator: gen, Configured: true}

	_, err := svc.Classify(context.Background(), sampleNewProfile())
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	list, _ := repo.List(context.Background())
	if len(list) != 1 || len(list[0].Recommendations) != 0 {
		t.Fatalf("expected one profile with empty recommendations, got %+v", list)
	}
}

func TestClassifyPersistenceError(t *testing.T) {
	gen := &stubGenerator{}
	svc := &Service{Repo: NewMemoryRepo(), Generator: gen, Configured: true}
	in := sampleNewProfile()
	in.PersonalityType = "ABCDE"

	_, err := svc.Classify(context.Background(), in)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("expected generator not to run after a failed create")
	}
}

func TestClassifyCanceledMidGenerationStoresFallback(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer := llm.CompleterFunc(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
		cancel()
		return "", context.Canceled
	})
	svc := &Service{
		Repo:       repo,
		Generator:  recommend.NewGenerator(completer, recommend.DefaultOptions()),
		Configured: true,
	}

	out, err := svc.Classify(ctx, sampleNewProfile())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !out.Degraded || out.Reason != recommend.ReasonCanceled {
		t.Fatalf("expected degraded canceled classification, got %+v", out)
	}

	stored, err := repo.GetByID(context.Background(), out.Profile.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Recommendations) != 1 || stored.Recommendations[0].Name != "General Studies" {
		t.Fatalf("expected fallback attached, got %+v", stored.Recommendations)
	}
}

func TestClassifyAttachSurvivesRequestCancel(t *testing.T) {
	repo := NewMemoryRepo()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completer := llm.CompleterFunc(func(workCtx context.Context, req llm.CompletionRequest) (string, error) {
		cancel()
		if err := workCtx.Err(); err != nil {
			t.Errorf("generation context canceled with the request: %v", err)
		}
		return `[{"name":"Robotics","description":"d","fit_reason":"f","career_paths":["Engineer"]}]`, nil
	})
	svc := &Service{
		Repo:       repo,
		Generator:  recommend.NewGenerator(completer, recommend.DefaultOptions()),
		Configured: true,
	}

	out, err := svc.Classify(ctx, sampleNewProfile())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if out.Degraded {
		t.Fatalf("expected model reply to be used, got %+v", out)
	}
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || len(list[0].Recommendations) != 1 || list[0].Recommendations[0].Name != "Robotics" {
		t.Fatalf("expected recommendations attached after cancel, got %+v", list)
	}
}
