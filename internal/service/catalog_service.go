package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ctfboard/internal/cache"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

const (
	// PointsPerChallenge is the score every solved challenge is worth.
	PointsPerChallenge = 100
	// NoDescription replaces a missing README.
	NoDescription = "No description available"

	descriptionPreviewLen = 200
	customCacheTTL        = 5 * time.Minute
)

// Catalog tabs on the dashboard.
const (
	TabGenerated = "generated"
	TabCustom    = "custom"
)

// GeneratedEntry is a generated challenge as shown to one identity.
type GeneratedEntry struct {
	model.GeneratedChallenge
	Solved bool
}

// CustomEntry is an approved custom challenge as shown to one identity.
type CustomEntry struct {
	model.CustomChallenge
	Solved bool
}

// Dashboard is everything the index page shows.
type Dashboard struct {
	Tab         string
	Generated   []GeneratedEntry
	Custom      []CustomEntry
	SolvedCount int
	TotalScore  int
}

// CatalogService enumerates challenges of both kinds.
type CatalogService interface {
	// ListGenerated returns every generated challenge with a shortened description.
	ListGenerated(ctx context.Context) ([]model.GeneratedChallenge, error)
	// GetGenerated returns one generated challenge with its full description and files.
	GetGenerated(ctx context.Context, id string) (*model.GeneratedChallenge, error)
	// ListCustom returns custom challenges newest first, optionally filtered by status.
	ListCustom(ctx context.Context, status *model.ChallengeStatus) ([]model.CustomChallenge, error)
	// GetApprovedCustom returns an approved custom challenge with its files.
	GetApprovedCustom(ctx context.Context, id string) (*model.CustomChallenge, error)
	Dashboard(ctx context.Context, solved map[string]bool, tab string) (*Dashboard, error)
}

type catalogService struct {
	generated repository.GeneratedRepository
	custom    repository.CustomChallengeRepository
	cache     *cache.Client
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(generated repository.GeneratedRepository, custom repository.CustomChallengeRepository, cache *cache.Client) CatalogService {
	return &catalogService{
		generated: generated,
		custom:    custom,
		cache:     cache,
	}
}

func customCacheKey(id string) string {
	return fmt.Sprintf("custom_challenge:%s", id)
}

func (s *catalogService) ListGenerated(ctx context.Context) ([]model.GeneratedChallenge, error) {
	challenges, err := s.generated.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generated challenges: %w", err)
	}
	for i := range challenges {
		challenges[i].Description = previewDescription(challenges[i])
	}
	return challenges, nil
}

func (s *catalogService) GetGenerated(ctx context.Context, id string) (*model.GeneratedChallenge, error) {
	challenge, err := s.generated.Find(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotExist) {
			return nil, apperrors.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("find generated challenge: %w", err)
	}
	if !challenge.HasReadme {
		challenge.Description = NoDescription
	}
	return challenge, nil
}

func (s *catalogService) ListCustom(ctx context.Context, status *model.ChallengeStatus) ([]model.CustomChallenge, error) {
	challenges, err := s.custom.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list custom challenges: %w", err)
	}
	return challenges, nil
}

// GetApprovedCustom retrieves an approved challenge with caching.
// Cached entries hold content and files only; the status is re-read from the database on every hit.
func (s *catalogService) GetApprovedCustom(ctx context.Context, id string) (*model.CustomChallenge, error) {
	if data, _ := s.cache.Get(ctx, customCacheKey(id)); data != nil {
		var cached model.CustomChallenge
		if err := json.Unmarshal(data, &cached); err == nil {
			current, err := s.custom.FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					_ = s.cache.Delete(ctx, customCacheKey(id))
					return nil, apperrors.ErrChallengeNotFound
				}
				return nil, fmt.Errorf("find custom challenge: %w", err)
			}
			if !current.IsApproved() {
				_ = s.cache.Delete(ctx, customCacheKey(id))
				return nil, apperrors.ErrChallengeNotFound
			}
			cached.Status = current.Status
			return &cached, nil
		}
	}

	challenge, err := s.custom.FindByIDWithFiles(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("find custom challenge: %w", err)
	}
	if !challenge.IsApproved() {
		return nil, apperrors.ErrChallengeNotFound
	}

	if payload, err := json.Marshal(challenge); err == nil {
		_ = s.cache.Set(ctx, customCacheKey(id), payload, customCacheTTL)
	}
	return challenge, nil
}

func (s *catalogService) Dashboard(ctx context.Context, solved map[string]bool, tab string) (*Dashboard, error) {
	if tab != TabCustom {
		tab = TabGenerated
	}

	generated, err := s.ListGenerated(ctx)
	if err != nil {
		return nil, err
	}
	approved := model.ChallengeStatusApproved
	custom, err := s.ListCustom(ctx, &approved)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Tab:       tab,
		Generated: make([]GeneratedEntry, 0, len(generated)),
		Custom:    make([]CustomEntry, 0, len(custom)),
	}
	for _, ch := range generated {
		entry := GeneratedEntry{GeneratedChallenge: ch, Solved: solved[model.GeneratedRef(ch.ID).SolvedKey()]}
		if entry.Solved {
			d.SolvedCount++
		}
		d.Generated = append(d.Generated, entry)
	}
	for _, ch := range custom {
		entry := CustomEntry{CustomChallenge: ch, Solved: solved[model.CustomRef(ch.ID).SolvedKey()]}
		if entry.Solved {
			d.SolvedCount++
		}
		d.Custom = append(d.Custom, entry)
	}
	d.TotalScore = d.SolvedCount * PointsPerChallenge
	return d, nil
}

// previewDescription cuts the README to its first 200 characters for list views.
func previewDescription(ch model.GeneratedChallenge) string {
	if !ch.HasReadme {
		return NoDescription
	}
	runes := []rune(ch.Description)
	if len(runes) > descriptionPreviewLen {
		runes = runes[:descriptionPreviewLen]
	}
	return string(runes) + "..."
}
