package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"ctfboard/internal/cache"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

// ReviewAction is an admin decision on a custom challenge.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// ParseReviewAction validates an action name.
func ParseReviewAction(s string) (ReviewAction, error) {
	switch ReviewAction(strings.ToLower(strings.TrimSpace(s))) {
	case ReviewApprove:
		return ReviewApprove, nil
	case ReviewReject:
		return ReviewReject, nil
	}
	return "", apperrors.NewValidationError("Invalid action")
}

// Status is the state a challenge ends in after the action.
func (a ReviewAction) Status() model.ChallengeStatus {
	if a == ReviewApprove {
		return model.ChallengeStatusApproved
	}
	return model.ChallengeStatusRejected
}

// ReviewQueue is what the review page lists. All is restricted to Filter when one is set.
type ReviewQueue struct {
	Pending []model.CustomChallenge
	All     []model.CustomChallenge
	Filter  model.ChallengeStatus
}

// ParseStatusFilter reads the optional status filter of the review page.
// An empty string means no filter.
func ParseStatusFilter(s string) (*model.ChallengeStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, nil
	}
	status := model.ChallengeStatus(s)
	if !status.Valid() {
		return nil, apperrors.NewValidationError("Invalid status filter")
	}
	return &status, nil
}

// ReviewService moves custom challenges out of pending. Admin only.
type ReviewService interface {
	Review(ctx context.Context, actor model.Identity, id string, action ReviewAction, notes string) (*model.CustomChallenge, error)
	// Queue lists pending challenges plus every challenge, or only those with status filter.
	Queue(ctx context.Context, actor model.Identity, filter *model.ChallengeStatus) (*ReviewQueue, error)
}

type reviewService struct {
	repo  repository.CustomChallengeRepository
	cache *cache.Client
	now   func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.CustomChallengeRepository, cache *cache.Client) ReviewService {
	return &reviewService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// Review applies action to the challenge. Reviewing again overwrites the previous decision.
func (s *reviewService) Review(ctx context.Context, actor model.Identity, id string, action ReviewAction, notes string) (*model.CustomChallenge, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrNotAuthorized
	}
	if action != ReviewApprove && action != ReviewReject {
		return nil, apperrors.NewValidationError("Invalid action")
	}

	err := s.repo.UpdateReview(ctx, id, action.Status(), actor.Username, strings.TrimSpace(notes), s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	_ = s.cache.Delete(ctx, customCacheKey(id))

	slog.InfoContext(ctx, "custom challenge reviewed", "challenge_id", id, "action", string(action), "reviewer", actor.Username)

	challenge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload challenge: %w", err)
	}
	return challenge, nil
}

func (s *reviewService) Queue(ctx context.Context, actor model.Identity, filter *model.ChallengeStatus) (*ReviewQueue, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrNotAuthorized
	}
	if filter != nil && !filter.Valid() {
		return nil, apperrors.NewValidationError("Invalid status filter")
	}
	pending := model.ChallengeStatusPending
	pendingList, err := s.repo.List(ctx, &pending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	all, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	queue := &ReviewQueue{Pending: pendingList, All: all}
	if filter != nil {
		queue.Filter = *filter
	}
	return queue, nil
}
