package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"ctfboard/internal/auth"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

// FlagService checks submitted flags and records solves.
type FlagService interface {
	// CheckFlag compares submitted with the canonical flag of ref.
	// Custom challenges only match once approved.
	CheckFlag(ctx context.Context, ref model.ChallengeRef, submitted string) (bool, error)
	// Submit checks the flag and, on a match, adds ref to the session's solved set
	// before returning true.
	Submit(ctx context.Context, sessionID string, ref model.ChallengeRef, submitted string) (bool, error)
}

type flagService struct {
	generated repository.GeneratedRepository
	custom    repository.CustomChallengeRepository
	sessions  auth.SessionStore
}

// NewFlagService creates a new flag service.
func NewFlagService(generated repository.GeneratedRepository, custom repository.CustomChallengeRepository, sessions auth.SessionStore) FlagService {
	return &flagService{
		generated: generated,
		custom:    custom,
		sessions:  sessions,
	}
}

func (s *flagService) CheckFlag(ctx context.Context, ref model.ChallengeRef, submitted string) (bool, error) {
	var canonical string

	switch ref.Kind {
	case model.KindGenerated:
		flag, err := s.generated.ReadFlag(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("read flag: %w", err)
		}
		canonical = flag
	case model.KindCustom:
		challenge, err := s.custom.FindByID(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("find custom challenge: %w", err)
		}
		if !challenge.IsApproved() {
			return false, nil
		}
		canonical = challenge.Flag
	default:
		return false, nil
	}

	return strings.TrimSpace(submitted) == strings.TrimSpace(canonical), nil
}

func (s *flagService) Submit(ctx context.Context, sessionID string, ref model.ChallengeRef, submitted string) (bool, error) {
	ok, err := s.CheckFlag(ctx, ref, submitted)
	if err != nil || !ok {
		return false, err
	}
	if err := s.sessions.MarkSolved(ctx, sessionID, ref.SolvedKey()); err != nil {
		return false, fmt.Errorf("record solve: %w", err)
	}
	slog.InfoContext(ctx, "challenge solved", "challenge", ref.String())
	return true, nil
}
