package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

// CreateCustomInput is the form a user fills in to submit a challenge.
type CreateCustomInput struct {
	Title       string `form:"title" validate:"required,max=255"`
	Description string `form:"description" validate:"required"`
	Category    string `form:"category" validate:"required,max=64"`
	Flag        string `form:"flag" validate:"required,max=255"`
}

// SubmissionService accepts user authored challenges into the review queue.
type SubmissionService interface {
	CreateCustom(ctx context.Context, author model.Identity, input CreateCustomInput, files []*multipart.FileHeader) (*model.CustomChallenge, error)
}

type submissionService struct {
	repo     repository.CustomChallengeRepository
	uploads  repository.UploadStore
	validate *validator.Validate
}

// NewSubmissionService creates a new submission service.
func NewSubmissionService(repo repository.CustomChallengeRepository, uploads repository.UploadStore) SubmissionService {
	return &submissionService{
		repo:     repo,
		uploads:  uploads,
		validate: validator.New(),
	}
}

// CreateCustom stores the uploads and inserts the challenge as pending.
// Nothing is written when validation fails, and stored files are removed again if the insert fails.
func (s *submissionService) CreateCustom(ctx context.Context, author model.Identity, input CreateCustomInput, files []*multipart.FileHeader) (*model.CustomChallenge, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.TrimSpace(input.Category)
	input.Flag = strings.TrimSpace(input.Flag)

	if err := s.validate.Struct(input); err != nil {
		return nil, toValidationError(err)
	}

	var saved []model.ChallengeFile
	cleanup := func() {
		for _, f := range saved {
			if err := s.uploads.Remove(f); err != nil {
				slog.WarnContext(ctx, "failed to remove stored upload", "path", f.StoredPath, "error", err)
			}
		}
	}

	for _, header := range files {
		if header == nil || header.Filename == "" {
			continue
		}
		file, err := s.uploads.Save(header)
		if err != nil {
			cleanup()
			if errors.Is(err, repository.ErrFileTooLarge) {
				return nil, apperrors.ErrUploadTooLarge
			}
			return nil, fmt.Errorf("save upload: %w", err)
		}
		saved = append(saved, *file)
	}

	challenge := &model.CustomChallenge{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Flag:        input.Flag,
		Author:      author.Username,
		Status:      model.ChallengeStatusPending,
	}
	if err := s.repo.CreateWithFiles(ctx, challenge, saved); err != nil {
		cleanup()
		return nil, fmt.Errorf("create custom challenge: %w", err)
	}

	slog.InfoContext(ctx, "custom challenge submitted", "challenge_id", challenge.ID, "author", author.Username, "files", len(saved))
	return challenge, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("Invalid challenge")
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return apperrors.NewValidationError(fmt.Sprintf("%s is required", fe.Field()))
	}
	return apperrors.NewValidationError(fmt.Sprintf("%s is too long", fe.Field()))
}
