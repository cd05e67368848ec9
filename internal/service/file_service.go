package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"

	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

// ResolvedFile is a file the gateway agreed to hand out.
type ResolvedFile struct {
	Path        string
	Name        string
	ContentType string
	// Text is true when the file can be shown inline as plain text.
	Text bool
}

// FileService decides which challenge files may be served.
type FileService interface {
	Resolve(ctx context.Context, ref model.ChallengeRef, filename string) (*ResolvedFile, error)
}

type fileService struct {
	generated repository.GeneratedRepository
	custom    repository.CustomChallengeRepository
	files     repository.ChallengeFileRepository
}

// NewFileService creates a new file service.
func NewFileService(generated repository.GeneratedRepository, custom repository.CustomChallengeRepository, files repository.ChallengeFileRepository) FileService {
	return &fileService{
		generated: generated,
		custom:    custom,
		files:     files,
	}
}

// Resolve maps a requested name to a file on disk.
// Generated challenges never serve flag.txt or SOLUTION.md under any spelling.
// Custom challenge files are looked up by stored name and only once the challenge is approved.
func (s *fileService) Resolve(ctx context.Context, ref model.ChallengeRef, filename string) (*ResolvedFile, error) {
	name, ok := baseName(filename)
	if !ok {
		return nil, apperrors.ErrFileNotAccessible
	}

	switch ref.Kind {
	case model.KindGenerated:
		return s.resolveGenerated(ctx, ref.ID, name)
	case model.KindCustom:
		return s.resolveCustom(ctx, ref.ID, name)
	}
	return nil, apperrors.ErrFileNotAccessible
}

func (s *fileService) resolveGenerated(ctx context.Context, id, name string) (*ResolvedFile, error) {
	if repository.IsProtectedFile(name) {
		return nil, apperrors.ErrFileNotAccessible
	}
	p, err := s.generated.FilePath(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotExist) {
			return nil, apperrors.ErrFileNotAccessible
		}
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	resolved := &ResolvedFile{Path: p, Name: name, ContentType: "application/octet-stream"}
	if mt, err := mimetype.DetectFile(p); err == nil {
		resolved.ContentType = mt.String()
		resolved.Text = isText(mt)
	}
	return resolved, nil
}

func (s *fileService) resolveCustom(ctx context.Context, id, stored string) (*ResolvedFile, error) {
	challenge, err := s.custom.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotAccessible
		}
		return nil, fmt.Errorf("find custom challenge: %w", err)
	}
	if !challenge.IsApproved() {
		return nil, apperrors.ErrFileNotAccessible
	}

	file, err := s.files.FindByStoredName(ctx, id, stored)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotAccessible
		}
		return nil, fmt.Errorf("find challenge file: %w", err)
	}

	return &ResolvedFile{
		Path:        file.StoredPath,
		Name:        file.OriginalFilename,
		ContentType: file.ContentType,
		Text:        strings.HasPrefix(file.ContentType, "text/plain"),
	}, nil
}

// baseName strips any directory part from a client supplied file name.
func baseName(filename string) (string, bool) {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", false
	}
	return name, true
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
