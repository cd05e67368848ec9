package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"ctfboard/internal/model"
)

// ErrFileTooLarge is returned when an upload exceeds the store's size limit.
var ErrFileTooLarge = errors.New("file too large")

// UploadStore saves uploaded files under randomized names in one directory.
type UploadStore interface {
	Save(header *multipart.FileHeader) (*model.ChallengeFile, error)
	Remove(file model.ChallengeFile) error
}

type uploadStore struct {
	dir     string
	maxSize int64
}

// NewUploadStore creates a store writing into dir, refusing files above maxSize bytes.
func NewUploadStore(dir string, maxSize int64) UploadStore {
	return &uploadStore{dir: dir, maxSize: maxSize}
}

// Save copies the upload to disk and returns an unsaved ChallengeFile describing it.
func (s *uploadStore) Save(header *multipart.FileHeader) (*model.ChallengeFile, error) {
	if header.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	original := filepath.Base(strings.ReplaceAll(header.Filename, `\`, "/"))
	if original == "." || original == "/" {
		original = "upload"
	}
	stored := uuid.New().String() + strings.ToLower(filepath.Ext(original))
	dst := filepath.Join(s.dir, stored)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create stored file: %w", err)
	}

	hasher := sha256.New()
	// read one byte past the limit so oversize bodies are detected even when header.Size lies
	n, err := io.Copy(io.MultiWriter(out, hasher), io.LimitReader(src, s.maxSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > s.maxSize {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dst)
		if errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("write stored file: %w", err)
	}

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(dst); err == nil {
		contentType = mt.String()
	}

	return &model.ChallengeFile{
		StoredFilename:   stored,
		OriginalFilename: original,
		StoredPath:       dst,
		ContentType:      contentType,
		Size:             n,
		SHA256:           hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *uploadStore) Remove(file model.ChallengeFile) error {
	if err := os.Remove(file.StoredPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
