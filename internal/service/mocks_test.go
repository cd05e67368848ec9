package service

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/stretchr/testify/mock"

	"ctfboard/internal/auth"
	"ctfboard/internal/model"
)

// MockGeneratedRepository is a mock implementation of GeneratedRepository.
type MockGeneratedRepository struct {
	mock.Mock
}

func (m *MockGeneratedRepository) List(ctx context.Context) ([]model.GeneratedChallenge, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GeneratedChallenge), args.Error(1)
}

func (m *MockGeneratedRepository) Find(ctx context.Context, id string) (*model.GeneratedChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GeneratedChallenge), args.Error(1)
}

func (m *MockGeneratedRepository) ReadFlag(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockGeneratedRepository) FilePath(ctx context.Context, id, name string) (string, error) {
	args := m.Called(ctx, id, name)
	return args.String(0), args.Error(1)
}

// MockCustomChallengeRepository is a mock implementation of CustomChallengeRepository.
type MockCustomChallengeRepository struct {
	mock.Mock
}

func (m *MockCustomChallengeRepository) CreateWithFiles(ctx context.Context, challenge *model.CustomChallenge, files []model.ChallengeFile) error {
	args := m.Called(ctx, challenge, files)
	return args.Error(0)
}

func (m *MockCustomChallengeRepository) FindByID(ctx context.Context, id string) (*model.CustomChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomChallenge), args.Error(1)
}

func (m *MockCustomChallengeRepository) FindByIDWithFiles(ctx context.Context, id string) (*model.CustomChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomChallenge), args.Error(1)
}

func (m *MockCustomChallengeRepository) List(ctx context.Context, status *model.ChallengeStatus) ([]model.CustomChallenge, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CustomChallenge), args.Error(1)
}

func (m *MockCustomChallengeRepository) UpdateReview(ctx context.Context, id string, status model.ChallengeStatus, reviewer, notes string, at time.Time) error {
	args := m.Called(ctx, id, status, reviewer, notes, at)
	return args.Error(0)
}

// MockChallengeFileRepository is a mock implementation of ChallengeFileRepository.
type MockChallengeFileRepository struct {
	mock.Mock
}

func (m *MockChallengeFileRepository) FindByStoredName(ctx context.Context, challengeID, storedFilename string) (*model.ChallengeFile, error) {
	args := m.Called(ctx, challengeID, storedFilename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChallengeFile), args.Error(1)
}

// MockUserRoleRepository is a mock implementation of UserRoleRepository.
type MockUserRoleRepository struct {
	mock.Mock
}

func (m *MockUserRoleRepository) Upsert(ctx context.Context, username string, role model.Role) error {
	args := m.Called(ctx, username, role)
	return args.Error(0)
}

// MockUploadStore is a mock implementation of UploadStore.
type MockUploadStore struct {
	mock.Mock
}

func (m *MockUploadStore) Save(header *multipart.FileHeader) (*model.ChallengeFile, error) {
	args := m.Called(header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChallengeFile), args.Error(1)
}

func (m *MockUploadStore) Remove(file model.ChallengeFile) error {
	args := m.Called(file)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of SessionStore.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *auth.Session, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) MarkSolved(ctx context.Context, id, key string) error {
	args := m.Called(ctx, id, key)
	return args.Error(0)
}

func (m *MockSessionStore) AddFlash(ctx context.Context, id string, flash auth.Flash) error {
	args := m.Called(ctx, id, flash)
	return args.Error(0)
}

func (m *MockSessionStore) PopFlashes(ctx context.Context, id string) ([]auth.Flash, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auth.Flash), args.Error(1)
}
