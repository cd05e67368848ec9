package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

func TestFlagService_CheckFlag(t *testing.T) {
	tests := []struct {
		name      string
		ref       model.ChallengeRef
		submitted string
		setupMock func(*MockGeneratedRepository, *MockCustomChallengeRepository)
		expected  bool
		wantErr   bool
	}{
		{
			name:      "generated exact match",
			ref:       model.GeneratedRef("web_trivial"),
			submitted: "CTF{abc}",
			setupMock: func(g *MockGeneratedRepository, _ *MockCustomChallengeRepository) {
				g.On("ReadFlag", mock.Anything, "web_trivial").Return("CTF{abc}\n", nil)
			},
			expected: true,
		},
		{
			name:      "generated surrounding whitespace ignored",
			ref:       model.GeneratedRef("web_trivial"),
			submitted: "  CTF{abc}\t",
			setupMock: func(g *MockGeneratedRepository, _ *MockCustomChallengeRepository) {
				g.On("ReadFlag", mock.Anything, "web_trivial").Return("CTF{abc}", nil)
			},
			expected: true,
		},
		{
			name:      "generated case matters",
			ref:       model.GeneratedRef("web_trivial"),
			submitted: "ctf{abc}",
			setupMock: func(g *MockGeneratedRepository, _ *MockCustomChallengeRepository) {
				g.On("ReadFlag", mock.Anything, "web_trivial").Return("CTF{abc}", nil)
			},
		},
		{
			name:      "generated without flag file",
			ref:       model.GeneratedRef("broken"),
			submitted: "",
			setupMock: func(g *MockGeneratedRepository, _ *MockCustomChallengeRepository) {
				g.On("ReadFlag", mock.Anything, "broken").Return("", repository.ErrNotExist)
			},
		},
		{
			name:      "generated read failure",
			ref:       model.GeneratedRef("web_trivial"),
			submitted: "CTF{abc}",
			setupMock: func(g *MockGeneratedRepository, _ *MockCustomChallengeRepository) {
				g.On("ReadFlag", mock.Anything, "web_trivial").Return("", errors.New("permission denied"))
			},
			wantErr: true,
		},
		{
			name:      "approved custom match",
			ref:       model.CustomRef("c1"),
			submitted: "FLAG{x}",
			setupMock: func(_ *MockGeneratedRepository, c *MockCustomChallengeRepository) {
				c.On("FindByID", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Flag: "FLAG{x}", Status: model.ChallengeStatusApproved}, nil)
			},
			expected: true,
		},
		{
			name:      "pending custom never matches",
			ref:       model.CustomRef("c1"),
			submitted: "FLAG{x}",
			setupMock: func(_ *MockGeneratedRepository, c *MockCustomChallengeRepository) {
				c.On("FindByID", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Flag: "FLAG{x}", Status: model.ChallengeStatusPending}, nil)
			},
		},
		{
			name:      "rejected custom never matches",
			ref:       model.CustomRef("c1"),
			submitted: "FLAG{x}",
			setupMock: func(_ *MockGeneratedRepository, c *MockCustomChallengeRepository) {
				c.On("FindByID", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Flag: "FLAG{x}", Status: model.ChallengeStatusRejected}, nil)
			},
		},
		{
			name:      "unknown custom",
			ref:       model.CustomRef("nope"),
			submitted: "FLAG{x}",
			setupMock: func(_ *MockGeneratedRepository, c *MockCustomChallengeRepository) {
				c.On("FindByID", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGeneratedRepository)
			custom := new(MockCustomChallengeRepository)
			tt.setupMock(gen, custom)

			svc := NewFlagService(gen, custom, new(MockSessionStore))
			ok, err := svc.CheckFlag(context.Background(), tt.ref, tt.submitted)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, ok)
			gen.AssertExpectations(t)
			custom.AssertExpectations(t)
		})
	}
}

func TestFlagService_Submit(t *testing.T) {
	t.Run("correct flag is recorded under the solved key", func(t *testing.T) {
		custom := new(MockCustomChallengeRepository)
		custom.On("FindByID", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Flag: "FLAG{x}", Status: model.ChallengeStatusApproved}, nil)
		sessions := new(MockSessionStore)
		sessions.On("MarkSolved", mock.Anything, "sess-1", "custom_c1").Return(nil)

		svc := NewFlagService(new(MockGeneratedRepository), custom, sessions)
		ok, err := svc.Submit(context.Background(), "sess-1", model.CustomRef("c1"), "FLAG{x}")

		require.NoError(t, err)
		assert.True(t, ok)
		sessions.AssertExpectations(t)
	})

	t.Run("wrong flag records nothing", func(t *testing.T) {
		gen := new(MockGeneratedRepository)
		gen.On("ReadFlag", mock.Anything, "web_trivial").Return("CTF{abc}", nil)
		sessions := new(MockSessionStore)

		svc := NewFlagService(gen, new(MockCustomChallengeRepository), sessions)
		ok, err := svc.Submit(context.Background(), "sess-1", model.GeneratedRef("web_trivial"), "CTF{nope}")

		require.NoError(t, err)
		assert.False(t, ok)
		sessions.AssertNotCalled(t, "MarkSolved", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is not acknowledged", func(t *testing.T) {
		gen := new(MockGeneratedRepository)
		gen.On("ReadFlag", mock.Anything, "web_trivial").Return("CTF{abc}", nil)
		sessions := new(MockSessionStore)
		sessions.On("MarkSolved", mock.Anything, "sess-1", "web_trivial").Return(errors.New("redis down"))

		svc := NewFlagService(gen, new(MockCustomChallengeRepository), sessions)
		ok, err := svc.Submit(context.Background(), "sess-1", model.GeneratedRef("web_trivial"), "CTF{abc}")

		assert.Error(t, err)
		assert.False(t, ok)
	})
}
