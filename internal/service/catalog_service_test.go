package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ctfboard/internal/cache"
	apperrors "ctfboard/internal/errors"
	"ctfboard/internal/model"
	"ctfboard/internal/repository"
)

func statusIs(want model.ChallengeStatus) interface{} {
	return mock.MatchedBy(func(s *model.ChallengeStatus) bool { return s != nil && *s == want })
}

func newTestCache(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.New(client)
}

func TestCatalogService_ListGenerated(t *testing.T) {
	long := strings.Repeat("é", 250)

	gen := new(MockGeneratedRepository)
	gen.On("List", mock.Anything).Return([]model.GeneratedChallenge{
		{ID: "crypto_basic", Name: "Crypto Basic", Description: long, HasReadme: true},
		{ID: "no_readme", Name: "No Readme"},
		{ID: "web_trivial", Name: "Web Trivial", Description: "Find the flag.", HasReadme: true},
	}, nil)

	svc := NewCatalogService(gen, new(MockCustomChallengeRepository), nil)
	list, err := svc.ListGenerated(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, 203, utf8.RuneCountInString(list[0].Description))
	assert.True(t, strings.HasSuffix(list[0].Description, "..."))
	assert.Equal(t, NoDescription, list[1].Description)
	assert.Equal(t, "Find the flag....", list[2].Description)
	gen.AssertExpectations(t)
}

func TestCatalogService_GetGenerated(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockGeneratedRepository)
		expectedErr error
		description string
	}{
		{
			name: "full readme",
			setupMock: func(m *MockGeneratedRepository) {
				m.On("Find", mock.Anything, "web_trivial").Return(&model.GeneratedChallenge{
					ID: "web_trivial", Description: strings.Repeat("x", 300), HasReadme: true,
				}, nil)
			},
			description: strings.Repeat("x", 300),
		},
		{
			name: "missing readme",
			setupMock: func(m *MockGeneratedRepository) {
				m.On("Find", mock.Anything, "web_trivial").Return(&model.GeneratedChallenge{ID: "web_trivial"}, nil)
			},
			description: NoDescription,
		},
		{
			name: "unknown id",
			setupMock: func(m *MockGeneratedRepository) {
				m.On("Find", mock.Anything, "web_trivial").Return(nil, repository.ErrNotExist)
			},
			expectedErr: apperrors.ErrChallengeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGeneratedRepository)
			tt.setupMock(gen)

			svc := NewCatalogService(gen, new(MockCustomChallengeRepository), nil)
			ch, err := svc.GetGenerated(context.Background(), "web_trivial")

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, ch)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.description, ch.Description)
			}
			gen.AssertExpectations(t)
		})
	}
}

func TestCatalogService_GetApprovedCustom(t *testing.T) {
	t.Run("pending and rejected are hidden", func(t *testing.T) {
		for _, status := range []model.ChallengeStatus{model.ChallengeStatusPending, model.ChallengeStatusRejected} {
			custom := new(MockCustomChallengeRepository)
			custom.On("FindByIDWithFiles", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Status: status}, nil)

			svc := NewCatalogService(new(MockGeneratedRepository), custom, nil)
			ch, err := svc.GetApprovedCustom(context.Background(), "c1")

			assert.ErrorIs(t, err, apperrors.ErrChallengeNotFound, string(status))
			assert.Nil(t, ch)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		custom := new(MockCustomChallengeRepository)
		custom.On("FindByIDWithFiles", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

		svc := NewCatalogService(new(MockGeneratedRepository), custom, nil)
		_, err := svc.GetApprovedCustom(context.Background(), "missing")
		assert.ErrorIs(t, err, apperrors.ErrChallengeNotFound)
	})

	t.Run("approved is cached", func(t *testing.T) {
		custom := new(MockCustomChallengeRepository)
		custom.On("FindByIDWithFiles", mock.Anything, "c1").Return(&model.CustomChallenge{
			ID: "c1", Title: "Stego 101", Status: model.ChallengeStatusApproved, Flag: "CTF{x}",
		}, nil).Once()
		custom.On("FindByID", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Status: model.ChallengeStatusApproved}, nil).Once()

		svc := NewCatalogService(new(MockGeneratedRepository), custom, newTestCache(t))

		first, err := svc.GetApprovedCustom(context.Background(), "c1")
		require.NoError(t, err)
		second, err := svc.GetApprovedCustom(context.Background(), "c1")
		require.NoError(t, err)

		assert.Equal(t, "Stego 101", first.Title)
		assert.Equal(t, "Stego 101", second.Title)
		assert.Empty(t, second.Flag)
		custom.AssertExpectations(t)
	})

	t.Run("stale cache entry after rejection is ignored", func(t *testing.T) {
		ctx := context.Background()
		c := newTestCache(t)
		stale, err := json.Marshal(model.CustomChallenge{ID: "c1", Title: "Stego 101", Status: model.ChallengeStatusApproved})
		require.NoError(t, err)
		require.NoError(t, c.Set(ctx, customCacheKey("c1"), stale, customCacheTTL))

		custom := new(MockCustomChallengeRepository)
		custom.On("FindByID", mock.Anything, "c1").Return(&model.CustomChallenge{ID: "c1", Status: model.ChallengeStatusRejected}, nil)

		svc := NewCatalogService(new(MockGeneratedRepository), custom, c)
		ch, err := svc.GetApprovedCustom(ctx, "c1")

		assert.ErrorIs(t, err, apperrors.ErrChallengeNotFound)
		assert.Nil(t, ch)
		data, _ := c.Get(ctx, customCacheKey("c1"))
		assert.Nil(t, data)
		custom.AssertNotCalled(t, "FindByIDWithFiles", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_Dashboard(t *testing.T) {
	gen := new(MockGeneratedRepository)
	gen.On("List", mock.Anything).Return([]model.GeneratedChallenge{
		{ID: "crypto_basic", HasReadme: true, Description: "rot"},
		{ID: "web_trivial", HasReadme: true, Description: "web"},
	}, nil)
	custom := new(MockCustomChallengeRepository)
	custom.On("List", mock.Anything, statusIs(model.ChallengeStatusApproved)).Return([]model.CustomChallenge{
		{ID: "c1", Status: model.ChallengeStatusApproved},
		{ID: "c2", Status: model.ChallengeStatusApproved},
	}, nil)

	svc := NewCatalogService(gen, custom, nil)

	tests := []struct {
		name   string
		solved map[string]bool
		tab    string
		count  int
		tabOut string
	}{
		{"fresh session", map[string]bool{}, "", 0, TabGenerated},
		{"one generated", map[string]bool{"web_trivial": true}, "generated", 1, TabGenerated},
		{"mixed catalogs", map[string]bool{"web_trivial": true, "custom_c2": true}, "custom", 2, TabCustom},
		{"custom key does not collide with generated id", map[string]bool{"c1": true}, "bogus", 0, TabGenerated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := svc.Dashboard(context.Background(), tt.solved, tt.tab)
			require.NoError(t, err)

			assert.Equal(t, tt.tabOut, d.Tab)
			assert.Equal(t, tt.count, d.SolvedCount)
			assert.Equal(t, tt.count*PointsPerChallenge, d.TotalScore)
			assert.Len(t, d.Generated, 2)
			assert.Len(t, d.Custom, 2)
		})
	}
}
