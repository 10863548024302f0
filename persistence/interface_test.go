package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/neonwhisper/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) LoadWords(ctx context.Context) ([]models.WordEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]models.WordEntry)
	return entries, args.Error(1)
}

func (m *mockStore) SeedWords(ctx context.Context, entries []models.WordEntry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

var sample = []models.WordEntry{{Word: "violin", Category: "Instruments", Difficulty: models.DifficultyMedium}}

func TestLoadOrSeed_SeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("Count", ctx).Return(int64(0), nil)
	store.On("SeedWords", ctx, sample).Return(1, nil)
	store.On("LoadWords", ctx).Return(sample, nil)

	entries, err := LoadOrSeed(ctx, store, sample)
	require.NoError(t, err)
	assert.Equal(t, sample, entries)
	store.AssertExpectations(t)
}

func TestLoadOrSeed_ExistingCorpus(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	store.On("Count", ctx).Return(int64(1), nil)
	store.On("LoadWords", ctx).Return(sample, nil)

	entries, err := LoadOrSeed(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(t, sample, entries)
	store.AssertNotCalled(t, "SeedWords", mock.Anything, mock.Anything)
}

func TestLoadOrSeed_Errors(t *testing.T) {
	ctx := context.Background()

	empty := &mockStore{}
	empty.On("Count", ctx).Return(int64(0), nil)
	_, err := LoadOrSeed(ctx, empty, nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	broken := &mockStore{}
	boom := errors.New("connection refused")
	broken.On("Count", ctx).Return(int64(0), boom)
	_, err = LoadOrSeed(ctx, broken, sample)
	assert.ErrorIs(t, err, boom)
}
