package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpsertDayState(ctx context.Context, st models.DayState) error {
	return m.Called(ctx, st).Error(0)
}

func (m *RepoMock) GetDayState(ctx context.Context, userUID, programSlug string, day int) (*models.DayState, error) {
	args := m.Called(ctx, userUID, programSlug, day)
	st, _ := args.Get(0).(*models.DayState)
	return st, args.Error(1)
}

func (m *RepoMock) ListDayStates(ctx context.Context, userUID, programSlug string) ([]*models.DayState, error) {
	args := m.Called(ctx, userUID, programSlug)
	return args.Get(0).([]*models.DayState), args.Error(1)
}

// fakeCache хранит значения в памяти, повторяя JSON-цикл настоящего кеша.
type fakeCache struct {
	data map[string]any
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]any)}
}

func (c *fakeCache) Get(key string, result any) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch dst := result.(type) {
	case **models.DayState:
		st := v.(models.DayState)
		*dst = &st
	case *int:
		*dst = v.(int)
	default:
		return false, fmt.Errorf("unexpected result type %T", result)
	}
	return true, nil
}

func (c *fakeCache) Set(key string, value any, _ time.Duration) error {
	switch t := value.(type) {
	case models.DayState:
		c.data[key] = t
	case *models.DayState:
		c.data[key] = *t
	default:
		c.data[key] = value
	}
	return nil
}

func (c *fakeCache) Invalidate(key string) error {
	delete(c.data, key)
	return nil
}

type loaderStub struct {
	schema *models.DaySchema
}

func (l *loaderStub) LoadDay(_ string, day int) (*models.DaySchema, error) {
	if day != l.schema.Day {
		return nil, fmt.Errorf("day %d not found", day)
	}
	return l.schema, nil
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func intPtr(v int) *int { return &v }

func testSchema() *models.DaySchema {
	return &models.DaySchema{
		Day:   3,
		Title: "Jour 3",
		Sections: []models.Section{
			{
				Key: "ex",
				Exercises: []models.Exercise{
					{
						Key: "breathing",
						Fields: []models.Field{
							{Key: "duration", Kind: models.KindNumber},
							{Key: "mood", Kind: models.KindSlider, Min: intPtr(0), Max: intPtr(10)},
							{Key: "notes", Kind: models.KindTextarea},
							{Key: "styles", Kind: models.KindMultiSelect, Options: []string{"calme", "actif", "guidé"}},
							{Key: "rounds", Kind: models.KindRepeater, MinItems: 1, MaxItems: 3,
								Fields: []models.Field{
									{Key: "label", Kind: models.KindText},
									{Key: "seconds", Kind: models.KindNumber},
								}},
						},
					},
				},
			},
		},
	}
}

func newTestService(repo *RepoMock, cache Cache) *DayStateService {
	return NewDayStateService(repo, cache, &loaderStub{schema: testSchema()}, NewNoopLogger())
}

func TestDayState_SaveLoadRoundTrip(t *testing.T) {
	repo := new(RepoMock)
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	repo.On("UpsertDayState", mock.Anything, mock.Anything).Return(nil).Once()

	saved, err := svc.Save(context.Background(), "u1", "reset-7", 3, models.DummyDayState{
		Values: map[string]any{
			"ex.breathing.duration": float64(8),
			"ex.breathing.notes":    "respiration calme",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(8), saved.Values["ex.breathing.duration"])

	// повторное чтение берёт черновик из кеша, база не нужна
	loaded, err := svc.Load(context.Background(), "u1", "reset-7", 3)
	require.NoError(t, err)
	assert.Equal(t, float64(8), loaded.Values["ex.breathing.duration"])
	assert.Equal(t, "respiration calme", loaded.Values["ex.breathing.notes"])

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetDayState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDayState_LegacyKeyMigratedOnce(t *testing.T) {
	repo := new(RepoMock)
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	legacy := models.DayState{
		ProgramSlug: "reset-7",
		Day:         3,
		Values:      map[string]any{"ex.breathing.duration": float64(8)},
	}
	require.NoError(t, cache.Set("daystate:reset-7:3", legacy, time.Hour))

	first, err := svc.Load(context.Background(), "u1", "reset-7", 3)
	require.NoError(t, err)
	assert.Equal(t, float64(8), first.Values["ex.breathing.duration"])
	assert.Equal(t, "u1", first.UserUID)

	_, stillThere := cache.data["daystate:reset-7:3"]
	assert.False(t, stillThere, "legacy key must be deleted after migration")
	_, scoped := cache.data["daystate:u1:reset-7:3"]
	assert.True(t, scoped, "scoped key must exist after migration")

	second, err := svc.Load(context.Background(), "u1", "reset-7", 3)
	require.NoError(t, err)
	assert.Equal(t, first.Values["ex.breathing.duration"], second.Values["ex.breathing.duration"])

	repo.AssertNotCalled(t, "GetDayState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDayState_SliderDefaultsToMidpoint(t *testing.T) {
	repo := new(RepoMock)
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	repo.On("GetDayState", mock.Anything, "u1", "reset-7", 3).Return((*models.DayState)(nil), nil).Once()

	loaded, err := svc.Load(context.Background(), "u1", "reset-7", 3)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.Values["ex.breathing.mood"])
	repo.AssertExpectations(t)
}

func TestDayState_LoadFallsBackToDatabase(t *testing.T) {
	repo := new(RepoMock)
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	stored := &models.DayState{
		UserUID:     "u1",
		ProgramSlug: "reset-7",
		Day:         3,
		Values:      map[string]any{"ex.breathing.notes": "depuis la base"},
	}
	repo.On("GetDayState", mock.Anything, "u1", "reset-7", 3).Return(stored, nil).Once()

	loaded, err := svc.Load(context.Background(), "u1", "reset-7", 3)
	require.NoError(t, err)
	assert.Equal(t, "depuis la base", loaded.Values["ex.breathing.notes"])
	repo.AssertExpectations(t)
}

func TestDayState_UnknownDay(t *testing.T) {
	repo := new(RepoMock)
	svc := newTestService(repo, newFakeCache())

	_, err := svc.Load(context.Background(), "u1", "reset-7", 99)
	assert.ErrorIs(t, err, ErrDayNotFound)

	_, err = svc.Save(context.Background(), "u1", "reset-7", 99, models.DummyDayState{Values: map[string]any{}})
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestDayState_LastDay(t *testing.T) {
	repo := new(RepoMock)
	cache := newFakeCache()
	svc := newTestService(repo, cache)

	assert.Equal(t, 1, svc.LastDay("u1", "reset-7"), "no record defaults to day 1")

	repo.On("GetDayState", mock.Anything, "u1", "reset-7", 3).Return((*models.DayState)(nil), nil).Once()
	_, err := svc.Load(context.Background(), "u1", "reset-7", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, svc.LastDay("u1", "reset-7"))
}

func TestNormalizeValues(t *testing.T) {
	schema := testSchema()

	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "unknown paths are dropped",
			in: map[string]any{
				"ex.breathing.duration": float64(8),
				"ghost.path.value":      "x",
			},
			want: map[string]any{"ex.breathing.duration": float64(8)},
		},
		{
			name: "wrong types reset to zero value",
			in: map[string]any{
				"ex.breathing.duration": "huit",
				"ex.breathing.notes":    float64(12),
				"ex.breathing.styles":   "calme",
			},
			want: map[string]any{
				"ex.breathing.duration": "",
				"ex.breathing.notes":    "",
				"ex.breathing.styles":   []string{},
			},
		},
		{
			name: "slider clamped to bounds",
			in:   map[string]any{"ex.breathing.mood": float64(42)},
			want: map[string]any{"ex.breathing.mood": 10},
		},
		{
			name: "empty number sentinel kept",
			in:   map[string]any{"ex.breathing.duration": ""},
			want: map[string]any{"ex.breathing.duration": ""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeValues(schema, tt.in))
		})
	}
}

func TestNormalizeValues_Repeater(t *testing.T) {
	schema := testSchema()

	in := map[string]any{
		"ex.breathing.rounds": []any{
			map[string]any{"label": "inspire", "seconds": float64(4)},
			map[string]any{"label": "expire", "seconds": float64(6), "extra": "dropped"},
			map[string]any{"label": "pause"},
			map[string]any{"label": "un de trop"},
		},
	}
	out := NormalizeValues(schema, in)

	rounds, ok := out["ex.breathing.rounds"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, rounds, 3, "items above max_items are dropped")
	assert.Equal(t, "inspire", rounds[0]["label"])
	assert.NotContains(t, rounds[1], "extra")
}

func TestToggleMultiSelect(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		option   string
		want     []string
	}{
		{"append unselected", []string{"calme"}, "actif", []string{"calme", "actif"}},
		{"remove selected", []string{"calme", "actif"}, "calme", []string{"actif"}},
		{"no duplicates", []string{"calme", "calme"}, "calme", []string{}},
		{"from empty", nil, "guidé", []string{"guidé"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToggleMultiSelect(tt.selected, tt.option))
		})
	}
}

func TestRepeaterBounds(t *testing.T) {
	field := &models.Field{
		Key: "rounds", Kind: models.KindRepeater, MinItems: 1, MaxItems: 3,
		Fields: []models.Field{{Key: "label", Kind: models.KindText}},
	}

	items := []map[string]any{{"label": "seul"}}
	assert.Len(t, RemoveRepeaterItem(field, items, 0), 1, "removing last item below min_items is a no-op")

	items = []map[string]any{{"label": "a"}, {"label": "b"}, {"label": "c"}}
	assert.Len(t, AddRepeaterItem(field, items), 3, "adding above max_items is a no-op")

	items = []map[string]any{{"label": "a"}, {"label": "b"}}
	grown := AddRepeaterItem(field, items)
	require.Len(t, grown, 3)
	assert.Equal(t, "", grown[2]["label"])

	shrunk := RemoveRepeaterItem(field, grown, 1)
	require.Len(t, shrunk, 2)
	assert.Equal(t, "a", shrunk[0]["label"])
	assert.Equal(t, "", shrunk[1]["label"])
}
