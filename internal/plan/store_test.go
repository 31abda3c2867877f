package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plancal/internal/model"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "daily_plans.json"))

	s, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestFileStore_InitCreatesEmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daily_plans.json")
	store := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, store.Init(ctx))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(raw))

	// Init never overwrites existing data.
	s := model.NewSchedule()
	require.NoError(t, InitDay(s, "2024-06-01"))
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Init(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.Has("2024-06-01"))
}

func TestFileStore_InitDayThenLoad(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "daily_plans.json"))
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, InitDay(s, "2024-06-01"))
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	day, ok := loaded.Day("2024-06-01")
	require.True(t, ok)
	assert.Equal(t, model.SlotLabels(), day.Labels())
	for _, e := range day.Entries() {
		assert.Equal(t, model.NoTask, e.Task)
	}
}

func TestFileStore_PrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_plans.json")
	store := NewFileStore(path)
	ctx := context.Background()

	s := model.NewSchedule()
	require.NoError(t, InitDay(s, "2024-06-01"))
	require.NoError(t, SetSlot(s, "2024-06-01", "8-10時", "<standup>"))
	require.NoError(t, store.Save(ctx, s))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "{\n    \"2024-06-01\": {\n        \"8-10時\": \"<standup>\",\n        \"10-12時\": \"無任務\",")
	assert.Contains(t, text, "\"22-24時\": \"無任務\"\n    }\n}\n")
}

func TestFileStore_RoundTripIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_plans.json")
	// Out-of-order dates and a slot outside the fixed set must both survive.
	original := `{
    "2024-06-02": {
        "8-10時": "✅ 寫報告",
        "extra": "kept"
    },
    "2024-06-01": {
        "8-10時": "無任務"
    }
}
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0o644))

	store := NewFileStore(path)
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	s, err = store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, original, string(first))
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, []string{"2024-06-02", "2024-06-01"}, s.Dates())

	day, _ := s.Day("2024-06-02")
	task, _ := day.Get("8-10時")
	assert.Equal(t, "✅ 寫報告", task)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily_plans.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_CanceledContext(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "daily_plans.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, model.NewSchedule()), context.Canceled)
}

func TestMemoryStore_Isolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, InitDay(s, "2024-06-01"))

	// Not saved yet.
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, again.Has("2024-06-01"))

	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, InitDay(s, "2024-06-02"))

	again, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, again.Has("2024-06-01"))
	assert.False(t, again.Has("2024-06-02"))
	assert.Equal(t, 1, store.Saves())
}
