package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

func writeDayFile(t *testing.T, dir, slug, name, body string) {
	t.Helper()
	programDir := filepath.Join(dir, slug)
	require.NoError(t, os.MkdirAll(programDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(programDir, name), []byte(body), 0o644))
}

const validDay = `{
  "day": 1,
  "title": "Jour 1",
  "sections": [
    {
      "key": "morning",
      "title": "Matin",
      "exercises": [
        {
          "key": "breathing",
          "title": "Respiration",
          "fields": [
            {"key": "duration", "kind": "number"},
            {"key": "mood", "kind": "slider", "min": 0, "max": 10},
            {"key": "focus", "kind": "multi_select", "options": ["calme", "energie"]}
          ]
        }
      ]
    }
  ]
}`

func TestLoadDay(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "reset-7", "day1.json", validDay)

	loader := NewLoader(dir)

	schema, err := loader.LoadDay("reset-7", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, schema.Day)
	require.Len(t, schema.Sections, 1)
	assert.Equal(t, "morning", schema.Sections[0].Key)
	assert.Equal(t, models.KindSlider, schema.Sections[0].Exercises[0].Fields[1].Kind)

	// повторная загрузка идёт из кеша и возвращает ту же схему
	again, err := loader.LoadDay("reset-7", 1)
	require.NoError(t, err)
	assert.Same(t, schema, again)
}

func TestLoadDay_MissingFile(t *testing.T) {
	loader := NewLoader(t.TempDir())

	_, err := loader.LoadDay("reset-7", 5)
	assert.ErrorIs(t, err, ErrDayNotFound)
}

func TestLoadDay_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "reset-7", "day1.json", `{
      "day": 1,
      "sections": [{"key": "morning", "exercises": [{"key": "x", "fields": [{"key": "f", "kind": "wheel"}]}]}]
    }`)

	loader := NewLoader(dir)
	_, err := loader.LoadDay("reset-7", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestLoadDay_DayMismatch(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "reset-7", "day2.json", validDay) // внутри указан day: 1

	loader := NewLoader(dir)
	_, err := loader.LoadDay("reset-7", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declares day 1")
}

func TestCheckProgram(t *testing.T) {
	dir := t.TempDir()
	writeDayFile(t, dir, "reset-7", "day1.json", validDay)

	loader := NewLoader(dir)

	assert.NoError(t, loader.CheckProgram("reset-7", 1))
	assert.Error(t, loader.CheckProgram("reset-7", 2), "day 2 is missing")
	assert.Error(t, loader.CheckProgram("reset-7", 0))
}
