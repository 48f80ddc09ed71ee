package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/sheetnest/internal/model"
)

func TestLoadAppConfig_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadAppConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 1220.0, cfg.DefaultSheet.Width)
	assert.Equal(t, model.StrategyGuillotine, cfg.DefaultSettings.Strategy)
	assert.NotNil(t, cfg.RecentJobs)
}

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultAppConfig()
	cfg.DefaultSettings.Kerf = 2.5
	cfg.AddRecentJob("/jobs/kitchen.yaml")

	require.NoError(t, SaveAppConfig(path, cfg))

	loaded, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, loaded.DefaultSettings.Kerf)
	assert.Equal(t, []string{"/jobs/kitchen.yaml"}, loaded.RecentJobs)
}

func TestAddRecentJob_DeduplicatesAndCaps(t *testing.T) {
	cfg := DefaultAppConfig()

	for i := 0; i < 12; i++ {
		cfg.AddRecentJob(filepath.Join("/jobs", string(rune('a'+i))+".yaml"))
	}
	cfg.AddRecentJob("/jobs/l.yaml") // already the most recent

	assert.Len(t, cfg.RecentJobs, 10)
	assert.Equal(t, "/jobs/l.yaml", cfg.RecentJobs[0])
}

func TestLoadJob_ResolvesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	content := `name: Kitchen
parts:
  - label: Side Panel
    width: 600
    height: 400
    quantity: 2
  - label: Locked
    width: 300
    height: 800
    rotation: false
sheets:
  - width: 1220
    height: 2440
settings:
  strategy: shelf
  kerf: 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	parts, sheets, settings, err := LoadJob(path, model.DefaultSettings())
	require.NoError(t, err)

	require.Len(t, parts, 2)
	assert.Equal(t, 2, parts[0].Quantity)
	assert.True(t, parts[0].RotationAllowed, "omitted rotation defaults to allowed")
	assert.False(t, parts[1].RotationAllowed)
	assert.Equal(t, 1, parts[1].Quantity, "omitted quantity defaults to 1")

	require.Len(t, sheets, 1)
	assert.Equal(t, "Sheet 1", sheets[0].Label, "unnamed sheets get a positional name")
	assert.Equal(t, 1, sheets[0].Quantity)

	assert.Equal(t, model.StrategyShelf, settings.Strategy)
	assert.Equal(t, 2.0, settings.Kerf)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, model.DefaultSettings().Margin, settings.Margin)
	assert.Equal(t, model.DefaultSettings().CutLineTolerance, settings.CutLineTolerance)
}

func TestLoadJob_RejectsEmptyJobs(t *testing.T) {
	dir := t.TempDir()

	noParts := filepath.Join(dir, "noparts.yaml")
	require.NoError(t, os.WriteFile(noParts, []byte("sheets:\n  - width: 100\n    height: 100\n"), 0644))
	_, _, _, err := LoadJob(noParts, model.DefaultSettings())
	assert.ErrorContains(t, err, "no parts")

	noSheets := filepath.Join(dir, "nosheets.yaml")
	require.NoError(t, os.WriteFile(noSheets, []byte("parts:\n  - label: A\n    width: 100\n    height: 100\n"), 0644))
	_, _, _, err = LoadJob(noSheets, model.DefaultSettings())
	assert.ErrorContains(t, err, "no sheets")
}

func TestSaveJob_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	locked := false

	jf := JobFile{
		Name: "Wardrobe",
		Parts: []JobPart{
			{Label: "Door", Width: 500, Height: 1800, Quantity: 2, Rotation: &locked},
		},
		Sheets: []JobSheet{
			{Name: "MDF", Width: 2440, Height: 1220, Quantity: 3},
		},
	}

	require.NoError(t, SaveJob(path, jf))

	parts, sheets, _, err := LoadJob(path, model.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Door", parts[0].Label)
	assert.False(t, parts[0].RotationAllowed)
	require.Len(t, sheets, 1)
	assert.Equal(t, "MDF", sheets[0].Label)
	assert.Equal(t, 3, sheets[0].Quantity)
}
