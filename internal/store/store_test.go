package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hok11/hok-rank/internal/models"
)

func fptr(v float64) *float64 { return &v }

func tempStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return New(path)
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t, "")
	cat, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.Skins)
	assert.Equal(t, models.DefaultInstructions(), cat.Instructions)
	assert.Contains(t, cat.QualityConfig, "2500")
}

func TestLoadBareArray(t *testing.T) {
	s := tempStore(t, `[
		{"quality": 250, "name": "曹操-万灵伏威", "score": 120.5, "is_rerun": true, "price": 168.0},
		{"quality": 100, "name": "安琪拉-糖果风暴", "score": 90.1, "is_new": true}
	]`)
	cat, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cat.Skins, 2)

	first := cat.Skins[0]
	assert.Equal(t, "曹操-万灵伏威", first.Name)
	// legacy price migrates into real_price
	assert.Equal(t, 168.0, first.RealPrice)
	// pre-flag record with a tag defaults onto the board
	assert.True(t, first.OnLeaderboard)
	// list price resolved from the built-in table
	assert.Equal(t, 135.0, first.ListPrice)
	require.NotNil(t, first.RealScore)
	assert.InDelta(t, 150.0, *first.RealScore, 0.1) // 120.5*168/135 rounded
}

func TestLoadTotalKey(t *testing.T) {
	s := tempStore(t, `{"total": [{"quality": 100, "name": "A", "score": 50}]}`)
	cat, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cat.Skins, 1)
	assert.Equal(t, "A", cat.Skins[0].Name)
}

func TestLoadDedupeFirstWins(t *testing.T) {
	s := tempStore(t, `{"skins": [
		{"quality": 100, "name": "A", "score": 50},
		{"quality": 250, "name": "A", "score": 99},
		{"quality": 250, "name": "B"}
	]}`)
	cat, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cat.Skins, 2)
	for _, skin := range cat.Skins {
		if skin.Name == "A" {
			assert.Equal(t, 100.0, skin.Quality)
			assert.Equal(t, 50.0, *skin.Score)
		}
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := tempStore(t, `{{{not json`)
	cat, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.Skins)
}

func TestLoadExplicitOffBoardStaysOff(t *testing.T) {
	s := tempStore(t, `{"skins": [
		{"quality": 100, "name": "A", "score": 50, "is_new": true, "on_leaderboard": false}
	]}`)
	cat, err := s.Load()
	require.NoError(t, err)
	require.Len(t, cat.Skins, 1)
	assert.False(t, cat.Skins[0].OnLeaderboard)
}

func TestQualityMergeCodeWins(t *testing.T) {
	s := tempStore(t, `{"skins": [], "quality_config": {
		"250": {"price": 1.0, "name": "旧名", "bg_color": "#123456"},
		"8888": {"price": 33.0, "name": "自定义", "scale": 1.0, "bg_color": "#ffffff"}
	}}`)
	cat, err := s.Load()
	require.NoError(t, err)

	// code-defined price and name win, styling from the file survives
	assert.Equal(t, 135.0, cat.QualityConfig["250"].Price)
	assert.Equal(t, "传说", cat.QualityConfig["250"].Name)
	assert.Equal(t, "#123456", cat.QualityConfig["250"].BgColor)
	// file-only tiers survive
	assert.Equal(t, 33.0, cat.QualityConfig["8888"].Price)
}

func TestSaveRoundTripSorted(t *testing.T) {
	s := tempStore(t, "")
	cat := &models.Catalog{
		Instructions:  models.DefaultInstructions(),
		QualityConfig: models.DefaultQualityConfig(),
		Skins: []*models.Skin{
			{Quality: 100, Name: "preset", IsPreset: true},
			{Quality: 250, Name: "low", Score: fptr(10), OnLeaderboard: true, IsNew: true},
			{Quality: 250, Name: "high", Score: fptr(99), OnLeaderboard: true, IsNew: true},
			{Quality: 100, Name: "retired", IsDiscontinued: true},
		},
	}
	require.NoError(t, s.Save(cat))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var doc struct {
		Skins []struct {
			Name string `json:"name"`
		} `json:"skins"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	names := make([]string, 0, len(doc.Skins))
	for _, sk := range doc.Skins {
		names = append(names, sk.Name)
	}
	assert.Equal(t, []string{"high", "low", "preset", "retired"}, names)

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, reloaded.Skins, 4)
}

func TestMigratePropagatesTierPrice(t *testing.T) {
	cat := &models.Catalog{
		QualityConfig: models.QualityConfig{
			"250": {Price: 135.0, Name: "传说"},
		},
		Skins: []*models.Skin{
			{Quality: 250, Name: "A", Score: fptr(100), RealPrice: 135},
		},
	}
	Migrate(cat)
	assert.Equal(t, 135.0, cat.Skins[0].ListPrice)
	require.NotNil(t, cat.Skins[0].RealScore)
	assert.Equal(t, 100.0, *cat.Skins[0].RealScore)

	// tier price change propagates on the next pass
	cat.QualityConfig["250"] = models.QualityTier{Price: 270.0, Name: "传说"}
	Migrate(cat)
	assert.Equal(t, 270.0, cat.Skins[0].ListPrice)
	assert.Equal(t, 50.0, *cat.Skins[0].RealScore)
}
