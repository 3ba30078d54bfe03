package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hok11/hok-rank/internal/models"
)

func f(v float64) *float64 { return &v }

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	in := []*models.Skin{
		{Quality: 250, Name: "赵云/龙胆", Score: f(180), RealScore: f(240), Growth: 12.5, RealPrice: 180, OnLeaderboard: true, IsNew: true, LocalImg: "skin_avatars/赵云_龙胆.jpg"},
		{Quality: 500, Name: "预设皮肤", IsPreset: true},
		{Quality: 10000, Name: "绝版珍品", Score: f(50), IsDiscontinued: true, RealPrice: 2000},
	}
	require.NoError(t, Export(path, in))

	out, err := Import(path)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "赵云/龙胆", out[0].Name)
	assert.InDelta(t, 250, out[0].Quality, 1e-9)
	require.NotNil(t, out[0].Score)
	assert.InDelta(t, 180, *out[0].Score, 1e-9)
	assert.InDelta(t, 12.5, out[0].Growth, 1e-9)
	assert.True(t, out[0].OnLeaderboard)
	assert.True(t, out[0].IsNew)
	assert.Equal(t, "skin_avatars/赵云_龙胆.jpg", out[0].LocalImg)

	assert.Nil(t, out[1].Score)
	assert.True(t, out[1].IsPreset)
	assert.False(t, out[1].OnLeaderboard)

	assert.True(t, out[2].IsDiscontinued)
	assert.InDelta(t, 2000, out[2].RealPrice, 1e-9)
}

func TestExportEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Export(path, nil))

	out, err := Import(path)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
