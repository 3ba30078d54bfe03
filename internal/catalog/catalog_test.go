package catalog

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hok11/hok-rank/internal/history"
	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/score"
	"github.com/hok11/hok-rank/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "data.json"))
	svc, err := NewService(st, score.DefaultCurve(), 10, history.NewRecorder(nil))
	require.NoError(t, err)
	return svc
}

func mustAdd(t *testing.T, svc *Service, p AddParams) *models.Skin {
	t.Helper()
	skin, err := svc.AddSkin(p)
	require.NoError(t, err)
	return skin
}

func TestAddFirstSkinRankOne(t *testing.T) {
	svc := newTestService(t)
	skin := mustAdd(t, svc, AddParams{
		Name: "孙悟空-无相", Quality: 2500, Status: StatusNew, OnBoard: true,
		RealPrice: 100, Growth: 10, Mode: ScoreByRank, TargetRank: 1,
	})
	require.NotNil(t, skin.Score)
	want := 282/math.Sqrt(1.25) - 82
	assert.InDelta(t, want, *skin.Score, 0.05) // rounded to 1 decimal
	assert.Equal(t, 600.0, skin.ListPrice)
	require.NotNil(t, skin.RealScore)
}

func TestAddDuplicateRejected(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{Name: "A", Quality: 250, Status: StatusNew})
	_, err := svc.AddSkin(AddParams{Name: "A", Quality: 100, Status: StatusNew})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestAddEmptyNameRejected(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddSkin(AddParams{Quality: 250})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestAddPresetCannotBeOnBoard(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddSkin(AddParams{Name: "P", Quality: 250, Status: StatusPreset, OnBoard: true})
	assert.ErrorIs(t, err, ErrStatusOnBoard)
}

func TestInsertionKeepsOrdering(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{Name: "top", Quality: 250, Status: StatusNew, OnBoard: true, Mode: ScoreManual, ManualScore: 300})
	mustAdd(t, svc, AddParams{Name: "mid", Quality: 250, Status: StatusNew, OnBoard: true, Mode: ScoreManual, ManualScore: 200})
	mustAdd(t, svc, AddParams{Name: "low", Quality: 250, Status: StatusNew, OnBoard: true, Mode: ScoreManual, ManualScore: 100})

	inserted := mustAdd(t, svc, AddParams{
		Name: "new", Quality: 250, Status: StatusNew, OnBoard: true,
		Mode: ScoreByRank, TargetRank: 2,
	})
	require.NotNil(t, inserted.Score)
	assert.InDelta(t, math.Sqrt(300*200), *inserted.Score, 0.05)

	// after re-sort the new skin sits exactly at rank 2
	ranked := models.RankedView(svc.Snapshot().Skins)
	require.Len(t, ranked, 4)
	assert.Equal(t, "new", ranked[1].Name)
}

func TestLaunchPreset(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{Name: "lead", Quality: 250, Status: StatusNew, OnBoard: true, Mode: ScoreManual, ManualScore: 150})
	mustAdd(t, svc, AddParams{Name: "coming", Quality: 500, Status: StatusPreset})

	skin, err := svc.LaunchPreset(LaunchParams{
		Name: "coming", RealPrice: 178.8, Growth: 5, Mode: ScoreByRank, TargetRank: 1,
	})
	require.NoError(t, err)
	assert.False(t, skin.IsPreset)
	assert.True(t, skin.IsNew)
	assert.True(t, skin.OnLeaderboard)
	require.NotNil(t, skin.Score)
	assert.InDelta(t, 150/0.6, *skin.Score, 0.05)
	require.NotNil(t, skin.RealScore)
	// real = score * real_price / list_price(500 => 143)
	assert.InDelta(t, *skin.Score*178.8/143.0, *skin.RealScore, 0.1)
}

func TestLaunchNonPresetRejected(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{Name: "A", Quality: 250, Status: StatusNew})
	_, err := svc.LaunchPreset(LaunchParams{Name: "A"})
	assert.ErrorIs(t, err, ErrNotPreset)
}

func TestDiscontinueIsTerminal(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{Name: "A", Quality: 250, Status: StatusNew, OnBoard: true, Mode: ScoreManual, ManualScore: 100})
	require.NoError(t, svc.Discontinue("A"))

	snap := svc.Snapshot()
	require.Len(t, snap.Skins, 1)
	assert.True(t, snap.Skins[0].IsDiscontinued)
	assert.False(t, snap.Skins[0].OnLeaderboard)
	assert.Empty(t, models.RankedView(snap.Skins))
}

func TestCapacityEnforcedOnAdd(t *testing.T) {
	svc := newTestService(t)
	for i := 0; i < 15; i++ {
		mustAdd(t, svc, AddParams{
			Name: string(rune('a'+i)), Quality: 250, Status: StatusNew, OnBoard: true,
			Mode: ScoreManual, ManualScore: float64(150 - i*5),
		})
	}
	ranked := models.RankedView(svc.Snapshot().Skins)
	assert.Len(t, ranked, 10)
	assert.Equal(t, 150.0, *ranked[0].Score)
	assert.Equal(t, 105.0, *ranked[9].Score)
}

func TestSetScoreRecomputesRealScore(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{
		Name: "A", Quality: 250, Status: StatusNew, OnBoard: true,
		RealPrice: 270, Mode: ScoreManual, ManualScore: 100,
	})
	require.NoError(t, svc.SetScore("A", 50))

	snap := svc.Snapshot()
	require.NotNil(t, snap.Skins[0].RealScore)
	// list price 135, real 270 => factor 2
	assert.Equal(t, 100.0, *snap.Skins[0].RealScore)
}

func TestUpsertQualityTierPropagates(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{
		Name: "A", Quality: 8888, Status: StatusNew, OnBoard: true,
		RealPrice: 50, Mode: ScoreManual, ManualScore: 100,
	})
	snap := svc.Snapshot()
	assert.Equal(t, 0.0, snap.Skins[0].ListPrice)
	assert.Nil(t, snap.Skins[0].RealScore, "unknown tier means no real score")

	require.NoError(t, svc.UpsertQualityTier("8888", models.QualityTier{Price: 100, Name: "限定"}))
	snap = svc.Snapshot()
	assert.Equal(t, 100.0, snap.Skins[0].ListPrice)
	require.NotNil(t, snap.Skins[0].RealScore)
	assert.Equal(t, 50.0, *snap.Skins[0].RealScore)
}

func TestDeleteSkin(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, AddParams{Name: "A", Quality: 250, Status: StatusNew})
	require.NoError(t, svc.DeleteSkin("A"))
	assert.Empty(t, svc.Snapshot().Skins)
	assert.ErrorIs(t, svc.DeleteSkin("A"), ErrNotFound)
}

func TestPersistenceAcrossServices(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "data.json"))
	svc, err := NewService(st, score.DefaultCurve(), 10, history.NewRecorder(nil))
	require.NoError(t, err)
	_, err = svc.AddSkin(AddParams{Name: "A", Quality: 250, Status: StatusNew, OnBoard: true, Mode: ScoreManual, ManualScore: 42})
	require.NoError(t, err)

	svc2, err := NewService(store.New(filepath.Join(dir, "data.json")), score.DefaultCurve(), 10, history.NewRecorder(nil))
	require.NoError(t, err)
	snap := svc2.Snapshot()
	require.Len(t, snap.Skins, 1)
	assert.Equal(t, 42.0, *snap.Skins[0].Score)
}
