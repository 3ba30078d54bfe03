// Package catalog owns every mutation the UIs can perform on the skin
// catalog. Each operation mutates the in-memory snapshot, re-derives the
// dependent fields, prunes the leaderboard, persists the full document and
// appends a history event.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/hok11/hok-rank/internal/history"
	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/score"
	"github.com/hok11/hok-rank/internal/store"
)

var (
	ErrEmptyName     = errors.New("skin name must not be empty")
	ErrDuplicateName = errors.New("skin already exists")
	ErrNotFound      = errors.New("skin not found")
	ErrNotPreset     = errors.New("skin is not a preset")
	ErrStatusOnBoard = errors.New("preset/discontinued skins cannot be on the leaderboard")
)

// ScoreMode selects how a new or launching skin gets its rank score.
type ScoreMode int

const (
	ScoreNone   ScoreMode = iota // stays unranked
	ScoreByRank                  // insertion algorithm at TargetRank
	ScoreManual                  // operator-supplied value
)

// Status mirrors the four mutually prioritized tags.
type Status string

const (
	StatusNew          Status = "new"
	StatusRerun        Status = "rerun"
	StatusPreset       Status = "preset"
	StatusDiscontinued Status = "discontinued"
)

// AddParams describes one new catalog entry.
type AddParams struct {
	Name        string
	Quality     float64
	Status      Status
	OnBoard     bool
	RealPrice   float64
	Growth      float64 // percentage points
	Mode        ScoreMode
	TargetRank  int
	ManualScore float64
}

// LaunchParams takes a preset live.
type LaunchParams struct {
	Name        string
	RealPrice   float64
	Growth      float64
	Mode        ScoreMode // ScoreNone keeps it off the board
	TargetRank  int
	ManualScore float64
}

// Service is created once per process and handed around explicitly.
// The mutex serializes web callbacks against console commands; the data
// model itself stays single-writer.
type Service struct {
	mu       sync.Mutex
	st       *store.Store
	cat      *models.Catalog
	curve    score.Curve
	capacity int
	rec      *history.Recorder
	onChange func()
}

func NewService(st *store.Store, curve score.Curve, capacity int, rec *history.Recorder) (*Service, error) {
	cat, err := st.Load()
	if err != nil {
		return nil, err
	}
	// persist the migrated shape right away, like every revision before
	if err := st.Save(cat); err != nil {
		return nil, fmt.Errorf("save migrated catalog: %w", err)
	}
	return &Service{st: st, cat: cat, curve: curve, capacity: capacity, rec: rec}, nil
}

// OnChange registers a single listener notified after every persisted
// mutation (the /ws hub uses it to push page refreshes).
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Service) Curve() score.Curve { return s.curve }

// Snapshot returns a copy of the full sorted catalog.
func (s *Service) Snapshot() *models.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() *models.Catalog {
	models.SortCatalog(s.cat.Skins)
	skins := make([]*models.Skin, len(s.cat.Skins))
	for i, sk := range s.cat.Skins {
		cp := *sk
		skins[i] = &cp
	}
	qc := make(models.QualityConfig, len(s.cat.QualityConfig))
	for k, v := range s.cat.QualityConfig {
		qc[k] = v
	}
	return &models.Catalog{
		Skins:         skins,
		Instructions:  append([]string(nil), s.cat.Instructions...),
		QualityConfig: qc,
	}
}

// ActiveLeaderboard returns copies of all on-board skins in display order.
func (s *Service) ActiveLeaderboard() []*models.Skin {
	snap := s.Snapshot()
	var out []*models.Skin
	for _, sk := range snap.Skins {
		if sk.OnLeaderboard {
			out = append(out, sk)
		}
	}
	return out
}

// PreviewInsertion computes the score a skin would get at targetRank,
// without touching the catalog.
func (s *Service) PreviewInsertion(targetRank int, realPrice, growth float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.curve.InsertionScore(targetRank, models.RankedView(s.cat.Skins), realPrice, growth)
	if err != nil {
		return 0, err
	}
	return round1(v), nil
}

// AddSkin creates a record in any of the four states.
func (s *Service) AddSkin(p AddParams) (*models.Skin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name == "" {
		return nil, ErrEmptyName
	}
	if s.findLocked(p.Name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, p.Name)
	}
	if p.RealPrice < 0 {
		return nil, score.ErrNegativePrice
	}
	onBoard := p.OnBoard
	if p.Status == StatusPreset || p.Status == StatusDiscontinued {
		if onBoard {
			return nil, ErrStatusOnBoard
		}
	}

	skin := &models.Skin{
		Quality:        p.Quality,
		Name:           p.Name,
		Growth:         p.Growth,
		RealPrice:      p.RealPrice,
		OnLeaderboard:  onBoard,
		IsNew:          p.Status == StatusNew,
		IsRerun:        p.Status == StatusRerun,
		IsPreset:       p.Status == StatusPreset,
		IsDiscontinued: p.Status == StatusDiscontinued,
	}

	if onBoard {
		switch p.Mode {
		case ScoreByRank:
			v, err := s.curve.InsertionScore(p.TargetRank, models.RankedView(s.cat.Skins), p.RealPrice, p.Growth)
			if err != nil {
				return nil, err
			}
			skin.Score = fptr(round1(v))
		case ScoreManual:
			skin.Score = fptr(p.ManualScore)
		}
	}

	skin.ListPrice = score.ResolveListPrice(skin.Quality, s.cat.QualityConfig)
	skin.RealScore = score.RealScore(skin.Score, skin.ListPrice, skin.RealPrice)

	s.cat.Skins = append(s.cat.Skins, skin)
	if err := s.commitLocked("add", skin, p.TargetRank); err != nil {
		return nil, err
	}
	return skin, nil
}

// LaunchPreset flips a preset to an active new skin with its final price,
// growth and (optionally) a computed or manual score.
func (s *Service) LaunchPreset(p LaunchParams) (*models.Skin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	skin := s.findLocked(p.Name)
	if skin == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.Name)
	}
	if !skin.IsPreset {
		return nil, fmt.Errorf("%w: %s", ErrNotPreset, p.Name)
	}
	if p.RealPrice < 0 {
		return nil, score.ErrNegativePrice
	}

	skin.IsPreset = false
	skin.IsNew = true
	skin.RealPrice = p.RealPrice
	skin.Growth = p.Growth

	switch p.Mode {
	case ScoreNone:
		skin.OnLeaderboard = false
		skin.Score = nil
	case ScoreManual:
		skin.OnLeaderboard = true
		skin.Score = fptr(p.ManualScore)
	case ScoreByRank:
		v, err := s.curve.InsertionScore(p.TargetRank, models.RankedView(s.cat.Skins), p.RealPrice, p.Growth)
		if err != nil {
			return nil, err
		}
		skin.OnLeaderboard = true
		skin.Score = fptr(round1(v))
	}

	skin.RealScore = score.RealScore(skin.Score, skin.ListPrice, skin.RealPrice)
	if err := s.commitLocked("launch", skin, p.TargetRank); err != nil {
		return nil, err
	}
	return skin, nil
}

// Discontinue retires a skin permanently. There is no way back.
func (s *Service) Discontinue(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skin := s.findLocked(name)
	if skin == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	skin.IsDiscontinued = true
	skin.IsPreset = false
	skin.IsNew = false
	skin.OnLeaderboard = false
	return s.commitLocked("discontinue", skin, 0)
}

// SetScore overrides a skin's rank score directly.
func (s *Service) SetScore(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skin := s.findLocked(name)
	if skin == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if math.IsNaN(value) {
		return fmt.Errorf("score must be a number")
	}
	skin.Score = fptr(value)
	skin.RealScore = score.RealScore(skin.Score, skin.ListPrice, skin.RealPrice)
	return s.commitLocked("set_score", skin, 0)
}

// RemoveFromBoard knocks a skin off the leaderboard without deleting it.
func (s *Service) RemoveFromBoard(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	skin := s.findLocked(name)
	if skin == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	skin.OnLeaderboard = false
	return s.commitLocked("remove", skin, 0)
}

// DeleteSkin drops a record entirely (bulk-edit style operation).
func (s *Service) DeleteSkin(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, skin := range s.cat.Skins {
		if skin.Name == name {
			s.cat.Skins = append(s.cat.Skins[:i], s.cat.Skins[i+1:]...)
			return s.commitLocked("delete", skin, 0)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

// UpsertQualityTier adds or edits a tier and propagates the new price to
// every record of that tier (and sub-tiers resolving through it).
func (s *Service) UpsertQualityTier(key string, tier models.QualityTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "" {
		return fmt.Errorf("tier key must not be empty")
	}
	if tier.Scale == 0 {
		tier.Scale = 1.0
	}
	if tier.BgColor == "" {
		tier.BgColor = "#ffffff"
	}
	s.cat.QualityConfig[key] = tier
	store.Migrate(s.cat)
	return s.saveLocked()
}

// SetInstructions replaces the info-modal text lines.
func (s *Service) SetInstructions(lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cat.Instructions = lines
	return s.saveLocked()
}

// ReplaceAll swaps the entire skin list (Excel import path) and re-runs
// the migration pass over it.
func (s *Service) ReplaceAll(skins []*models.Skin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(skins))
	var unique []*models.Skin
	for _, sk := range skins {
		if sk.Name == "" || seen[sk.Name] {
			continue
		}
		seen[sk.Name] = true
		unique = append(unique, sk)
	}
	s.cat.Skins = unique
	store.Migrate(s.cat)
	score.Prune(s.cat.Skins, s.capacity)
	if err := s.saveLocked(); err != nil {
		return err
	}
	s.rec.Record("import", &models.Skin{Name: fmt.Sprintf("%d skins", len(unique))}, 0)
	return nil
}

// AttachImages stores scan results (avatar/description image paths) and
// persists them.
func (s *Service) AttachImages(update func(*models.Skin) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, skin := range s.cat.Skins {
		if update(skin) {
			changed++
		}
	}
	if changed == 0 {
		return nil
	}
	return s.saveLocked()
}

func (s *Service) findLocked(name string) *models.Skin {
	for _, skin := range s.cat.Skins {
		if skin.Name == name {
			return skin
		}
	}
	return nil
}

func (s *Service) commitLocked(action string, skin *models.Skin, rank int) error {
	score.Prune(s.cat.Skins, s.capacity)
	if err := s.saveLocked(); err != nil {
		return err
	}
	s.rec.Record(action, skin, rank)
	return nil
}

func (s *Service) saveLocked() error {
	if err := s.st.Save(s.cat); err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange()
	}
	return nil
}

func fptr(v float64) *float64 { return &v }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
