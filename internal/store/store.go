// Package store persists the catalog as a single JSON document with
// full-snapshot overwrite semantics: load once at startup, save everything
// after each mutation.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/hok11/hok-rank/internal/models"
	"github.com/hok11/hok-rank/internal/score"
)

// Store owns one data file. There is no ambient singleton; whoever creates
// the Store hands it to every operation that needs it.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// document mirrors the current on-disk layout. Older revisions wrote a
// bare array or a {"total": [...]} object; Load handles those too.
type document struct {
	Skins         []json.RawMessage    `json:"skins"`
	Total         []json.RawMessage    `json:"total"`
	Instructions  []string             `json:"instructions"`
	QualityConfig models.QualityConfig `json:"quality_config"`
}

// rawSkin keeps pointers for every field that may be absent in old files,
// so the migration can tell "missing" from "false"/"zero". After
// fromRaw nothing is optionally absent anymore.
type rawSkin struct {
	Quality        float64  `json:"quality"`
	Name           string   `json:"name"`
	Score          *float64 `json:"score"`
	Growth         float64  `json:"growth"`
	Price          *float64 `json:"price"` // legacy field, became real_price
	RealPrice      *float64 `json:"real_price"`
	OnLeaderboard  *bool    `json:"on_leaderboard"`
	IsNew          bool     `json:"is_new"`
	IsRerun        bool     `json:"is_rerun"`
	IsPreset       bool     `json:"is_preset"`
	IsDiscontinued bool     `json:"is_discontinued"`
	LocalImg       string   `json:"local_img"`
	DescImg        string   `json:"desc_img"`
}

func fromRaw(r *rawSkin) *models.Skin {
	s := &models.Skin{
		Quality:        r.Quality,
		Name:           r.Name,
		Score:          r.Score,
		Growth:         r.Growth,
		IsNew:          r.IsNew,
		IsRerun:        r.IsRerun,
		IsPreset:       r.IsPreset,
		IsDiscontinued: r.IsDiscontinued,
		LocalImg:       r.LocalImg,
		DescImg:        r.DescImg,
	}
	switch {
	case r.RealPrice != nil:
		s.RealPrice = *r.RealPrice
	case r.Price != nil:
		s.RealPrice = *r.Price
	}
	if r.OnLeaderboard != nil {
		s.OnLeaderboard = *r.OnLeaderboard
	} else {
		// pre-flag files: anything carrying a tag counted as on-board
		s.OnLeaderboard = r.IsNew || r.IsRerun || r.IsPreset || r.IsDiscontinued
	}
	return s
}

// Load reads the data file and returns a migrated catalog. A missing file
// yields an empty catalog rather than an error; a corrupt one is logged
// and treated as empty, matching how the tool has always behaved.
func (s *Store) Load() (*models.Catalog, error) {
	cat := &models.Catalog{
		Instructions:  models.DefaultInstructions(),
		QualityConfig: models.DefaultQualityConfig(),
	}

	buf, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return cat, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var rawList []json.RawMessage
	if uErr := json.Unmarshal(buf, &rawList); uErr != nil {
		var doc document
		if uErr := json.Unmarshal(buf, &doc); uErr != nil {
			log.Printf("⚠️ 数据文件损坏，按空数据处理: %v", uErr)
			return cat, nil
		}
		rawList = doc.Skins
		if rawList == nil {
			rawList = doc.Total
		}
		if len(doc.Instructions) > 0 {
			cat.Instructions = doc.Instructions
		}
		if len(doc.QualityConfig) > 0 {
			cat.QualityConfig = doc.QualityConfig
		}
	}

	seen := make(map[string]bool, len(rawList))
	for _, msg := range rawList {
		var r rawSkin
		if err := json.Unmarshal(msg, &r); err != nil {
			log.Printf("⚠️ 跳过无法解析的条目: %v", err)
			continue
		}
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		cat.Skins = append(cat.Skins, fromRaw(&r))
	}

	mergeDefaultQuality(cat.QualityConfig)
	Migrate(cat)
	return cat, nil
}

// Save writes the whole catalog, sorted, via a temp file + rename so a
// crash mid-write never truncates data.json.
func (s *Store) Save(cat *models.Catalog) error {
	models.SortCatalog(cat.Skins)
	scrubNaN(cat.Skins)

	buf, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".data-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Migrate re-derives everything that depends on the quality table: list
// prices from the current table (tier price changes propagate here) and
// real scores from the formula. Safe to run any number of times.
func Migrate(cat *models.Catalog) {
	for _, skin := range cat.Skins {
		skin.ListPrice = score.ResolveListPrice(skin.Quality, cat.QualityConfig)
		skin.RealScore = score.RealScore(skin.Score, skin.ListPrice, skin.RealPrice)
	}
}

// mergeDefaultQuality forces code-defined price and name over whatever the
// file carried, and adds tiers the file does not know about. Styling and
// extra tiers from the file survive.
func mergeDefaultQuality(table models.QualityConfig) {
	for key, def := range models.DefaultQualityConfig() {
		if cur, ok := table[key]; ok {
			cur.Price = def.Price
			cur.Name = def.Name
			table[key] = cur
		} else {
			table[key] = def
		}
	}
}

// scrubNaN: NaN is not valid JSON; persist it as null like the old files.
func scrubNaN(skins []*models.Skin) {
	for _, s := range skins {
		if s.Score != nil && math.IsNaN(*s.Score) {
			s.Score = nil
		}
		if s.RealScore != nil && math.IsNaN(*s.RealScore) {
			s.RealScore = nil
		}
	}
}
