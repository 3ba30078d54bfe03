package models

import (
	"math"
	"sort"
	"strconv"
)

// Skin 皮肤条目。After the load-time migration every field is populated;
// only Score/RealScore stay nil, which means "not ranked".
type Skin struct {
	Quality        float64  `json:"quality"`
	Name           string   `json:"name"`
	Score          *float64 `json:"score"`
	RealScore      *float64 `json:"real_score"`
	Growth         float64  `json:"growth"` // percentage points, 1.5 == 1.5%
	ListPrice      float64  `json:"list_price"`
	RealPrice      float64  `json:"real_price"`
	OnLeaderboard  bool     `json:"on_leaderboard"`
	IsNew          bool     `json:"is_new"`
	IsRerun        bool     `json:"is_rerun"`
	IsPreset       bool     `json:"is_preset"`
	IsDiscontinued bool     `json:"is_discontinued"`
	LocalImg       string   `json:"local_img"`
	DescImg        string   `json:"desc_img,omitempty"`
}

// QualityTier 品质配置。Only Price and Parent matter to the score engine,
// the rest is page styling.
type QualityTier struct {
	Price   float64 `json:"price"`
	Parent  *string `json:"parent"`
	Name    string  `json:"name"`
	Scale   float64 `json:"scale"`
	BgColor string  `json:"bg_color"`
}

// QualityConfig maps a canonical tier key ("50", "3.5") to its config.
type QualityConfig map[string]QualityTier

// Catalog is the persisted document: everything the tool knows lives in
// one JSON file.
type Catalog struct {
	Skins         []*Skin       `json:"skins"`
	Instructions  []string      `json:"instructions"`
	QualityConfig QualityConfig `json:"quality_config"`
}

// Status returns the single display state, highest priority first:
// 绝版 > 预设 > 新品 > 返场.
func (s *Skin) Status() string {
	switch {
	case s.IsDiscontinued:
		return "discontinued"
	case s.IsPreset:
		return "preset"
	case s.IsNew:
		return "new"
	case s.IsRerun:
		return "rerun"
	}
	return ""
}

// Ranked reports whether the skin participates in the ranked ordering the
// insertion algorithm interpolates against.
func (s *Skin) Ranked() bool {
	return s.OnLeaderboard && !s.IsPreset && !s.IsDiscontinued
}

// TierKey normalizes a numeric quality code into the canonical config key:
// integers lose the ".0" suffix, sub-tiers keep their fraction.
func TierKey(quality float64) string {
	if quality == math.Trunc(quality) {
		return strconv.FormatFloat(quality, 'f', 0, 64)
	}
	return strconv.FormatFloat(quality, 'f', -1, 64)
}

// sortGroup: 0 active, 1 preset, 10 discontinued. Same grouping the old
// data files were saved with.
func sortGroup(s *Skin) int {
	if s.IsDiscontinued {
		return 10
	}
	if s.IsPreset {
		return 1
	}
	return 0
}

// SortCatalog orders skins the way they are persisted and rendered:
// active group by score descending with nil scores last, then presets and
// discontinued skins by quality code.
func SortCatalog(skins []*Skin) {
	sort.SliceStable(skins, func(i, j int) bool {
		a, b := skins[i], skins[j]
		ga, gb := sortGroup(a), sortGroup(b)
		if ga != gb {
			return ga < gb
		}
		if ga != 0 {
			return a.Quality < b.Quality
		}
		if (a.Score == nil) != (b.Score == nil) {
			return b.Score == nil
		}
		if a.Score == nil {
			return false
		}
		return *a.Score > *b.Score
	})
}

// RankedView filters and orders the subset the score engine sees:
// on-board, not preset, not discontinued, score present, best first.
func RankedView(skins []*Skin) []*Skin {
	var out []*Skin
	for _, s := range skins {
		if s.Ranked() && s.Score != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].Score > *out[j].Score
	})
	return out
}

// DefaultInstructions shown in the page's info modal.
func DefaultInstructions() []string {
	return []string{"本榜单数据仅供参考", "数据更新时间以页面显示为准"}
}

func strptr(s string) *string { return &s }

// DefaultQualityConfig is the built-in tier table. Code is the source of
// truth for price and name; a persisted table only contributes extra tiers
// and styling.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		"1":     {Price: 48.8, Parent: nil, Name: "勇者", Scale: 0.9, BgColor: "#ffffff"},
		"20":    {Price: 48.8, Parent: strptr("1"), Name: "勇者", Scale: 1.1, BgColor: "#ffffff"},
		"50":    {Price: 18.8, Parent: nil, Name: "战令限定", Scale: 1.0, BgColor: "#ffffff"},
		"50.1":  {Price: 18.8, Parent: strptr("50"), Name: "战令限定", Scale: 1.0, BgColor: "#ffffff"},
		"100":   {Price: 71.0, Parent: nil, Name: "史诗", Scale: 1.1, BgColor: "#ffffff"},
		"250":   {Price: 135.0, Parent: nil, Name: "传说", Scale: 1.2, BgColor: "#ffffff"},
		"500":   {Price: 143.0, Parent: nil, Name: "传说限定", Scale: 1.1, BgColor: "#e0f2fe"},
		"900":   {Price: 143.0, Parent: strptr("500"), Name: "马年限定", Scale: 1.0, BgColor: "#ffffff"},
		"1000":  {Price: 200.0, Parent: nil, Name: "珍品传说", Scale: 1.0, BgColor: "#bfdbfe"},
		"2500":  {Price: 600.0, Parent: nil, Name: "荣耀典藏", Scale: 1.4, BgColor: "#fff7cd"},
		"5000":  {Price: 400.0, Parent: nil, Name: "无双", Scale: 1.0, BgColor: "#f3e8ff"},
		"7500":  {Price: 400.0, Parent: strptr("5000"), Name: "无双", Scale: 1.0, BgColor: "#f3e8ff"},
		"10000": {Price: 800.0, Parent: nil, Name: "珍品无双", Scale: 1.1, BgColor: "#ffdcdc"},
	}
}
