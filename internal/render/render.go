// Package render turns a catalog snapshot into the static leaderboard
// page published to GitHub Pages.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hok11/hok-rank/internal/models"
)

//go:embed template.html
var templateFS embed.FS

// Renderer works against one pages-repo checkout: data, avatars,
// description images and the generated index.html all live under RepoPath.
type Renderer struct {
	RepoPath string
}

func New(repoPath string) *Renderer {
	return &Renderer{RepoPath: repoPath}
}

// SafeName maps a skin name to the filename the crawler saves under.
func SafeName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "")
	return r.Replace(name)
}

// ScanLocalImages mounts avatar files onto their skins. Returns true when
// the skin's path changed, following the store's AttachImages contract.
func (r *Renderer) ScanLocalImages(skin *models.Skin) bool {
	safe := SafeName(skin.Name)
	for _, ext := range []string{".gif", ".jpg", ".png", ".jpeg"} {
		rel := filepath.Join("skin_avatars", safe+ext)
		if _, err := os.Stat(filepath.Join(r.RepoPath, rel)); err == nil {
			rel = filepath.ToSlash(rel)
			if skin.LocalImg != rel {
				skin.LocalImg = rel
				return true
			}
			return false
		}
	}
	return false
}

// HeaderGifs lists the decorative gifs shown beside the page title.
func (r *Renderer) HeaderGifs() []string {
	entries, err := os.ReadDir(filepath.Join(r.RepoPath, "show"))
	if err != nil {
		return nil
	}
	var gifs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".gif") {
			gifs = append(gifs, e.Name())
		}
	}
	sort.Strings(gifs)
	return gifs
}

func (r *Renderer) descFiles() map[string]string {
	entries, err := os.ReadDir(filepath.Join(r.RepoPath, "skin_descs"))
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		out[strings.TrimSuffix(name, filepath.Ext(name))] = name
	}
	return out
}

type row struct {
	Rank       int
	ShowRank   bool
	QualityKey string
	ParentID   string
	IconClass  string
	Scale      float64
	BgColor    string
	TierName   string
	Quality    float64
	Name       string
	LocalImg   string
	DescImg    string
	BadgeClass string
	BadgeText  string
	Score      string
	ScoreVal   string
	RealScore  string
	Growth     float64
	GrowthText string
	GrowthCls  string
	ListPrice  float64
	RealPrice  string
	Special    bool
}

type pageData struct {
	UpdateTime   string
	LeftGifs     []string
	RightGifs    []string
	TierNames    []string
	Rows         []row
	Instructions []string
}

// resolveTierKey mirrors the list-price lookup's key tolerance so icons
// and colors land even for legacy quality codes ("3" vs "3.0").
func resolveTierKey(quality float64, table models.QualityConfig) string {
	key := models.TierKey(quality)
	if _, ok := table[key]; ok {
		return key
	}
	if _, ok := table[key+".0"]; ok {
		return key + ".0"
	}
	return key
}

func buildRow(rank int, skin *models.Skin, table models.QualityConfig) row {
	key := resolveTierKey(skin.Quality, table)
	cfg := table[key]
	parentID := ""
	root := cfg
	if cfg.Parent != nil {
		parentID = *cfg.Parent
		if p, ok := table[parentID]; ok {
			root = p
		}
	}
	scale := cfg.Scale
	if scale == 0 {
		scale = 1.0
	}
	bg := root.BgColor
	if bg == "" {
		bg = "#ffffff"
	}
	iconClass := ""
	switch root.Name {
	case "珍品无双":
		iconClass = "rare-wushuang-big"
	case "无双":
		iconClass = "wushuang-big"
	}
	rw := row{
		Rank:       rank,
		ShowRank:   !skin.IsPreset && !skin.IsDiscontinued,
		QualityKey: key,
		ParentID:   parentID,
		IconClass:  iconClass,
		Scale:      scale,
		BgColor:    bg,
		TierName:   cfg.Name,
		Quality:    skin.Quality,
		Name:       skin.Name,
		LocalImg:   skin.LocalImg,
		DescImg:    skin.DescImg,
		Growth:     skin.Growth,
		ListPrice:  skin.ListPrice,
	}
	if rw.LocalImg == "" {
		rw.LocalImg = "placeholder.jpg"
	}

	switch skin.Status() {
	case "discontinued":
		rw.BadgeClass, rw.BadgeText = "badge-out", "Out of Print"
	case "preset":
		rw.BadgeClass, rw.BadgeText = "badge-preset", "Coming Soon"
	case "new":
		rw.BadgeClass, rw.BadgeText = "badge-new", "New Arrival"
	case "rerun":
		rw.BadgeClass, rw.BadgeText = "badge-return", "Limit Return"
	}

	rw.Score, rw.ScoreVal = "--", "-999"
	if skin.Score != nil && !skin.IsDiscontinued {
		rw.Score = trimFloat(*skin.Score)
		rw.ScoreVal = rw.Score
	}
	rw.RealScore = "--"
	if skin.RealScore != nil {
		rw.RealScore = trimFloat(*skin.RealScore)
	}
	if skin.Growth != 0 {
		rw.GrowthText = trimFloat(skin.Growth) + "%"
		rw.Special = skin.Growth == 1.9
		switch {
		case rw.Special:
			rw.GrowthCls = "growth-special"
		case skin.Growth < 0:
			rw.GrowthCls = "growth-down"
		case skin.Growth >= 10:
			rw.GrowthCls = "growth-up-high"
		case skin.Growth >= 5:
			rw.GrowthCls = "growth-up-mid"
		}
	}
	rw.RealPrice = "--"
	if skin.RealPrice > 0 {
		rw.RealPrice = "¥" + trimFloat(skin.RealPrice)
	}
	return rw
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	s = strings.TrimSuffix(s, ".0")
	return s
}

// Page renders the full leaderboard document.
func (r *Renderer) Page(cat *models.Catalog, now time.Time) ([]byte, error) {
	models.SortCatalog(cat.Skins)

	descs := r.descFiles()
	gifs := r.HeaderGifs()

	data := pageData{
		UpdateTime:   now.Format("2006-01-02 15:04"),
		Instructions: cat.Instructions,
	}
	if len(gifs) > 2 {
		right := gifs[2:]
		if len(right) > 2 {
			right = right[:2]
		}
		data.LeftGifs, data.RightGifs = gifs[:2], right
	} else {
		data.LeftGifs = gifs
	}

	seenTier := make(map[string]bool)
	for _, tier := range cat.QualityConfig {
		if !seenTier[tier.Name] {
			seenTier[tier.Name] = true
			data.TierNames = append(data.TierNames, tier.Name)
		}
	}
	sort.Strings(data.TierNames)

	for i, skin := range cat.Skins {
		if d, ok := descs[skin.Name]; ok {
			skin.DescImg = d
		}
		data.Rows = append(data.Rows, buildRow(i+1, skin, cat.QualityConfig))
	}

	tmpl, err := template.ParseFS(templateFS, "template.html")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return []byte(buf.String()), nil
}

// WriteIndex renders and writes index.html into the pages repo.
func (r *Renderer) WriteIndex(cat *models.Catalog) error {
	html, err := r.Page(cat, time.Now())
	if err != nil {
		return err
	}
	out := filepath.Join(r.RepoPath, "index.html")
	if err := os.WriteFile(out, html, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
