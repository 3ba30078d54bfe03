// Package history records catalog mutations in the local sqlite file.
// Recording never blocks a mutation: failures are logged and swallowed.
package history

import (
	"log"

	"gorm.io/gorm"

	"github.com/hok11/hok-rank/internal/models"
)

type Recorder struct {
	db *gorm.DB
}

// NewRecorder wraps the history database. A nil db yields a recorder that
// drops everything, so callers can run without history configured.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(action string, skin *models.Skin, rank int) {
	if r == nil || r.db == nil {
		return
	}
	ev := models.ScoreEvent{
		SkinName:  skin.Name,
		Action:    action,
		Rank:      rank,
		RealPrice: skin.RealPrice,
		Growth:    skin.Growth,
	}
	if skin.Score != nil {
		ev.Score = *skin.Score
	}
	if skin.RealScore != nil {
		ev.RealScore = *skin.RealScore
	}
	if err := r.db.Create(&ev).Error; err != nil {
		log.Printf("历史记录写入失败: %v", err)
	}
}

// Recent returns up to limit events, newest first, optionally filtered by
// skin name.
func (r *Recorder) Recent(skinName string, limit int) ([]models.ScoreEvent, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	q := r.db.Order("created_at DESC").Limit(limit)
	if skinName != "" {
		q = q.Where("skin_name = ?", skinName)
	}
	var events []models.ScoreEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
