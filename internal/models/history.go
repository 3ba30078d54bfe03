package models

import "time"

// ScoreEvent is one audit row per catalog mutation, kept in the local
// sqlite file. The JSON catalog stays the source of truth; this exists so
// score changes can be reviewed after the fact.
type ScoreEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SkinName  string    `json:"skin_name" gorm:"index;not null"`
	Action    string    `json:"action" gorm:"index;not null"` // add, launch, discontinue, set_score, remove, delete, import
	Rank      int       `json:"rank"`
	Score     float64   `json:"score"`
	RealScore float64   `json:"real_score"`
	RealPrice float64   `json:"real_price"`
	Growth    float64   `json:"growth"`
	CreatedAt time.Time `json:"created_at"`
}
