package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// MinRatingsForVisibility - минимум полученных оценок, после которого
// индекс раскрывается пользователю. Граница точная: count >= 20.
const MinRatingsForVisibility = 20

// RatingStats - денормализованная строка агрегатов, одна на пользователя.
// Меняется только пересчетом.
type RatingStats struct {
	BaseModel
	UserID               string `gorm:"uniqueIndex;not null"`
	CurrentRating        *float64
	Rating7dAgo          *float64 `gorm:"column:rating_7d_ago"`
	Rating30dAgo         *float64 `gorm:"column:rating_30d_ago"`
	Percentile           *float64
	RatingsReceivedCount int     `gorm:"default:0"`
	RatingsGivenCount    int     `gorm:"default:0"`
	RatingPower          float64 `gorm:"default:1"`
	IsRatingVisible      bool    `gorm:"default:false"`
	ScoreDistribution    datatypes.JSON `gorm:"type:jsonb"` // {"1":0,...,"10":3}
}

// GetScoreDistribution возвращает распределение оценок по целым корзинам 1..10
func (s *RatingStats) GetScoreDistribution() map[string]int64 {
	dist := make(map[string]int64)
	if len(s.ScoreDistribution) > 0 {
		_ = json.Unmarshal(s.ScoreDistribution, &dist)
	}
	return dist
}

// SetScoreDistribution устанавливает распределение оценок
func (s *RatingStats) SetScoreDistribution(dist map[string]int64) {
	data, _ := json.Marshal(dist)
	s.ScoreDistribution = datatypes.JSON(data)
}
