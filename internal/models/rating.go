package models

const (
	MinScore = 1.0
	MaxScore = 10.0
)

// Rating - ребро "оценщик -> оцениваемый" по конкретному фото.
// Неизменяемо после создания. Уникальность: одна оценка на пару
// (оценщик, фото).
type Rating struct {
	BaseModel
	RaterID        string  `gorm:"not null;index;uniqueIndex:idx_ratings_rater_photo"`
	RatedID        string  `gorm:"not null;index"`
	PhotoID        string  `gorm:"not null;uniqueIndex:idx_ratings_rater_photo"`
	Score          float64 `gorm:"not null;check:score >= 1 AND score <= 10"`
	RaterPower     float64 `gorm:"not null;default:1"` // вес голоса на момент оценки
	ViewDurationMs *int64
	// Без default-тега: GORM с ним не вставляет false, и аннулированная
	// оценка была бы непредставима. Значение всегда выставляется явно.
	IsCounted bool `gorm:"not null"`

	// Relations
	Rater *User  `gorm:"foreignKey:RaterID"`
	Rated *User  `gorm:"foreignKey:RatedID"`
	Photo *Photo `gorm:"foreignKey:PhotoID"`
}

// ValidScore проверяет диапазон оценки [1,10]
func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}
