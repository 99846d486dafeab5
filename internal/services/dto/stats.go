package dto

// StatsResponse - индекс восприятия пользователя.
// Пока оценок меньше порога видимости, числовые поля скрыты
// и заполнен только прогресс.
type StatsResponse struct {
	IsVisible            bool             `json:"is_visible"`
	RatingsReceivedCount int              `json:"ratings_received_count"`
	RatingsNeeded        int              `json:"ratings_needed"`
	RatingsGivenCount    int              `json:"ratings_given_count"`
	RatingPower          float64          `json:"rating_power"`
	CurrentRating        *float64         `json:"current_rating,omitempty"`
	Rating7dAgo          *float64         `json:"rating_7d_ago,omitempty"`
	Rating30dAgo         *float64         `json:"rating_30d_ago,omitempty"`
	Percentile           *float64         `json:"percentile,omitempty"`
	ScoreDistribution    map[string]int64 `json:"score_distribution,omitempty"`
}
