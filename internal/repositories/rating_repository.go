package repositories

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ratery_backend/internal/models"
)

var (
	ErrRatingNotFound  = errors.New("rating not found")
	ErrRatingDuplicate = errors.New("rating already exists for this photo")
)

// RatingAggregates - агрегаты по полученным оценкам одного пользователя
type RatingAggregates struct {
	WeightedSum float64 `json:"weighted_sum"`
	PowerSum    float64 `json:"power_sum"`
	Total       int64   `json:"total"`
}

type RatingRepository interface {
	Create(db *gorm.DB, rating *models.Rating) error
	FindByRaterAndPhoto(db *gorm.DB, raterID, photoID string) (*models.Rating, error)
	FindByRater(db *gorm.DB, raterID string, limit, offset int) ([]models.Rating, int64, error)
	AggregateForUser(db *gorm.DB, userID string) (*RatingAggregates, error)
	ScoreDistributionForUser(db *gorm.DB, userID string) (map[string]int64, error)
	CountByRater(db *gorm.DB, raterID string) (int64, error)
}

type RatingRepositoryImpl struct{}

func NewRatingRepository() RatingRepository {
	return &RatingRepositoryImpl{}
}

// Create вставляет оценку. Повторная оценка той же пары (rater, photo)
// не вставляется: уникальный индекс + DO NOTHING, ноль строк - дубликат.
func (r *RatingRepositoryImpl) Create(db *gorm.DB, rating *models.Rating) error {
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rater_id"}, {Name: "photo_id"}},
		DoNothing: true,
	}).Create(rating)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRatingDuplicate
	}
	return nil
}

func (r *RatingRepositoryImpl) FindByRaterAndPhoto(db *gorm.DB, raterID, photoID string) (*models.Rating, error) {
	var rating models.Rating
	err := db.Where("rater_id = ? AND photo_id = ?", raterID, photoID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepositoryImpl) FindByRater(db *gorm.DB, raterID string, limit, offset int) ([]models.Rating, int64, error) {
	var total int64
	if err := db.Model(&models.Rating{}).
		Where("rater_id = ?", raterID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ratings []models.Rating
	err := db.Preload("Photo").
		Where("rater_id = ?", raterID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ratings).Error

	return ratings, total, err
}

// AggregateForUser возвращает суммы для взвешенного среднего:
// sum(score * rater_power) и sum(rater_power) по учитываемым оценкам.
func (r *RatingRepositoryImpl) AggregateForUser(db *gorm.DB, userID string) (*RatingAggregates, error) {
	var agg RatingAggregates
	err := db.Model(&models.Rating{}).
		Where("rated_id = ? AND is_counted = ?", userID, true).
		Select("COALESCE(SUM(score * rater_power), 0) as weighted_sum, COALESCE(SUM(rater_power), 0) as power_sum, COUNT(*) as total").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

// ScoreDistributionForUser возвращает распределение оценок по целым корзинам
func (r *RatingRepositoryImpl) ScoreDistributionForUser(db *gorm.DB, userID string) (map[string]int64, error) {
	type bucketRow struct {
		Bucket int64
		Cnt    int64
	}

	var rows []bucketRow
	err := db.Model(&models.Rating{}).
		Where("rated_id = ? AND is_counted = ?", userID, true).
		Select("CAST(score AS INTEGER) as bucket, COUNT(*) as cnt").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dist := make(map[string]int64, len(rows))
	for _, row := range rows {
		dist[formatBucket(row.Bucket)] = row.Cnt
	}
	return dist, nil
}

func formatBucket(bucket int64) string {
	return strconv.FormatInt(bucket, 10)
}

func (r *RatingRepositoryImpl) CountByRater(db *gorm.DB, raterID string) (int64, error) {
	var count int64
	err := db.Model(&models.Rating{}).Where("rater_id = ?", raterID).Count(&count).Error
	return count, err
}
