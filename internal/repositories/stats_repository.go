package repositories

import (
	"errors"

	"gorm.io/gorm"

	"ratery_backend/internal/models"
)

var ErrStatsNotFound = errors.New("rating stats not found")

type StatsRepository interface {
	Create(db *gorm.DB, stats *models.RatingStats) error
	FindByUserID(db *gorm.DB, userID string) (*models.RatingStats, error)
	Save(db *gorm.DB, stats *models.RatingStats) error
	IncrementGivenCount(db *gorm.DB, userID string) error
	PercentileCounts(db *gorm.DB, rating float64) (atOrBelow int64, total int64, err error)
	ListVisible(db *gorm.DB) ([]models.RatingStats, error)
	SnapshotCurrentInto(db *gorm.DB, column string) (int64, error)
}

type StatsRepositoryImpl struct{}

func NewStatsRepository() StatsRepository {
	return &StatsRepositoryImpl{}
}

func (r *StatsRepositoryImpl) Create(db *gorm.DB, stats *models.RatingStats) error {
	return db.Create(stats).Error
}

func (r *StatsRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.RatingStats, error) {
	var stats models.RatingStats
	err := db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// Save перезаписывает строку агрегатов целиком, включая NULL-поля
func (r *StatsRepositoryImpl) Save(db *gorm.DB, stats *models.RatingStats) error {
	return db.Save(stats).Error
}

// IncrementGivenCount атомарно увеличивает счетчик выставленных оценок
func (r *StatsRepositoryImpl) IncrementGivenCount(db *gorm.DB, userID string) error {
	result := db.Model(&models.RatingStats{}).
		Where("user_id = ?", userID).
		Update("ratings_given_count", gorm.Expr("ratings_given_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatsNotFound
	}
	return nil
}

// PercentileCounts считает перцентиль через два COUNT по видимым пользователям:
// сколько видимых рейтингов <= переданного и сколько видимых всего.
func (r *StatsRepositoryImpl) PercentileCounts(db *gorm.DB, rating float64) (int64, int64, error) {
	var total int64
	if err := db.Model(&models.RatingStats{}).
		Where("is_rating_visible = ? AND current_rating IS NOT NULL", true).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}

	var atOrBelow int64
	if err := db.Model(&models.RatingStats{}).
		Where("is_rating_visible = ? AND current_rating IS NOT NULL AND current_rating <= ?", true, rating).
		Count(&atOrBelow).Error; err != nil {
		return 0, 0, err
	}

	return atOrBelow, total, nil
}

func (r *StatsRepositoryImpl) ListVisible(db *gorm.DB) ([]models.RatingStats, error) {
	var stats []models.RatingStats
	err := db.Where("is_rating_visible = ? AND current_rating IS NOT NULL", true).
		Find(&stats).Error
	return stats, err
}

// SnapshotCurrentInto копирует current_rating в историческую колонку
// (rating_7d_ago или rating_30d_ago) одним UPDATE по всем строкам
func (r *StatsRepositoryImpl) SnapshotCurrentInto(db *gorm.DB, column string) (int64, error) {
	if column != "rating_7d_ago" && column != "rating_30d_ago" {
		return 0, errors.New("unsupported snapshot column: " + column)
	}

	result := db.Exec("UPDATE rating_stats SET " + column + " = current_rating WHERE current_rating IS NOT NULL")
	return result.RowsAffected, result.Error
}
