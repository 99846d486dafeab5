package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ratery_backend/internal/models"
)

var (
	ErrQueueItemNotFound = errors.New("queue item not found")
	ErrQueueEmpty        = errors.New("rating queue is empty")
)

type QueueRepository interface {
	BulkInsert(db *gorm.DB, items []models.QueueItem) (int64, error)
	FindByID(db *gorm.DB, id string) (*models.QueueItem, error)
	FindShownByRater(db *gorm.DB, raterID string) (*models.QueueItem, error)
	NextPending(db *gorm.DB, raterID string) (*models.QueueItem, error)
	MarkShown(db *gorm.DB, id string) (bool, error)
	MarkRated(db *gorm.DB, id string) (bool, error)
	MarkSkipped(db *gorm.DB, id string) (bool, error)
	CountPendingByRater(db *gorm.DB, raterID string) (int64, error)
	DeleteTerminalOlderThan(db *gorm.DB, cutoff time.Time) (int64, error)
	CandidatePhotos(db *gorm.DB, raterID string, limit int) ([]models.Photo, error)
}

type QueueRepositoryImpl struct{}

func NewQueueRepository() QueueRepository {
	return &QueueRepositoryImpl{}
}

// BulkInsert вставляет пачку строк очереди. Пары (rater, photo), уже
// присутствующие в очереди, молча пропускаются, генерация идемпотентна.
func (r *QueueRepositoryImpl) BulkInsert(db *gorm.DB, items []models.QueueItem) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "rater_user_id"}, {Name: "photo_id"}},
		DoNothing: true,
	}).Create(&items)

	return result.RowsAffected, result.Error
}

func (r *QueueRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.QueueItem, error) {
	var item models.QueueItem
	err := db.First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindShownByRater возвращает строку, уже выданную оценщику и еще не
// закрытую. Такая строка может быть максимум одна на оценщика.
func (r *QueueRepositoryImpl) FindShownByRater(db *gorm.DB, raterID string) (*models.QueueItem, error) {
	var item models.QueueItem
	err := db.Preload("Target").Preload("Photo").
		Where("rater_user_id = ? AND state = ?", raterID, models.QueueStateShown).
		Order("updated_at DESC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// NextPending возвращает следующую ожидающую строку очереди.
// Порядок стабильный: приоритет по убыванию, затем created_at, затем id.
func (r *QueueRepositoryImpl) NextPending(db *gorm.DB, raterID string) (*models.QueueItem, error) {
	var item models.QueueItem
	err := db.Preload("Target").Preload("Photo").
		Where("rater_user_id = ? AND state = ?", raterID, models.QueueStatePending).
		Order("priority DESC, created_at ASC, id ASC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueEmpty
		}
		return nil, err
	}
	return &item, nil
}

// MarkShown переводит pending -> shown. Ноль затронутых строк означает,
// что строку успел забрать параллельный запрос.
func (r *QueueRepositoryImpl) MarkShown(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.QueueItem{}).
		Where("id = ? AND state = ?", id, models.QueueStatePending).
		Update("state", models.QueueStateShown)
	return result.RowsAffected > 0, result.Error
}

// MarkRated закрывает строку оценкой. Разрешен переход и из pending:
// клиент мог оценить без предварительного показа.
func (r *QueueRepositoryImpl) MarkRated(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.QueueItem{}).
		Where("id = ? AND state IN ?", id, []models.QueueState{models.QueueStateShown, models.QueueStatePending}).
		Update("state", models.QueueStateRated)
	return result.RowsAffected > 0, result.Error
}

func (r *QueueRepositoryImpl) MarkSkipped(db *gorm.DB, id string) (bool, error) {
	result := db.Model(&models.QueueItem{}).
		Where("id = ? AND state IN ?", id, []models.QueueState{models.QueueStateShown, models.QueueStatePending}).
		Update("state", models.QueueStateSkipped)
	return result.RowsAffected > 0, result.Error
}

func (r *QueueRepositoryImpl) CountPendingByRater(db *gorm.DB, raterID string) (int64, error) {
	var count int64
	err := db.Model(&models.QueueItem{}).
		Where("rater_user_id = ? AND state = ?", raterID, models.QueueStatePending).
		Count(&count).Error
	return count, err
}

// DeleteTerminalOlderThan чистит закрытые строки очереди старше cutoff.
// После удаления skipped-строки фото снова может попасть в очередь,
// оцененные фото исключает сама таблица ratings.
func (r *QueueRepositoryImpl) DeleteTerminalOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("state IN ? AND updated_at < ?",
		[]models.QueueState{models.QueueStateRated, models.QueueStateSkipped}, cutoff).
		Delete(&models.QueueItem{})
	return result.RowsAffected, result.Error
}

// CandidatePhotos подбирает фото для новой порции очереди: активные,
// одобренные, не своего фото, еще не оцененные и не лежащие в очереди.
// Владельцы с меньшим числом полученных оценок идут первыми.
func (r *QueueRepositoryImpl) CandidatePhotos(db *gorm.DB, raterID string, limit int) ([]models.Photo, error) {
	var photos []models.Photo
	err := db.Model(&models.Photo{}).
		Joins("LEFT JOIN rating_stats ON rating_stats.user_id = photos.user_id").
		Where("photos.is_active = ? AND photos.status = ?", true, models.PhotoStatusApproved).
		Where("photos.user_id != ?", raterID).
		Where("photos.id NOT IN (?)",
			db.Model(&models.Rating{}).Select("photo_id").Where("rater_id = ?", raterID)).
		Where("photos.id NOT IN (?)",
			db.Model(&models.QueueItem{}).Select("photo_id").Where("rater_user_id = ?", raterID)).
		Order("COALESCE(rating_stats.ratings_received_count, 0) ASC, photos.created_at ASC").
		Limit(limit).
		Find(&photos).Error
	return photos, err
}
