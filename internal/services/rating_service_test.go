package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
	"ratery_backend/test/helpers"
)

func newRatingService() RatingService {
	statsRepo := repositories.NewStatsRepository()
	ratingRepo := repositories.NewRatingRepository()
	statsSvc := NewStatsService(statsRepo, ratingRepo)
	return NewRatingService(repositories.NewQueueRepository(), ratingRepo, statsRepo, statsSvc)
}

// seedRatableUsers создает N пользователей с активными одобренными фото
func seedRatableUsers(t *testing.T, db *gorm.DB, n int) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u := helpers.CreateUser(t, db, testEmail(i))
		helpers.CreateActivePhoto(t, db, u.ID)
		users = append(users, u)
	}
	return users
}

func testEmail(i int) string {
	return "target" + string(rune('a'+i)) + "@example.com"
}

func TestGenerateQueue_PriorityOrder(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRatableUsers(t, db, 3)

	inserted, err := svc.GenerateQueue(db, rater.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	var items []models.QueueItem
	require.NoError(t, db.Where("rater_user_id = ?", rater.ID).
		Order("priority DESC").Find(&items).Error)
	require.Len(t, items, 3)

	// queue_size = 10, приоритеты убывают с позиции кандидата
	assert.Equal(t, 10, items[0].Priority)
	assert.Equal(t, 9, items[1].Priority)
	assert.Equal(t, 8, items[2].Priority)
	for _, item := range items {
		assert.Equal(t, models.QueueStatePending, item.State)
	}
}

func TestGenerateQueue_Idempotent(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRatableUsers(t, db, 3)

	inserted, err := svc.GenerateQueue(db, rater.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	// Повторная генерация не плодит дубликатов
	inserted, err = svc.GenerateQueue(db, rater.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)

	var count int64
	require.NoError(t, db.Model(&models.QueueItem{}).
		Where("rater_user_id = ?", rater.ID).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestGenerateQueue_ExcludesOwnAndUnratable(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	helpers.CreateActivePhoto(t, db, rater.ID)

	// Фото на модерации в очередь не попадает
	pendingOwner := helpers.CreateUser(t, db, "pending@example.com")
	photo := &models.Photo{
		UserID:   pendingOwner.ID,
		URL:      "/api/v1/files/photos/pending.jpg",
		Status:   models.PhotoStatusPending,
		IsActive: true,
	}
	require.NoError(t, db.Create(photo).Error)

	inserted, err := svc.GenerateQueue(db, rater.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
}

func TestNextTarget_ClaimsAndResumes(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRatableUsers(t, db, 2)

	// Очередь пополняется на месте, первая строка переходит в shown
	first, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.QueueItemID)
	assert.NotEmpty(t, first.PhotoURL)
	assert.Equal(t, int64(1), first.QueueRemaining)

	var item models.QueueItem
	require.NoError(t, db.First(&item, "id = ?", first.QueueItemID).Error)
	assert.Equal(t, models.QueueStateShown, item.State)

	// Повторный запрос без оценки возвращает ту же строку
	again, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)
	assert.Equal(t, first.QueueItemID, again.QueueItemID)
}

func TestNextTarget_EmptyQueue(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")

	_, err := svc.NextTarget(db, rater.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoCandidates))
}

func TestNextTarget_RatedPhotoNeverResurfaces(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRatableUsers(t, db, 1)

	target, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)

	_, err = svc.SubmitRating(db, rater.ID, &dto.SubmitRatingRequest{
		QueueItemID: target.QueueItemID,
		Score:       7,
	})
	require.NoError(t, err)

	// Единственное фото уже оценено, кандидатов больше нет
	_, err = svc.NextTarget(db, rater.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoCandidates))
}

func TestSubmitRating_Success(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUserWithPower(t, db, "rater@example.com", 1.5)
	targets := seedRatableUsers(t, db, 1)

	target, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)

	duration := int64(2500)
	resp, err := svc.SubmitRating(db, rater.ID, &dto.SubmitRatingRequest{
		QueueItemID:    target.QueueItemID,
		Score:          8,
		ViewDurationMs: &duration,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RatingsGivenCount)
	assert.Equal(t, int64(0), resp.QueueRemaining)

	// Сила голоса заморожена в самой оценке
	var rating models.Rating
	require.NoError(t, db.First(&rating, "id = ?", resp.RatingID).Error)
	assert.Equal(t, 8.0, rating.Score)
	assert.Equal(t, 1.5, rating.RaterPower)
	assert.Equal(t, targets[0].ID, rating.RatedID)

	// Агрегаты цели пересчитаны сразу
	var stats models.RatingStats
	require.NoError(t, db.First(&stats, "user_id = ?", targets[0].ID).Error)
	assert.Equal(t, 1, stats.RatingsReceivedCount)
	require.NotNil(t, stats.CurrentRating)
	assert.InDelta(t, 8.0, *stats.CurrentRating, 0.001)
	assert.False(t, stats.IsRatingVisible)
}

func TestSubmitRating_ScoreOutOfRange(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")

	_, err := svc.SubmitRating(db, rater.ID, &dto.SubmitRatingRequest{
		QueueItemID: "whatever",
		Score:       11,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrScoreOutOfRange))
}

func TestSubmitRating_ConsumedRow(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRatableUsers(t, db, 1)

	target, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)

	req := &dto.SubmitRatingRequest{QueueItemID: target.QueueItemID, Score: 5}
	_, err = svc.SubmitRating(db, rater.ID, req)
	require.NoError(t, err)

	// Строка уже закрыта, повторная отправка отклоняется
	_, err = svc.SubmitRating(db, rater.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrQueueRowConsumed))
}

func TestSubmitRating_ForeignQueueItem(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	other := helpers.CreateUser(t, db, "other@example.com")
	seedRatableUsers(t, db, 1)

	target, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)

	_, err = svc.SubmitRating(db, other.ID, &dto.SubmitRatingRequest{
		QueueItemID: target.QueueItemID,
		Score:       5,
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, 403, appErr.HTTPCode)
}

func TestWithTransientRetry_RetriesDatabaseFailureOnce(t *testing.T) {
	calls := 0
	err := withTransientRetry(func() error {
		calls++
		if calls == 1 {
			return apperrors.DatabaseError(errors.New("connection reset"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithTransientRetry_DoesNotRetryBusinessErrors(t *testing.T) {
	calls := 0
	err := withTransientRetry(func() error {
		calls++
		return apperrors.ErrQueueRowConsumed
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrQueueRowConsumed))
	assert.Equal(t, 1, calls)
}

func TestWithTransientRetry_Bounded(t *testing.T) {
	calls := 0
	dbErr := apperrors.DatabaseError(errors.New("connection reset"))
	err := withTransientRetry(func() error {
		calls++
		return dbErr
	})
	// Один повтор, затем сбой уходит наверх
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, dbErr))
	assert.Equal(t, 2, calls)
}

func TestSkipTarget(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newRatingService()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRatableUsers(t, db, 1)

	target, err := svc.NextTarget(db, rater.ID)
	require.NoError(t, err)

	req := &dto.SkipTargetRequest{QueueItemID: target.QueueItemID}
	require.NoError(t, svc.SkipTarget(db, rater.ID, req))

	var item models.QueueItem
	require.NoError(t, db.First(&item, "id = ?", target.QueueItemID).Error)
	assert.Equal(t, models.QueueStateSkipped, item.State)

	// Пропущенная строка терминальна
	err = svc.SkipTarget(db, rater.ID, req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrQueueRowConsumed))

	// Пока кулдаун не снят, фото не возвращается в очередь
	_, err = svc.NextTarget(db, rater.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNoCandidates))
}
