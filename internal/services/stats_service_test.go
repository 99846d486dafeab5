package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/test/helpers"
)

func newStatsService() StatsService {
	return NewStatsService(repositories.NewStatsRepository(), repositories.NewRatingRepository())
}

// seedRating вставляет оценку напрямую, минуя очередь
func seedRating(t *testing.T, db *gorm.DB, raterID, ratedID, photoID string, score, power float64) {
	t.Helper()
	rating := &models.Rating{
		RaterID:    raterID,
		RatedID:    ratedID,
		PhotoID:    photoID,
		Score:      score,
		RaterPower: power,
		IsCounted:  true,
	}
	require.NoError(t, db.Create(rating).Error)
}

func TestRecalculateForUser_WeightedMean(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newStatsService()

	target := helpers.CreateUser(t, db, "target@example.com")
	photo := helpers.CreateActivePhoto(t, db, target.ID)

	r1 := helpers.CreateUser(t, db, "r1@example.com")
	r2 := helpers.CreateUser(t, db, "r2@example.com")
	r3 := helpers.CreateUser(t, db, "r3@example.com")

	// (4*1 + 6*1 + 8*2) / (1+1+2) = 26/4 = 6.5
	seedRating(t, db, r1.ID, target.ID, photo.ID, 4, 1)
	seedRating(t, db, r2.ID, target.ID, photo.ID, 6, 1)
	seedRating(t, db, r3.ID, target.ID, photo.ID, 8, 2)

	stats, err := svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.RatingsReceivedCount)
	require.NotNil(t, stats.CurrentRating)
	assert.InDelta(t, 6.5, *stats.CurrentRating, 0.001)
	assert.False(t, stats.IsRatingVisible)

	dist := stats.GetScoreDistribution()
	assert.Equal(t, int64(1), dist["4"])
	assert.Equal(t, int64(1), dist["6"])
	assert.Equal(t, int64(1), dist["8"])
}

func TestRecalculateForUser_VisibilityThreshold(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newStatsService()

	target := helpers.CreateUser(t, db, "target@example.com")
	photo := helpers.CreateActivePhoto(t, db, target.ID)

	for i := 0; i < models.MinRatingsForVisibility-1; i++ {
		rater := helpers.CreateUser(t, db, fmt.Sprintf("rater%d@example.com", i))
		seedRating(t, db, rater.ID, target.ID, photo.ID, 7, 1)
	}

	stats, err := svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 19, stats.RatingsReceivedCount)
	assert.False(t, stats.IsRatingVisible)

	// Ровно на пороге рейтинг открывается и перцентиль считается
	last := helpers.CreateUser(t, db, "rater-last@example.com")
	seedRating(t, db, last.ID, target.ID, photo.ID, 7, 1)

	stats, err = svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.RatingsReceivedCount)
	assert.True(t, stats.IsRatingVisible)
	require.NotNil(t, stats.Percentile)
	assert.InDelta(t, 100.0, *stats.Percentile, 0.001)
}

func TestRecalculateForUser_Idempotent(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newStatsService()

	target := helpers.CreateUser(t, db, "target@example.com")
	photo := helpers.CreateActivePhoto(t, db, target.ID)
	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRating(t, db, rater.ID, target.ID, photo.ID, 9, 1)

	first, err := svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)
	second, err := svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)

	assert.Equal(t, first.RatingsReceivedCount, second.RatingsReceivedCount)
	assert.Equal(t, *first.CurrentRating, *second.CurrentRating)
}

func TestRecalculateForUser_IgnoresUncounted(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newStatsService()

	target := helpers.CreateUser(t, db, "target@example.com")
	photo := helpers.CreateActivePhoto(t, db, target.ID)
	r1 := helpers.CreateUser(t, db, "r1@example.com")
	r2 := helpers.CreateUser(t, db, "r2@example.com")

	seedRating(t, db, r1.ID, target.ID, photo.ID, 10, 1)

	// Аннулированная оценка не участвует в агрегатах
	voided := &models.Rating{
		RaterID:    r2.ID,
		RatedID:    target.ID,
		PhotoID:    photo.ID,
		Score:      1,
		RaterPower: 1,
		IsCounted:  false,
	}
	require.NoError(t, db.Create(voided).Error)

	stats, err := svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RatingsReceivedCount)
	assert.InDelta(t, 10.0, *stats.CurrentRating, 0.001)
}

func TestGetMyStats_HidesNumbersBelowThreshold(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newStatsService()

	target := helpers.CreateUser(t, db, "target@example.com")
	photo := helpers.CreateActivePhoto(t, db, target.ID)
	rater := helpers.CreateUser(t, db, "rater@example.com")
	seedRating(t, db, rater.ID, target.ID, photo.ID, 7, 1)

	_, err := svc.RecalculateForUser(db, target.ID)
	require.NoError(t, err)

	resp, err := svc.GetMyStats(db, target.ID)
	require.NoError(t, err)

	assert.False(t, resp.IsVisible)
	assert.Equal(t, 1, resp.RatingsReceivedCount)
	assert.Equal(t, 19, resp.RatingsNeeded)
	assert.Nil(t, resp.CurrentRating)
	assert.Nil(t, resp.Percentile)
	assert.Nil(t, resp.ScoreDistribution)
}

func TestRefreshPercentiles(t *testing.T) {
	helpers.InitTestConfig(t)
	db := helpers.NewTestDB(t)
	svc := newStatsService()

	// Два видимых пользователя с разными рейтингами
	low := 5.0
	high := 8.0
	for i, rating := range []float64{low, high} {
		u := helpers.CreateUser(t, db, fmt.Sprintf("visible%d@example.com", i))
		r := rating
		require.NoError(t, db.Model(&models.RatingStats{}).
			Where("user_id = ?", u.ID).
			Updates(map[string]interface{}{
				"current_rating":         r,
				"ratings_received_count": models.MinRatingsForVisibility,
				"is_rating_visible":      true,
			}).Error)
	}

	updated, err := svc.RefreshPercentiles(db)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	var all []models.RatingStats
	require.NoError(t, db.Where("is_rating_visible = ?", true).
		Order("current_rating ASC").Find(&all).Error)
	require.Len(t, all, 2)

	require.NotNil(t, all[0].Percentile)
	require.NotNil(t, all[1].Percentile)
	assert.InDelta(t, 50.0, *all[0].Percentile, 0.001)
	assert.InDelta(t, 100.0, *all[1].Percentile, 0.001)
}
