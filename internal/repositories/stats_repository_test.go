package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ratery_backend/internal/models"
	"ratery_backend/test/helpers"
)

func seedVisibleStats(t *testing.T, db *gorm.DB, email string, rating float64) *models.User {
	t.Helper()
	user := helpers.CreateUser(t, db, email)
	require.NoError(t, db.Model(&models.RatingStats{}).
		Where("user_id = ?", user.ID).
		Updates(map[string]interface{}{
			"current_rating":         rating,
			"ratings_received_count": models.MinRatingsForVisibility,
			"is_rating_visible":      true,
		}).Error)
	return user
}

func TestStatsRepository_IncrementGivenCount(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewStatsRepository()

	user := helpers.CreateUser(t, db, "user@example.com")

	require.NoError(t, repo.IncrementGivenCount(db, user.ID))
	require.NoError(t, repo.IncrementGivenCount(db, user.ID))

	stats, err := repo.FindByUserID(db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RatingsGivenCount)
}

func TestStatsRepository_PercentileCounts(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewStatsRepository()

	for i, rating := range []float64{4, 6, 8} {
		seedVisibleStats(t, db, fmt.Sprintf("v%d@example.com", i), rating)
	}
	// Невидимые строки в популяцию не входят
	helpers.CreateUser(t, db, "hidden@example.com")

	atOrBelow, total, err := repo.PercentileCounts(db, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(2), atOrBelow)
	assert.Equal(t, int64(3), total)
}

func TestStatsRepository_SnapshotCurrentInto(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewStatsRepository()

	user := seedVisibleStats(t, db, "user@example.com", 7.5)
	// У пользователя без рейтинга снимок не пишется
	helpers.CreateUser(t, db, "unrated@example.com")

	updated, err := repo.SnapshotCurrentInto(db, "rating_7d_ago")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	stats, err := repo.FindByUserID(db, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stats.Rating7dAgo)
	assert.InDelta(t, 7.5, *stats.Rating7dAgo, 0.001)
	assert.Nil(t, stats.Rating30dAgo)
}

func TestStatsRepository_SnapshotRejectsUnknownColumn(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewStatsRepository()

	_, err := repo.SnapshotCurrentInto(db, "current_rating; DROP TABLE rating_stats")
	assert.Error(t, err)
}

func TestStatsRepository_SaveOverwritesNulls(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewStatsRepository()

	user := seedVisibleStats(t, db, "user@example.com", 9.0)

	stats, err := repo.FindByUserID(db, user.ID)
	require.NoError(t, err)

	stats.CurrentRating = nil
	stats.IsRatingVisible = false
	require.NoError(t, repo.Save(db, stats))

	reloaded, err := repo.FindByUserID(db, user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CurrentRating)
	assert.False(t, reloaded.IsRatingVisible)
}
