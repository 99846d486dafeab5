package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ratery_backend/internal/models"
	"ratery_backend/test/helpers"
)

func createRating(t *testing.T, db *gorm.DB, repo RatingRepository, raterID, ratedID, photoID string, score, power float64) *models.Rating {
	t.Helper()
	rating := &models.Rating{
		RaterID:    raterID,
		RatedID:    ratedID,
		PhotoID:    photoID,
		Score:      score,
		RaterPower: power,
		IsCounted:  true,
	}
	require.NoError(t, repo.Create(db, rating))
	return rating
}

func TestRatingRepository_CreateRejectsDuplicate(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewRatingRepository()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	rated := helpers.CreateUser(t, db, "rated@example.com")
	photo := helpers.CreateActivePhoto(t, db, rated.ID)

	createRating(t, db, repo, rater.ID, rated.ID, photo.ID, 7, 1)

	dup := &models.Rating{
		RaterID:    rater.ID,
		RatedID:    rated.ID,
		PhotoID:    photo.ID,
		Score:      3,
		RaterPower: 1,
		IsCounted:  true,
	}
	err := repo.Create(db, dup)
	assert.ErrorIs(t, err, ErrRatingDuplicate)

	// Первая оценка неизменна
	saved, err := repo.FindByRaterAndPhoto(db, rater.ID, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, saved.Score)
}

func TestRatingRepository_UncountedFlagPersists(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewRatingRepository()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	rated := helpers.CreateUser(t, db, "rated@example.com")
	photo := helpers.CreateActivePhoto(t, db, rated.ID)

	voided := &models.Rating{
		RaterID:    rater.ID,
		RatedID:    rated.ID,
		PhotoID:    photo.ID,
		Score:      2,
		RaterPower: 1,
		IsCounted:  false,
	}
	require.NoError(t, repo.Create(db, voided))

	// false не должен молча превращаться в true при вставке
	var saved models.Rating
	require.NoError(t, db.First(&saved, "id = ?", voided.ID).Error)
	assert.False(t, saved.IsCounted)

	// Аннулированная оценка не попадает в агрегаты
	agg, err := repo.AggregateForUser(db, rated.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.Total)
}

func TestRatingRepository_AggregateForUser(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewRatingRepository()

	rated := helpers.CreateUser(t, db, "rated@example.com")
	photo := helpers.CreateActivePhoto(t, db, rated.ID)

	r1 := helpers.CreateUser(t, db, "r1@example.com")
	r2 := helpers.CreateUser(t, db, "r2@example.com")

	createRating(t, db, repo, r1.ID, rated.ID, photo.ID, 4, 1)
	createRating(t, db, repo, r2.ID, rated.ID, photo.ID, 8, 2)

	agg, err := repo.AggregateForUser(db, rated.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), agg.Total)
	assert.InDelta(t, 20.0, agg.WeightedSum, 0.001) // 4*1 + 8*2
	assert.InDelta(t, 3.0, agg.PowerSum, 0.001)
}

func TestRatingRepository_AggregateForUser_NoRatings(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewRatingRepository()

	rated := helpers.CreateUser(t, db, "rated@example.com")

	agg, err := repo.AggregateForUser(db, rated.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.Total)
	assert.Equal(t, 0.0, agg.WeightedSum)
	assert.Equal(t, 0.0, agg.PowerSum)
}

func TestRatingRepository_ScoreDistribution(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewRatingRepository()

	rated := helpers.CreateUser(t, db, "rated@example.com")
	photo := helpers.CreateActivePhoto(t, db, rated.ID)

	scores := []float64{7, 7, 7, 3, 10}
	for i, score := range scores {
		rater := helpers.CreateUser(t, db, "d"+string(rune('a'+i))+"@example.com")
		createRating(t, db, repo, rater.ID, rated.ID, photo.ID, score, 1)
	}

	dist, err := repo.ScoreDistributionForUser(db, rated.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dist["7"])
	assert.Equal(t, int64(1), dist["3"])
	assert.Equal(t, int64(1), dist["10"])
	assert.NotContains(t, dist, "5")
}

func TestRatingRepository_FindByRaterPaginated(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := NewRatingRepository()

	rater := helpers.CreateUser(t, db, "rater@example.com")
	for i := 0; i < 3; i++ {
		rated := helpers.CreateUser(t, db, "p"+string(rune('a'+i))+"@example.com")
		photo := helpers.CreateActivePhoto(t, db, rated.ID)
		createRating(t, db, repo, rater.ID, rated.ID, photo.ID, 5, 1)
	}

	ratings, total, err := repo.FindByRater(db, rater.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, ratings, 2)

	count, err := repo.CountByRater(db, rater.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
