package services

import (
	"math"

	"gorm.io/gorm"

	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
)

type StatsService interface {
	GetMyStats(db *gorm.DB, userID string) (*dto.StatsResponse, error)
	RecalculateForUser(db *gorm.DB, userID string) (*models.RatingStats, error)
	RefreshPercentiles(db *gorm.DB) (int, error)
}

type StatsServiceImpl struct {
	statsRepo  repositories.StatsRepository
	ratingRepo repositories.RatingRepository
}

func NewStatsService(statsRepo repositories.StatsRepository, ratingRepo repositories.RatingRepository) StatsService {
	return &StatsServiceImpl{
		statsRepo:  statsRepo,
		ratingRepo: ratingRepo,
	}
}

// GetMyStats возвращает индекс восприятия текущего пользователя.
// До порога видимости числовые поля скрыты, виден только прогресс.
func (s *StatsServiceImpl) GetMyStats(db *gorm.DB, userID string) (*dto.StatsResponse, error) {
	stats, err := s.statsRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrStatsNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.DatabaseError(err)
	}

	resp := &dto.StatsResponse{
		IsVisible:            stats.IsRatingVisible,
		RatingsReceivedCount: stats.RatingsReceivedCount,
		RatingsGivenCount:    stats.RatingsGivenCount,
		RatingPower:          stats.RatingPower,
	}

	needed := models.MinRatingsForVisibility - stats.RatingsReceivedCount
	if needed < 0 {
		needed = 0
	}
	resp.RatingsNeeded = needed

	if stats.IsRatingVisible {
		resp.CurrentRating = stats.CurrentRating
		resp.Rating7dAgo = stats.Rating7dAgo
		resp.Rating30dAgo = stats.Rating30dAgo
		resp.Percentile = stats.Percentile
		resp.ScoreDistribution = stats.GetScoreDistribution()
	}

	return resp, nil
}

// RecalculateForUser пересчитывает агрегаты пользователя с нуля по
// таблице оценок. Пересчет идемпотентен: повторный вызов на тех же
// данных дает ту же строку.
func (s *StatsServiceImpl) RecalculateForUser(db *gorm.DB, userID string) (*models.RatingStats, error) {
	stats, err := s.statsRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrStatsNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.DatabaseError(err)
	}

	agg, err := s.ratingRepo.AggregateForUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	stats.RatingsReceivedCount = int(agg.Total)
	stats.IsRatingVisible = agg.Total >= models.MinRatingsForVisibility

	if agg.PowerSum > 0 {
		rating := agg.WeightedSum / agg.PowerSum
		stats.CurrentRating = &rating
	} else {
		stats.CurrentRating = nil
	}

	dist, err := s.ratingRepo.ScoreDistributionForUser(db, userID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	stats.SetScoreDistribution(dist)

	if !stats.IsRatingVisible {
		stats.Percentile = nil
	}

	// Сначала сохраняем видимость, чтобы собственная строка
	// пользователя участвовала в популяции перцентиля
	if err := s.statsRepo.Save(db, stats); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	if stats.IsRatingVisible && stats.CurrentRating != nil {
		pct, err := s.percentileFor(db, *stats.CurrentRating)
		if err != nil {
			return nil, err
		}
		stats.Percentile = pct
		if err := s.statsRepo.Save(db, stats); err != nil {
			return nil, apperrors.DatabaseError(err)
		}
	}

	return stats, nil
}

// RefreshPercentiles пересчитывает перцентили всех видимых пользователей.
// Вызывается воркером: перцентиль зависит от всей популяции и дрейфует
// даже без новых оценок этому пользователю.
func (s *StatsServiceImpl) RefreshPercentiles(db *gorm.DB) (int, error) {
	visible, err := s.statsRepo.ListVisible(db)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	updated := 0
	for i := range visible {
		stats := &visible[i]
		if stats.CurrentRating == nil {
			continue
		}

		pct, err := s.percentileFor(db, *stats.CurrentRating)
		if err != nil {
			return updated, err
		}

		stats.Percentile = pct
		if err := s.statsRepo.Save(db, stats); err != nil {
			return updated, apperrors.DatabaseError(err)
		}
		updated++
	}

	return updated, nil
}

// percentileFor - доля видимых пользователей с рейтингом не выше данного
func (s *StatsServiceImpl) percentileFor(db *gorm.DB, rating float64) (*float64, error) {
	atOrBelow, total, err := s.statsRepo.PercentileCounts(db, rating)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if total == 0 {
		return nil, nil
	}

	pct := math.Round(float64(atOrBelow)/float64(total)*1000) / 10
	return &pct, nil
}
