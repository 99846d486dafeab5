package services

import (
	"time"

	"gorm.io/gorm"

	"ratery_backend/internal/config"
	"ratery_backend/internal/logger"
	"ratery_backend/internal/models"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services/dto"
	"ratery_backend/pkg/apperrors"
)

// maxClaimAttempts ограничивает повторные попытки захвата строки очереди
// при гонке параллельных запросов одного пользователя
const maxClaimAttempts = 3

// transientAttempts - сколько раз выполняется операция при сбоях I/O:
// один повтор, затем ошибка уходит наверх
const transientAttempts = 2

// isTransientError - сбой базы, который имеет смысл повторить.
// Бизнес-ошибки (дубликат, закрытая строка, чужая строка) не повторяются.
func isTransientError(err error) bool {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		return appErr.Code == apperrors.CodeDatabaseError
	}
	return false
}

// withTransientRetry выполняет fn и повторяет ее один раз при сбое I/O
func withTransientRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < transientAttempts; attempt++ {
		err = fn()
		if err == nil || !isTransientError(err) {
			return err
		}
		logger.Warn("transient database failure, retrying", "attempt", attempt+1, "error", err)
	}
	return err
}

type RatingService interface {
	GenerateQueue(db *gorm.DB, raterID string) (int64, error)
	NextTarget(db *gorm.DB, raterID string) (*dto.NextTargetResponse, error)
	SubmitRating(db *gorm.DB, raterID string, req *dto.SubmitRatingRequest) (*dto.SubmitRatingResponse, error)
	SkipTarget(db *gorm.DB, raterID string, req *dto.SkipTargetRequest) error
}

type RatingServiceImpl struct {
	queueRepo  repositories.QueueRepository
	ratingRepo repositories.RatingRepository
	statsRepo  repositories.StatsRepository
	statsSvc   StatsService
}

func NewRatingService(
	queueRepo repositories.QueueRepository,
	ratingRepo repositories.RatingRepository,
	statsRepo repositories.StatsRepository,
	statsSvc StatsService,
) RatingService {
	return &RatingServiceImpl{
		queueRepo:  queueRepo,
		ratingRepo: ratingRepo,
		statsRepo:  statsRepo,
		statsSvc:   statsSvc,
	}
}

// GenerateQueue набирает новую порцию очереди для оценщика.
// Кандидаты ранжируются в пользу наименее оцененных владельцев,
// приоритет убывает с позицией. Повторный вызов безопасен: уже
// лежащие в очереди пары молча пропускаются, поэтому и повтор после
// сбоя I/O не плодит дубликатов.
func (s *RatingServiceImpl) GenerateQueue(db *gorm.DB, raterID string) (int64, error) {
	var inserted int64
	err := withTransientRetry(func() error {
		var genErr error
		inserted, genErr = s.generateQueue(db, raterID)
		return genErr
	})
	return inserted, err
}

func (s *RatingServiceImpl) generateQueue(db *gorm.DB, raterID string) (int64, error) {
	queueSize := config.GetConfig().Rating.QueueSize

	photos, err := s.queueRepo.CandidatePhotos(db, raterID, queueSize)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}
	if len(photos) == 0 {
		return 0, nil
	}

	items := make([]models.QueueItem, 0, len(photos))
	for i := range photos {
		items = append(items, models.QueueItem{
			RaterUserID:  raterID,
			TargetUserID: photos[i].UserID,
			PhotoID:      photos[i].ID,
			Priority:     queueSize - i,
			State:        models.QueueStatePending,
		})
	}

	inserted, err := s.queueRepo.BulkInsert(db, items)
	if err != nil {
		return 0, apperrors.DatabaseError(err)
	}

	logger.Info("rating queue generated",
		"rater_id", raterID,
		"candidates", len(items),
		"inserted", inserted,
	)

	return inserted, nil
}

// NextTarget выдает следующее фото для оценки.
// Сначала возвращается уже выданная и не закрытая строка, затем
// захватывается следующая ожидающая. Пустая очередь пополняется
// на месте, и только если пополнять нечем - кандидаты кончились.
func (s *RatingServiceImpl) NextTarget(db *gorm.DB, raterID string) (*dto.NextTargetResponse, error) {
	if item, err := s.queueRepo.FindShownByRater(db, raterID); err == nil {
		return s.buildTargetResponse(db, raterID, item)
	} else if !apperrors.Is(err, repositories.ErrQueueItemNotFound) {
		return nil, apperrors.DatabaseError(err)
	}

	item, err := s.claimNext(db, raterID)
	if err == nil {
		return s.buildTargetResponse(db, raterID, item)
	}
	if !apperrors.Is(err, repositories.ErrQueueEmpty) {
		return nil, err
	}

	// Очередь пуста, пробуем пополнить один раз
	inserted, genErr := s.GenerateQueue(db, raterID)
	if genErr != nil {
		return nil, genErr
	}
	if inserted == 0 {
		return nil, apperrors.ErrNoCandidates
	}

	item, err = s.claimNext(db, raterID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrQueueEmpty) {
			return nil, apperrors.ErrNoCandidates
		}
		return nil, err
	}

	return s.buildTargetResponse(db, raterID, item)
}

// claimNext захватывает следующую pending-строку переводом в shown.
// Проигранная гонка не ошибка, просто берем следующую строку.
func (s *RatingServiceImpl) claimNext(db *gorm.DB, raterID string) (*models.QueueItem, error) {
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		item, err := s.queueRepo.NextPending(db, raterID)
		if err != nil {
			return nil, err
		}

		claimed, err := s.queueRepo.MarkShown(db, item.ID)
		if err != nil {
			return nil, apperrors.DatabaseError(err)
		}
		if claimed {
			item.State = models.QueueStateShown
			return item, nil
		}
	}

	return nil, repositories.ErrQueueEmpty
}

// SubmitRating закрывает строку очереди оценкой в одной транзакции:
// CAS-переход строки в rated, вставка оценки с замороженной силой
// голоса, счетчик выставленных оценок и пересчет агрегатов цели.
// Откатившаяся по сбою I/O транзакция повторяется один раз целиком.
func (s *RatingServiceImpl) SubmitRating(db *gorm.DB, raterID string, req *dto.SubmitRatingRequest) (*dto.SubmitRatingResponse, error) {
	if !models.ValidScore(req.Score) {
		return nil, apperrors.ErrScoreOutOfRange
	}

	var resp *dto.SubmitRatingResponse

	txErr := withTransientRetry(func() error {
		return s.submitRatingTx(db, raterID, req, &resp)
	})
	if txErr != nil {
		return nil, txErr
	}

	return resp, nil
}

func (s *RatingServiceImpl) submitRatingTx(db *gorm.DB, raterID string, req *dto.SubmitRatingRequest, resp **dto.SubmitRatingResponse) error {
	return db.Transaction(func(tx *gorm.DB) error {
		item, err := s.queueRepo.FindByID(tx, req.QueueItemID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrQueueItemNotFound) {
				return apperrors.ErrNotFound(err)
			}
			return apperrors.DatabaseError(err)
		}

		if item.RaterUserID != raterID {
			return apperrors.NewForbiddenError("Queue item belongs to another user")
		}
		if item.TargetUserID == raterID {
			return apperrors.ErrSelfRatingNotAllowed
		}

		closed, err := s.queueRepo.MarkRated(tx, item.ID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}
		if !closed {
			return apperrors.ErrQueueRowConsumed
		}

		// Сила голоса фиксируется на момент оценки
		raterStats, err := s.statsRepo.FindByUserID(tx, raterID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}

		rating := &models.Rating{
			RaterID:        raterID,
			RatedID:        item.TargetUserID,
			PhotoID:        item.PhotoID,
			Score:          req.Score,
			RaterPower:     raterStats.RatingPower,
			ViewDurationMs: req.ViewDurationMs,
			IsCounted:      true,
		}

		if err := s.ratingRepo.Create(tx, rating); err != nil {
			if apperrors.Is(err, repositories.ErrRatingDuplicate) {
				return apperrors.ErrDuplicateRating
			}
			return apperrors.DatabaseError(err)
		}

		if err := s.statsRepo.IncrementGivenCount(tx, raterID); err != nil {
			return apperrors.DatabaseError(err)
		}

		if _, err := s.statsSvc.RecalculateForUser(tx, item.TargetUserID); err != nil {
			return err
		}

		remaining, err := s.queueRepo.CountPendingByRater(tx, raterID)
		if err != nil {
			return apperrors.DatabaseError(err)
		}

		*resp = &dto.SubmitRatingResponse{
			RatingID:          rating.ID,
			RatingsGivenCount: raterStats.RatingsGivenCount + 1,
			QueueRemaining:    remaining,
		}
		return nil
	})
}

// SkipTarget закрывает строку без оценки. Пропущенное фото не
// возвращается, пока чистка очереди не снимет кулдаун.
func (s *RatingServiceImpl) SkipTarget(db *gorm.DB, raterID string, req *dto.SkipTargetRequest) error {
	item, err := s.queueRepo.FindByID(db, req.QueueItemID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrQueueItemNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.DatabaseError(err)
	}

	if item.RaterUserID != raterID {
		return apperrors.NewForbiddenError("Queue item belongs to another user")
	}

	skipped, err := s.queueRepo.MarkSkipped(db, item.ID)
	if err != nil {
		return apperrors.DatabaseError(err)
	}
	if !skipped {
		return apperrors.ErrQueueRowConsumed
	}

	return nil
}

func (s *RatingServiceImpl) buildTargetResponse(db *gorm.DB, raterID string, item *models.QueueItem) (*dto.NextTargetResponse, error) {
	remaining, err := s.queueRepo.CountPendingByRater(db, raterID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	resp := &dto.NextTargetResponse{
		QueueItemID:    item.ID,
		PhotoID:        item.PhotoID,
		QueueRemaining: remaining,
	}

	if item.Photo != nil {
		resp.PhotoURL = item.Photo.URL
	}
	if item.Target != nil {
		resp.TargetAgeRange = item.Target.AgeRange(time.Now().Year())
		if item.Target.Country != nil {
			resp.TargetCountry = *item.Target.Country
		}
	}

	return resp, nil
}
