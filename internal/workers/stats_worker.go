package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ratery_backend/internal/logger"
	"ratery_backend/internal/repositories"
	"ratery_backend/internal/services"
)

// queueRetentionDays - сколько дней закрытая строка очереди остается в
// таблице. После чистки пропущенное фото может быть выдано снова.
const queueRetentionDays = 30

type StatsWorker struct {
	db               *gorm.DB
	statsSvc         services.StatsService
	statsRepo        repositories.StatsRepository
	queueRepo        repositories.QueueRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

func NewStatsWorker(db *gorm.DB, statsSvc services.StatsService) *StatsWorker {
	return &StatsWorker{
		db:               db,
		statsSvc:         statsSvc,
		statsRepo:        repositories.NewStatsRepository(),
		queueRepo:        repositories.NewQueueRepository(),
		refreshTokenRepo: repositories.NewRefreshTokenRepository(),
	}
}

// Start запускает фоновые задачи агрегатов и очереди
func (w *StatsWorker) Start(ctx context.Context) {
	// Ежедневные снапшоты истории и перцентили
	go w.dailyLoop(ctx)

	// Чистка очереди и просроченных токенов каждые 6 часов
	go w.cleanupLoop(ctx)
}

// dailyLoop раз в сутки обновляет перцентили и по расписанию
// перезаписывает исторические колонки рейтинга целиком:
// rating_7d_ago каждый седьмой день, rating_30d_ago каждый тридцатый.
func (w *StatsWorker) dailyLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	day := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			day++

			updated, err := w.statsSvc.RefreshPercentiles(w.db)
			logger.WorkerLog("stats", "refresh percentiles", err)
			if err == nil && updated > 0 {
				logger.Info("percentiles refreshed", "users", updated)
			}

			if day%7 == 0 {
				rows, err := w.statsRepo.SnapshotCurrentInto(w.db, "rating_7d_ago")
				logger.WorkerLog("stats", "snapshot rating_7d_ago", err)
				if err == nil {
					logger.Info("weekly rating snapshot taken", "rows", rows)
				}
			}

			if day%30 == 0 {
				rows, err := w.statsRepo.SnapshotCurrentInto(w.db, "rating_30d_ago")
				logger.WorkerLog("stats", "snapshot rating_30d_ago", err)
				if err == nil {
					logger.Info("monthly rating snapshot taken", "rows", rows)
				}
			}
		}
	}
}

func (w *StatsWorker) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -queueRetentionDays)
			purged, err := w.queueRepo.DeleteTerminalOlderThan(w.db, cutoff)
			logger.WorkerLog("stats", "purge rating queue", err)
			if err == nil && purged > 0 {
				logger.Info("rating queue purged", "rows", purged)
			}

			deleted, err := w.refreshTokenRepo.DeleteExpired(w.db)
			logger.WorkerLog("stats", "delete expired refresh tokens", err)
			if err == nil && deleted > 0 {
				logger.Info("expired refresh tokens deleted", "rows", deleted)
			}
		}
	}
}
