package utils

import (
	"time"

	"go.uber.org/zap"

	"collecthub-backend/internal/models"
	"collecthub-backend/internal/repository"
)

// StartCleanupTask periodically drops password reset tokens that outlived
// their hour. Expired tokens are also rejected on use, this just keeps the
// table from growing.
func StartCleanupTask(logger *zap.SugaredLogger) {
	go func() {
		for {
			time.Sleep(time.Hour)

			result := repository.DB.
				Where("created_at < ?", time.Now().Add(-models.ResetTokenTTL)).
				Delete(&models.ResetToken{})
			if result.Error != nil {
				logger.Errorw("reset token cleanup", "error", result.Error)
				continue
			}
			if result.RowsAffected > 0 {
				logger.Infow("reset token cleanup", "deleted", result.RowsAffected)
			}
		}
	}()
}
