// workers/battle_cleanup_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"fit-quest-system/models"

	"gorm.io/gorm"
)

// BattleCleanupWorker removes completed battles (and their participant rows)
// once they fall out of the retention window. Active battles are never
// touched; emptying an active battle is handled synchronously by LeaveBattle.
type BattleCleanupWorker struct {
	db        *gorm.DB
	interval  time.Duration
	retention time.Duration
}

func NewBattleCleanupWorker(db *gorm.DB, retention time.Duration) *BattleCleanupWorker {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &BattleCleanupWorker{
		db:        db,
		interval:  1 * time.Hour,
		retention: retention,
	}
}

func (w *BattleCleanupWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Battle Cleanup Worker…")
	go w.run(ctx)
}

func (w *BattleCleanupWorker) run(ctx context.Context) {
	if err := w.sweep(); err != nil {
		log.Printf("⚠️ Initial battle cleanup failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweep(); err != nil {
				log.Printf("❌ Battle cleanup failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Battle Cleanup Worker stopped")
			return
		}
	}
}

func (w *BattleCleanupWorker) sweep() error {
	cutoff := time.Now().Add(-w.retention)

	var stale []models.Battle
	err := w.db.Where("status = ? AND end_date < ?", models.BattleStatusCompleted, cutoff).
		Find(&stale).Error
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	return w.db.Transaction(func(tx *gorm.DB) error {
		for _, b := range stale {
			if err := tx.Where("battle_id = ?", b.ID).
				Delete(&models.BattleParticipant{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", b.ID).Delete(&models.Battle{}).Error; err != nil {
				return err
			}
			log.Printf("🧹 Purged battle %s (ended %s)", b.ID, b.EndDate.Format(time.RFC3339))
		}
		return nil
	})
}
