// services/scheduler.go
package services

import (
	"log"
	"time"

	"fit-quest-system/models"

	"github.com/go-co-op/gocron/v2"
)

// CompleteExpiredBattles marks every active battle whose window has passed as
// completed. In-window battles are left untouched.
func (s *BattleService) CompleteExpiredBattles() {
	var battles []models.Battle
	now := time.Now()
	err := s.DB.Where("status = ? AND end_date <= ?", models.BattleStatusActive, now).
		Find(&battles).Error
	if err != nil {
		log.Printf("[Scheduler] DB error: %v", err)
		return
	}

	for _, b := range battles {
		b.Status = models.BattleStatusCompleted
		if err := s.DB.Save(&b).Error; err != nil {
			log.Printf("[Scheduler] Failed to complete battle %s: %v", b.ID, err)
		} else {
			log.Printf("🏁 Battle ended: %s (code %s)", b.ID, b.InviteCode)
		}
	}
}

func (s *BattleService) StartExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(s.CompleteExpiredBattles),
	)
}
