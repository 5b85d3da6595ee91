// services/leveling.go
package services

import (
	"errors"
	"log"
	"math"
	"time"

	"fit-quest-system/models"

	"gorm.io/gorm"
)

// Threshold growth factor for NextLevelExp on rank-up.
const rankUpGrowth = 1.5

// nextLevelThreshold returns the threshold after a rank-up:
// floor(current * 1.5). Strictly grows for any positive current value.
func nextLevelThreshold(current int) int {
	return int(math.Floor(float64(current) * rankUpGrowth))
}

type LevelingService struct {
	DB *gorm.DB
}

func NewLevelingService(db *gorm.DB) *LevelingService {
	return &LevelingService{DB: db}
}

// CompleteQuest marks a quest completed and applies its rewards to the owning
// user in a single transaction.
//
// Rank-ups apply a SINGLE step per completion: a reward large enough to cross
// two thresholds still increments rank once, and the leftover experience
// carries into the next completion.
func (s *LevelingService) CompleteQuest(questID string) (*models.Quest, error) {
	var completed *models.Quest
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := tx.Where("id = ?", questID).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("quest", questID)
			}
			return err
		}

		// Guard against reward re-application
		if quest.Completed {
			return models.NewConflictError("quest already completed")
		}

		now := time.Now()
		quest.Completed = true
		quest.CompletedAt = &now
		if err := tx.Save(&quest).Error; err != nil {
			return err
		}

		var user models.User
		if err := tx.Where("id = ?", quest.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("user", quest.UserID)
			}
			return err
		}

		newExp := user.Exp + quest.ExpPoints
		if newExp >= user.NextLevelExp {
			user.Exp = newExp - user.NextLevelExp
			user.Rank++
			user.NextLevelExp = nextLevelThreshold(user.NextLevelExp)
		} else {
			user.Exp = newExp
		}
		user.Health += quest.HealthPoints
		user.Energy += quest.EnergyPoints

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		log.Printf("🏅 Quest completed: %s → user %s Exp=%d/%d Rank=%d",
			quest.Title, user.LineUserID, user.Exp, user.NextLevelExp, user.Rank)

		completed = &models.Quest{}
		*completed = quest
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}
