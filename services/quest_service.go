// services/quest_service.go
package services

import (
	"errors"
	"log"
	"time"

	"fit-quest-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type QuestService struct {
	DB        *gorm.DB
	Generator *GeminiClient
}

func NewQuestService(db *gorm.DB, generator *GeminiClient) *QuestService {
	return &QuestService{DB: db, Generator: generator}
}

// GenerateQuest asks the content generator for a new quest for this user and
// persists it. Generator failures and unparseable replies surface as
// GenerationError; nothing is written in that case.
func (s *QuestService) GenerateQuest(lineUserID, purpose string) (*models.Quest, error) {
	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", lineUserID)
		}
		return nil, err
	}

	raw, err := s.Generator.GenerateQuestContent(BuildQuestPrompt(&user, purpose))
	if err != nil {
		return nil, err
	}

	parsed, err := ParseQuestContent(raw)
	if err != nil {
		return nil, err
	}

	quest := models.Quest{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Title:        parsed.Title,
		Slug:         slug.Make(parsed.Title),
		Description:  parsed.Description,
		HealthPoints: parsed.HealthPoints,
		EnergyPoints: parsed.EnergyPoints,
		ExpPoints:    parsed.ExpPoints,
		Goal:         parsed.Goal,
	}
	if err := s.DB.Create(&quest).Error; err != nil {
		return nil, err
	}

	log.Printf("📜 Quest generated for %s: %s", lineUserID, quest.Title)
	return &quest, nil
}

// GetUserQuests returns the user's quests, newest first.
func (s *QuestService) GetUserQuests(lineUserID string) ([]models.Quest, error) {
	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", lineUserID)
		}
		return nil, err
	}

	var quests []models.Quest
	err := s.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&quests).Error
	return quests, err
}

// UpdateQuestProgress sets the client-reported progress counter. Completion
// goes through the leveling service, never through here.
func (s *QuestService) UpdateQuestProgress(questID string, progress int) (*models.Quest, error) {
	if progress < 0 {
		return nil, models.NewValidationError("progress must not be negative")
	}

	var quest models.Quest
	if err := s.DB.Where("id = ?", questID).First(&quest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("quest", questID)
		}
		return nil, err
	}
	if quest.Completed {
		return nil, models.NewConflictError("quest already completed")
	}

	quest.Progress = progress
	if err := s.DB.Save(&quest).Error; err != nil {
		return nil, err
	}
	return &quest, nil
}

// TodayQuestStats summarizes today's quests for the home screen.
type TodayQuestStats struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// GetTodayQuestStats counts the user's quests created since local midnight.
func (s *QuestService) GetTodayQuestStats(lineUserID string) (*TodayQuestStats, error) {
	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", lineUserID)
		}
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &TodayQuestStats{}
	if err := s.DB.Model(&models.Quest{}).
		Where("user_id = ? AND created_at >= ?", user.ID, midnight).
		Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Quest{}).
		Where("user_id = ? AND created_at >= ? AND completed = ?", user.ID, midnight, true).
		Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
