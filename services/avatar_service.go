// services/avatar_service.go
package services

import (
	"errors"
	"fmt"
	"log"

	"fit-quest-system/models"
	"fit-quest-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvatarService struct {
	DB        *gorm.DB
	Generator *GeminiClient
}

func NewAvatarService(db *gorm.DB, generator *GeminiClient) *AvatarService {
	return &AvatarService{DB: db, Generator: generator}
}

// GenerateAvatar asks the image model for an RPG-style avatar matching the
// user's rank, uploads it to R2 and stores the public URL on the user.
func (s *AvatarService) GenerateAvatar(lineUserID string) (string, error) {
	if !utils.R2Enabled() {
		return "", models.NewGenerationError("avatar storage not configured", nil)
	}

	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.NewNotFoundError("user", lineUserID)
		}
		return "", err
	}

	prompt := fmt.Sprintf(
		"Cute pixel-art RPG hero avatar, level %d adventurer, fitness theme, plain background, square image.",
		user.Rank)

	data, mimeType, err := s.Generator.GenerateAvatarImage(prompt)
	if err != nil {
		return "", err
	}

	ext := ".png"
	if mimeType == "image/jpeg" {
		ext = ".jpg"
	}
	key := "avatars/" + uuid.NewString() + ext

	url, err := utils.UploadBytesToR2(data, key, mimeType)
	if err != nil {
		return "", err
	}

	user.AvatarURL = &url
	if err := s.DB.Save(&user).Error; err != nil {
		return "", err
	}

	log.Printf("🖼️ Avatar generated for %s: %s", lineUserID, url)
	return url, nil
}
