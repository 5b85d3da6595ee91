// services/users.go
package services

import (
	"errors"
	"log"

	"fit-quest-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// InitUserRequest carries the LIFF profile plus optional physical attributes
// collected by the onboarding form.
type InitUserRequest struct {
	LineUserID  string  `json:"lineUserId"`
	DisplayName string  `json:"displayName"`
	PictureURL  *string `json:"pictureUrl,omitempty"`
	Age         int     `json:"age,omitempty"`
	Gender      string  `json:"gender,omitempty"`
	Height      int     `json:"height,omitempty"`
	Weight      int     `json:"weight,omitempty"`
}

// InitUser finds or creates the user for a LINE identity. An existing record
// is returned unchanged; display name and picture are NOT refreshed on
// repeat login.
func (s *UserService) InitUser(req InitUserRequest) (*models.User, error) {
	if req.LineUserID == "" {
		return nil, models.NewValidationError("lineUserId is required")
	}
	if req.DisplayName == "" {
		return nil, models.NewValidationError("displayName is required")
	}

	var user models.User
	err := s.DB.Where("line_user_id = ?", req.LineUserID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		ID:           uuid.NewString(),
		LineUserID:   req.LineUserID,
		DisplayName:  req.DisplayName,
		PictureURL:   req.PictureURL,
		Age:          req.Age,
		Gender:       req.Gender,
		Height:       req.Height,
		Weight:       req.Weight,
		Health:       10,
		Energy:       10,
		Exp:          0,
		Rank:         1,
		NextLevelExp: 100,
	}
	if user.Age <= 0 {
		user.Age = 20
	}
	if user.Gender == "" {
		user.Gender = "unspecified"
	}
	if user.Height <= 0 {
		user.Height = 170
	}
	if user.Weight <= 0 {
		user.Weight = 60
	}

	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Created user %s (%s)", user.DisplayName, user.LineUserID)
	return &user, nil
}

// GetUser looks a user up by LINE user id.
func (s *UserService) GetUser(lineUserID string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("user", lineUserID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetLeaderboard returns the top users by total experience.
func (s *UserService) GetLeaderboard(limit int) ([]models.User, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var users []models.User
	err := s.DB.Order("rank DESC, exp DESC").Limit(limit).Find(&users).Error
	return users, err
}
