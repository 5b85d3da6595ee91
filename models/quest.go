package models

import "time"

// Quest is a user-scoped activity goal with point rewards. Content comes from
// the Gemini generator; progress is driven by the client until completion.
type Quest struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string `gorm:"index;not null" json:"user_id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"index" json:"slug"` // used in share deep-links
	Description string `json:"description"`

	// Rewards applied to the owning user on completion
	HealthPoints int `json:"health_points" gorm:"default:0"`
	EnergyPoints int `json:"energy_points" gorm:"default:0"`
	ExpPoints    int `json:"exp_points" gorm:"default:0"`

	Progress  int  `json:"progress" gorm:"default:0"`
	Goal      int  `json:"goal" gorm:"not null"`
	Completed bool `json:"completed" gorm:"default:false"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Timestamps
}
