package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the root entity. Identity comes from LINE (LIFF login); the
// progression fields are mutated only by the leveling service.
type User struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	LineUserID  string  `gorm:"uniqueIndex;not null" json:"line_user_id"`
	DisplayName string  `gorm:"not null" json:"display_name"`
	PictureURL  *string `json:"picture_url,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"` // generated avatar, served from R2

	// Physical attributes, defaults applied at init and not validated further
	Age    int    `json:"age" gorm:"default:20"`
	Gender string `json:"gender" gorm:"type:varchar(16);default:'unspecified'"`
	Height int    `json:"height" gorm:"default:170"` // cm
	Weight int    `json:"weight" gorm:"default:60"`  // kg

	// Progression. Invariant: Exp < NextLevelExp after every leveling update.
	Health       int `json:"health" gorm:"default:10"`
	Energy       int `json:"energy" gorm:"default:10"`
	Exp          int `json:"exp" gorm:"default:0"`
	Rank         int `json:"rank" gorm:"default:1"`
	NextLevelExp int `json:"next_level_exp" gorm:"default:100"`

	// Relationships
	Quests []Quest `json:"quests,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
