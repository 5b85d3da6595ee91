package models

import "time"

const (
	BattleStatusActive    = "active"
	BattleStatusCompleted = "completed"
)

// Battle is a fixed 7-day competitive window, joined via invite code.
// Battles and participants are hard-deleted: a user who leaves a battle must
// be able to rejoin it, which a soft-delete row under the composite unique
// index would block.
type Battle struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatorID  string    `gorm:"index;not null" json:"creator_id"`
	InviteCode string    `gorm:"uniqueIndex;not null" json:"invite_code"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `gorm:"index" json:"end_date"`
	Status     string    `json:"status" gorm:"type:varchar(16);default:'active'"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Creator      User                `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Participants []BattleParticipant `json:"participants,omitempty" gorm:"foreignKey:BattleID;constraint:OnDelete:CASCADE"`
}

// BattleParticipant links a user to a battle with the experience snapshot
// taken at join time. At most one row per (battle, user).
type BattleParticipant struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	BattleID    string    `gorm:"not null;uniqueIndex:idx_battle_user" json:"battle_id"`
	UserID      string    `gorm:"not null;uniqueIndex:idx_battle_user" json:"user_id"`
	StartingExp int       `json:"starting_exp" gorm:"default:0"`
	JoinedAt    time.Time `json:"joined_at" gorm:"autoCreateTime"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// BattleRanking is a computed standing row, never stored.
type BattleRanking struct {
	UserID      string  `json:"user_id"`
	LineUserID  string  `json:"line_user_id"`
	DisplayName string  `json:"display_name"`
	PictureURL  *string `json:"picture_url,omitempty"`
	StartingExp int     `json:"starting_exp"`
	CurrentExp  int     `json:"current_exp"`
	ExpGained   int     `json:"exp_gained"`
}
