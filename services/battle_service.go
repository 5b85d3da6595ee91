// services/battle_service.go
package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"fit-quest-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BattleDuration is the fixed competitive window length.
const BattleDuration = 7 * 24 * time.Hour

type BattleService struct {
	DB *gorm.DB
}

func NewBattleService(db *gorm.DB) *BattleService {
	return &BattleService{DB: db}
}

// generateInviteCode returns a short random hex code, retrying on the
// (unlikely) collision with an existing battle.
func (s *BattleService) generateInviteCode() (string, error) {
	for i := 0; i < 5; i++ {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		code := hex.EncodeToString(buf)

		var count int64
		if err := s.DB.Model(&models.Battle{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique invite code")
}

// CreateBattle starts a 7-day battle and joins the creator as its first
// participant, snapshotting the creator's current experience.
func (s *BattleService) CreateBattle(lineUserID string) (*models.Battle, error) {
	var creator models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&creator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", lineUserID)
		}
		return nil, err
	}

	code, err := s.generateInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	battle := models.Battle{
		ID:         uuid.NewString(),
		CreatorID:  creator.ID,
		InviteCode: code,
		StartDate:  now,
		EndDate:    now.Add(BattleDuration),
		Status:     models.BattleStatusActive,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&battle).Error; err != nil {
			return err
		}
		participant := models.BattleParticipant{
			ID:          uuid.NewString(),
			BattleID:    battle.ID,
			UserID:      creator.ID,
			StartingExp: creator.Exp,
		}
		return tx.Create(&participant).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("⚔️ Battle %s created by %s (code %s)", battle.ID, lineUserID, code)
	return &battle, nil
}

// JoinBattle adds the user to the battle behind an invite code. Re-joining an
// already-joined battle is a no-op that returns the existing battle.
func (s *BattleService) JoinBattle(inviteCode, lineUserID string) (*models.Battle, error) {
	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", lineUserID)
		}
		return nil, err
	}

	var battle models.Battle
	err := s.DB.Where("invite_code = ? AND status = ?", inviteCode, models.BattleStatusActive).
		First(&battle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("battle", inviteCode)
	}
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.BattleParticipant
		err := tx.Where("battle_id = ? AND user_id = ?", battle.ID, user.ID).
			First(&existing).Error
		if err == nil {
			return nil // already joined
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		participant := models.BattleParticipant{
			ID:          uuid.NewString(),
			BattleID:    battle.ID,
			UserID:      user.ID,
			StartingExp: user.Exp,
		}
		// The composite unique index on (battle_id, user_id) backstops
		// concurrent joins that slip past the existence check.
		return tx.Create(&participant).Error
	})
	if err != nil {
		return nil, err
	}

	return &battle, nil
}

// LeaveBattle removes the user's participant row. The battle itself is
// deleted once its last participant leaves.
func (s *BattleService) LeaveBattle(lineUserID, battleID string) error {
	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("user", lineUserID)
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("battle_id = ? AND user_id = ?", battleID, user.ID).
			Delete(&models.BattleParticipant{}).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&models.BattleParticipant{}).
			Where("battle_id = ?", battleID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Where("id = ?", battleID).Delete(&models.Battle{}).Error; err != nil {
				return err
			}
			log.Printf("🧹 Battle %s deleted (last participant left)", battleID)
		}
		return nil
	})
}

// GetUserActiveBattle returns the battle the user currently participates in,
// if it is still active and within its window. Nil when there is none.
func (s *BattleService) GetUserActiveBattle(lineUserID string) (*models.Battle, error) {
	var user models.User
	if err := s.DB.Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user", lineUserID)
		}
		return nil, err
	}

	var battle models.Battle
	err := s.DB.
		Joins("JOIN battle_participants ON battle_participants.battle_id = battles.id").
		Where("battle_participants.user_id = ? AND battles.status = ? AND battles.end_date >= ?",
			user.ID, models.BattleStatusActive, time.Now()).
		First(&battle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &battle, nil
}

// GetBattleRankings computes the live standings of a battle, ordered by
// experience gained since join (descending), ties broken by join order.
// Standings are always computed fresh from current user rows, never cached.
// An absent battle yields an empty slice.
func (s *BattleService) GetBattleRankings(battleID string) ([]models.BattleRanking, error) {
	type row struct {
		UserID      string
		LineUserID  string
		DisplayName string
		PictureURL  *string
		StartingExp int
		CurrentExp  int
		JoinedAt    time.Time
	}

	var rows []row
	err := s.DB.Model(&models.BattleParticipant{}).
		Select(`battle_participants.user_id,
			users.line_user_id,
			users.display_name,
			users.picture_url,
			battle_participants.starting_exp,
			users.exp AS current_exp,
			battle_participants.joined_at`).
		Joins("JOIN users ON users.id = battle_participants.user_id").
		Where("battle_participants.battle_id = ?", battleID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		gi := rows[i].CurrentExp - rows[i].StartingExp
		gj := rows[j].CurrentExp - rows[j].StartingExp
		if gi != gj {
			return gi > gj
		}
		return rows[i].JoinedAt.Before(rows[j].JoinedAt)
	})

	rankings := make([]models.BattleRanking, 0, len(rows))
	for _, r := range rows {
		rankings = append(rankings, models.BattleRanking{
			UserID:      r.UserID,
			LineUserID:  r.LineUserID,
			DisplayName: r.DisplayName,
			PictureURL:  r.PictureURL,
			StartingExp: r.StartingExp,
			CurrentExp:  r.CurrentExp,
			ExpGained:   r.CurrentExp - r.StartingExp,
		})
	}
	return rankings, nil
}
