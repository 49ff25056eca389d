package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_meet_tool/models"

	"gorm.io/gorm"
)

var (
	ErrInviteExhausted = errors.New("invite has no remaining uses")
	ErrInviteRevoked   = errors.New("invite revoked")
	ErrInviteExpired   = errors.New("invite expired")
	ErrAlreadyRevoked  = errors.New("invite already revoked")
)

func (r *Repo) CreateInvite(ctx context.Context, inv *models.Invite) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

func (r *Repo) FindInviteByID(ctx context.Context, id string) (*models.Invite, error) {
	var inv models.Invite
	if err := r.DB.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// RedeemInvite 兑换一次。条件更新保证并发打到上限时恰好 maxUses 次成功：
// 读-改-写有竞态，这里必须一条语句完成
func (r *Repo) RedeemInvite(ctx context.Context, id string, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Invite{}).
		Where("id = ? AND revoked = FALSE AND used < max_uses AND expires_at > ?", id, now).
		Update("used", gorm.Expr("used + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// 失败原因回读一次，区分错误类别
	inv, err := r.FindInviteByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case inv.Revoked:
		return ErrInviteRevoked
	case inv.IsExpired(now):
		return ErrInviteExpired
	default:
		return ErrInviteExhausted
	}
}

// RevokeInvite 只能置一次；重复撤销是 Conflict
func (r *Repo) RevokeInvite(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Invite{}).
		Where("id = ? AND revoked = FALSE", id).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindInviteByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyRevoked
	}
	return nil
}

func (r *Repo) ListInvitesByRoom(ctx context.Context, roomID string) ([]models.Invite, error) {
	var invs []models.Invite
	err := r.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}
