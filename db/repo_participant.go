package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"Gin_postgres_redis_meet_tool/models"

	"gorm.io/gorm"
)

var (
	ErrNotWaiting     = errors.New("participant is not waiting")
	ErrAlreadyWaiting = errors.New("participant already waiting")
)

func (r *Repo) CreateParticipant(ctx context.Context, p *models.Participant) error {
	err := r.DB.WithContext(ctx).Create(p).Error
	// 局部唯一索引兜住并发：同一房间同一身份只允许一条 waiting
	if err != nil && p.LobbyStatus == models.LobbyWaiting &&
		strings.Contains(err.Error(), "one_waiting_per_uid") {
		return ErrAlreadyWaiting
	}
	return err
}

// FindParticipant 取该身份在房间里的最新一条记录
func (r *Repo) FindParticipant(ctx context.Context, roomID, uid string) (*models.Participant, error) {
	var p models.Participant
	err := r.DB.WithContext(ctx).
		Where("room_id = ? AND uid = ?", roomID, uid).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// IsRoomHost 等候室准入、批量准入、撤销邀请共用的判定：
// 查的是该房间里这个人的角色，不是全局角色
func (r *Repo) IsRoomHost(ctx context.Context, roomID, uid string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND uid = ? AND role = ?", roomID, uid, models.RoleHost).
		Count(&n).Error
	return n > 0, err
}

// IsExistingParticipant 已入会过（waiting/denied 不算在房间里）
func (r *Repo) IsExistingParticipant(ctx context.Context, roomID, uid string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND uid = ? AND lobby_status IN ?", roomID, uid,
			[]string{"", models.LobbyAdmitted}).
		Count(&n).Error
	return n > 0, err
}

// AdmitParticipant waiting → admitted；对单次加入是终态
func (r *Repo) AdmitParticipant(ctx context.Context, roomID, uid string, now time.Time) error {
	return r.resolveWaiting(ctx, roomID, uid, models.LobbyAdmitted, "admitted_at", now)
}

// DenyParticipant waiting → denied；记录保留不删，留作审计
func (r *Repo) DenyParticipant(ctx context.Context, roomID, uid string, now time.Time) error {
	return r.resolveWaiting(ctx, roomID, uid, models.LobbyDenied, "denied_at", now)
}

func (r *Repo) resolveWaiting(ctx context.Context, roomID, uid, target, stampCol string, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND uid = ? AND lobby_status = ?", roomID, uid, models.LobbyWaiting).
		Updates(map[string]interface{}{
			"lobby_status": target,
			stampCol:       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotWaiting
	}
	return nil
}

// AdmitAllWaiting 一条语句放行当前所有 waiting，整体原子；返回放行人数。
// 语句执行之后才进等候室的人不受影响
func (r *Repo) AdmitAllWaiting(ctx context.Context, roomID string, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND lobby_status = ?", roomID, models.LobbyWaiting).
		Updates(map[string]interface{}{
			"lobby_status": models.LobbyAdmitted,
			"admitted_at":  now,
		})
	return res.RowsAffected, res.Error
}

func (r *Repo) ListWaiting(ctx context.Context, roomID string) ([]models.Participant, error) {
	var ps []models.Participant
	err := r.DB.WithContext(ctx).
		Where("room_id = ? AND lobby_status = ?", roomID, models.LobbyWaiting).
		Order("created_at ASC").
		Find(&ps).Error
	return ps, err
}

// PromoteParticipantRole 只升不降：引擎自己永远不会把 host 降回 participant
func (r *Repo) PromoteParticipantRole(ctx context.Context, roomID, uid string) error {
	return r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND uid = ? AND role = ?", roomID, uid, models.RoleParticipant).
		Update("role", models.RoleHost).Error
}

func (r *Repo) TouchParticipantSeen(ctx context.Context, roomID, uid string) error {
	return r.DB.WithContext(ctx).Model(&models.Participant{}).
		Where("room_id = ? AND uid = ?", roomID, uid).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}
