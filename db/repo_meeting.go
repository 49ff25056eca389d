package db

import (
	"context"
	"errors"

	"Gin_postgres_redis_meet_tool/models"

	"gorm.io/gorm"
)

// 生命周期转移全部走条件 UPDATE：WHERE 里带上当前状态，
// RowsAffected == 0 就说明状态已经被别人改走了

var ErrAlreadyTerminal = errors.New("meeting already ended or canceled")

func (r *Repo) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *Repo) FindMeetingByID(ctx context.Context, id string) (*models.Meeting, error) {
	var m models.Meeting
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// StartMeeting scheduled → live；返回这次调用是否真的完成了转移。
// 并发时两个 host 同时加入，只有一个拿到 true，另一个照常入会即可
func (r *Repo) StartMeeting(ctx context.Context, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Meeting{}).
		Where("id = ? AND status = ?", id, models.MeetingStatusScheduled).
		Update("status", models.MeetingStatusLive)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// EndMeeting scheduled|live → ended，同时盖 expires_at 章
func (r *Repo) EndMeeting(ctx context.Context, id string) error {
	return r.terminate(ctx, id, models.MeetingStatusEnded)
}

// CancelMeeting scheduled|live → canceled；从终态再 cancel 是 Conflict，不静默
func (r *Repo) CancelMeeting(ctx context.Context, id string) error {
	return r.terminate(ctx, id, models.MeetingStatusCanceled)
}

func (r *Repo) terminate(ctx context.Context, id, target string) error {
	res := r.DB.WithContext(ctx).Model(&models.Meeting{}).
		Where("id = ? AND status IN ?", id,
			[]string{models.MeetingStatusScheduled, models.MeetingStatusLive}).
		Updates(map[string]interface{}{
			"status":     target,
			"expires_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 区分不存在和已终结
		var m models.Meeting
		if err := r.DB.WithContext(ctx).Select("id").First(&m, "id = ?", id).Error; err != nil {
			return err
		}
		return ErrAlreadyTerminal
	}
	return nil
}
