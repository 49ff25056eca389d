package db

import (
	"context"
	"errors"

	"Gin_postgres_redis_meet_tool/models"
)

var ErrRoomEnded = errors.New("room already ended")

func (r *Repo) CreateRoom(ctx context.Context, rm *models.Room) error {
	return r.DB.WithContext(ctx).Create(rm).Error
}

func (r *Repo) FindRoomByID(ctx context.Context, id string) (*models.Room, error) {
	var rm models.Room
	if err := r.DB.WithContext(ctx).First(&rm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *Repo) CountRoomsOwnedBy(ctx context.Context, ownerUID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Room{}).
		Where("owner_uid = ?", ownerUID).Count(&n).Error
	return n, err
}

// SetRoomStatus open↔locked 可往返，ended 是终态
func (r *Repo) SetRoomStatus(ctx context.Context, id, target string) error {
	res := r.DB.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND status <> ?", id, models.RoomStatusEnded).
		Update("status", target)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindRoomByID(ctx, id); err != nil {
			return err
		}
		return ErrRoomEnded
	}
	return nil
}
