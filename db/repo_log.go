package db

import (
	"Gin_postgres_redis_meet_tool/models"
	"context"
	"encoding/json"
	"fmt"
)

// AppendMeetingLog 追加一条审计流水。调用方自行决定失败是否致命——
// 审计是尽力而为，绝不能把主操作拖垮
func (r *Repo) AppendMeetingLog(ctx context.Context, meetingID, typ string, byUID *string, meta map[string]interface{}) error {
	entry := &models.MeetingLog{
		MeetingID: meetingID,
		Type:      typ,
		ByUID:     byUID,
		Meta:      "{}",
	}
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("marshal log meta: %w", err)
		}
		entry.Meta = string(b)
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert meeting log: %w", err)
	}
	return nil
}

func (r *Repo) ListMeetingLog(ctx context.Context, meetingID string) ([]models.MeetingLog, error) {
	var entries []models.MeetingLog
	err := r.DB.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
