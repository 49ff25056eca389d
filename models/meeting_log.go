package models

import "time"

const MeetingLogTable = "meet_meeting_log"

// 审计事件类型
const (
	LogCreated     = "created"
	LogStarted     = "started"
	LogTokenIssued = "tokenIssued"
	LogDenied      = "denied"
	LogEnded       = "ended"
	LogCanceled    = "canceled"
)

// MeetingLog 只追加的审计流水，绝不更新或删除
type MeetingLog struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MeetingID string    `gorm:"type:uuid;index;not null" json:"meetingId"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	ByUID     *string   `gorm:"type:uuid" json:"byUid,omitempty"`
	Meta      string    `gorm:"type:jsonb" json:"meta,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"at"`
}

func (MeetingLog) TableName() string { return MeetingLogTable }
