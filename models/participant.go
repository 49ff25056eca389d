package models

import "time"

const ParticipantTable = "meet_participants"

// 等候室状态；admitted / denied 对单次加入都是终态，
// 再次加入会新建一条 waiting 记录而不是复活旧记录
const (
	LobbyWaiting  = "waiting"
	LobbyAdmitted = "admitted"
	LobbyDenied   = "denied"
)

type Participant struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID      string `gorm:"type:uuid;index:idx_room_uid;not null" json:"roomId"`
	UID         string `gorm:"type:uuid;index:idx_room_uid;not null" json:"uid"`
	DisplayName string `gorm:"size:200" json:"displayName"`
	Role        Role   `gorm:"size:20;not null;default:'participant'" json:"role"`

	JoinedAt time.Time `gorm:"not null" json:"joinedAt"`

	// 空串表示没有等候室直接入会
	LobbyStatus string     `gorm:"size:16;index" json:"lobbyStatus,omitempty"`
	AdmittedAt  *time.Time `json:"admittedAt,omitempty"`
	DeniedAt    *time.Time `json:"deniedAt,omitempty"`

	LastSeenAt *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Participant) TableName() string { return ParticipantTable }

func (p *Participant) IsWaiting() bool { return p.LobbyStatus == LobbyWaiting }
