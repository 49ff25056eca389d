package models

import "time"

const MeetingTable = "meet_meetings"

// 会议状态机，只有单向边：
// scheduled → live → ended / canceled
// scheduled → ended / canceled
const (
	MeetingStatusScheduled = "scheduled"
	MeetingStatusLive      = "live"
	MeetingStatusEnded     = "ended"
	MeetingStatusCanceled  = "canceled"
)

// JoinGracePeriod 计划结束后仍允许加入的宽限期
const JoinGracePeriod = 15 * time.Minute

type Meeting struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUID string `gorm:"type:uuid;index;not null" json:"ownerUid"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Status   string `gorm:"size:20;not null;default:'scheduled';index" json:"status"`

	StartAt           time.Time `gorm:"index;not null" json:"startAt"`
	DurationMin       int       `gorm:"not null" json:"durationMin"`
	Timezone          string    `gorm:"size:64" json:"timezone"`
	AllowEarlyJoinMin int       `gorm:"not null;default:0" json:"allowEarlyJoinMin"`

	RequirePasscode bool   `gorm:"not null;default:false" json:"requirePasscode"`
	PasscodeHash    string `gorm:"size:100" json:"-"` // bcrypt，绝不存明文
	LobbyEnabled    bool   `gorm:"not null;default:false" json:"lobbyEnabled"`

	// 媒体服务里的房间名（随机生成，与会议 ID 解耦）
	RoomName string `gorm:"size:120;uniqueIndex;not null" json:"roomName"`

	// 两把长随机钥匙区分 host / participant 入口，只有 owner 能看到
	HostJoinKey        string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ParticipantJoinKey string `gorm:"size:64;uniqueIndex;not null" json:"-"`

	// 仅在转入 ended/canceled 时盖章
	ExpiresAt *time.Time `gorm:"index" json:"expiresAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Meeting) TableName() string { return MeetingTable }

// EndAt 永远由 startAt + durationMin 推导，不单独落库
func (m *Meeting) EndAt() time.Time {
	return m.StartAt.Add(time.Duration(m.DurationMin) * time.Minute)
}

// HardExpireAt 过了这个点，无论 status 还写着什么，一律拒绝加入
func (m *Meeting) HardExpireAt() time.Time {
	return m.EndAt().Add(JoinGracePeriod)
}

// EarlyJoinAt 允许提前进入的时间点
func (m *Meeting) EarlyJoinAt() time.Time {
	return m.StartAt.Add(-time.Duration(m.AllowEarlyJoinMin) * time.Minute)
}

func (m *Meeting) IsTerminal() bool {
	return m.Status == MeetingStatusEnded || m.Status == MeetingStatusCanceled
}

// ExpiredBy 双层判断：已盖章的 expiresAt，或硬性时间窗（status 可能滞后于现实）
func (m *Meeting) ExpiredBy(now time.Time) bool {
	if m.ExpiresAt != nil && now.After(*m.ExpiresAt) {
		return true
	}
	return now.After(m.HardExpireAt())
}

// InEarlyWaitWindow 还没到可进入时间
func (m *Meeting) InEarlyWaitWindow(now time.Time) bool {
	return now.Before(m.EarlyJoinAt())
}
