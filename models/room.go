package models

import "time"

const RoomTable = "meet_rooms"

// 临时房间状态（与预约会议的生命周期是两条线）
const (
	RoomStatusOpen   = "open"
	RoomStatusLocked = "locked"
	RoomStatusEnded  = "ended"
)

type Room struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUID string `gorm:"type:uuid;index;not null" json:"ownerUid"`
	Name     string `gorm:"size:200;not null" json:"name"`
	Status   string `gorm:"size:16;not null;default:'open';index" json:"status"`

	WaitingRoomEnabled bool `gorm:"not null;default:false" json:"waitingRoomEnabled"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Room) TableName() string { return RoomTable }

// GuardDecision 只读判定，不改任何状态
type GuardDecision struct {
	CanJoin        bool `json:"canJoin"`
	NeedsAdmission bool `json:"needsAdmission"`
}

// Guard 判定某身份现在能否进入该房间：
//   - ended  → 一律不能进
//   - locked → 只有已在房间里的人能进（与等候室无关）
//   - open   → 能进
//
// NeedsAdmission 与 CanJoin 各算各的，前端才能区分
// “能进但要先在等候室等” 和 “直接进”
func (rm *Room) Guard(isExistingParticipant bool) GuardDecision {
	d := GuardDecision{
		NeedsAdmission: rm.WaitingRoomEnabled && !isExistingParticipant,
	}
	switch rm.Status {
	case RoomStatusEnded:
		d.CanJoin = false
	case RoomStatusLocked:
		d.CanJoin = isExistingParticipant
	default:
		d.CanJoin = true
	}
	return d
}
