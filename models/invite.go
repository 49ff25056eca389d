package models

import "time"

const InviteTable = "meet_invites"

// Invite 限次、可撤销、带过期的加入许可；used 只增不减，revoked 只能置一次
type Invite struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID    string    `gorm:"type:uuid;index;not null" json:"roomId"`
	CreatedBy string    `gorm:"type:uuid;index;not null" json:"createdBy"`
	Role      Role      `gorm:"size:20;not null" json:"role"`
	MaxUses   int       `gorm:"not null;default:1" json:"maxUses"`
	Used      int       `gorm:"not null;default:0" json:"used"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Invite) TableName() string { return InviteTable }

func (i *Invite) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

func (i *Invite) IsExhausted() bool {
	return i.Used >= i.MaxUses
}
