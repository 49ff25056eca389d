package models

import "strings"

// Role 统一两套授权模型：预约会议按 key 定角色，临时房间按参与者文档定角色，
// 最终都落到同一个 Role + 能力集
type Role string

const (
	RoleHost        Role = "host"
	RoleParticipant Role = "participant"
)

// Capabilities 媒体服务里该角色拥有的权限
type Capabilities struct {
	CanPublish           bool `json:"canPublish"`
	CanSubscribe         bool `json:"canSubscribe"`
	CanPublishData       bool `json:"canPublishData"`
	CanUpdateOwnMetadata bool `json:"canUpdateOwnMetadata"`
	RoomAdmin            bool `json:"roomAdmin"`
}

func (r Role) Valid() bool {
	return r == RoleHost || r == RoleParticipant
}

// 两个角色都能发布/订阅，管理权限仅 host
func (r Role) Capabilities() Capabilities {
	return Capabilities{
		CanPublish:           true,
		CanSubscribe:         true,
		CanPublishData:       true,
		CanUpdateOwnMetadata: true,
		RoomAdmin:            r == RoleHost,
	}
}

func RoleFromLabel(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "host":
		return RoleHost
	case "participant":
		return RoleParticipant
	default:
		return ""
	}
}
