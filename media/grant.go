package media

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Gin_postgres_redis_meet_tool/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 媒体服务只认这里签出的 access token（livekit 风格的 HS256 JWT，
// video claim 里带发布/订阅权限）。服务本身是黑盒，这里只管签发。

var ErrEmptyDisplayName = errors.New("display name is required")

type Issuer struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
}

func NewIssuer(apiKey, apiSecret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Issuer{apiKey: apiKey, apiSecret: []byte(apiSecret), ttl: ttl}
}

// VideoGrant 对应媒体服务的能力集
type VideoGrant struct {
	Room                 string `json:"room"`
	RoomJoin             bool   `json:"roomJoin"`
	RoomAdmin            bool   `json:"roomAdmin,omitempty"`
	CanPublish           bool   `json:"canPublish"`
	CanSubscribe         bool   `json:"canSubscribe"`
	CanPublishData       bool   `json:"canPublishData"`
	CanUpdateOwnMetadata bool   `json:"canUpdateOwnMetadata"`
}

type grantClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name"`
	Video VideoGrant `json:"video"`
}

// NewIdentity 生成角色前缀 + 随机后缀的媒体身份，
// 同名同时入会也不会撞（身份永不复用）
func NewIdentity(role models.Role, displayName string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s", role, displayName, suffix)
}

// Mint 按角色签发入会凭证，返回合成身份和 token
func (i *Issuer) Mint(roomName, displayName string, role models.Role) (string, string, error) {
	if strings.TrimSpace(displayName) == "" {
		return "", "", ErrEmptyDisplayName
	}
	caps := role.Capabilities()
	identity := NewIdentity(role, displayName)
	now := time.Now()

	claims := grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Name: displayName,
		Video: VideoGrant{
			Room:                 roomName,
			RoomJoin:             true,
			RoomAdmin:            caps.RoomAdmin,
			CanPublish:           caps.CanPublish,
			CanSubscribe:         caps.CanSubscribe,
			CanPublishData:       caps.CanPublishData,
			CanUpdateOwnMetadata: caps.CanUpdateOwnMetadata,
		},
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.apiSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign media grant: %w", err)
	}
	return identity, tok, nil
}
