package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// 邀请 token：四个字段 + HMAC-SHA256 签名，用 | 拼接后整体 base64url。
// 过期时间是 RFC3339（含冒号），所以分隔符不能用冒号。
// 不依赖数据库即可自校验，持有者改不了任何字段。

const delimiter = "|"

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad signature")
	ErrExpired        = errors.New("token expired")
	// Sign 的入参里出现分隔符时拒绝（inviteId/roomId 是库生成的 uuid，
	// role 是闭集枚举，正常流程碰不到）
	ErrInvalidField = errors.New("field contains delimiter")
)

// Claims 是 token 里编码的全部内容
type Claims struct {
	InviteID  string
	RoomID    string
	Role      string
	ExpiresAt time.Time
}

// Codec 持有进程级签名密钥；换密钥会使所有未兑换的 token 失效
type Codec struct {
	secret []byte
}

func NewCodec(secret string) Codec {
	return Codec{secret: []byte(secret)}
}

func (c Codec) signature(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign 无随机性：同样的输入 + 同样的密钥 = 同样的 token
func (c Codec) Sign(inviteID, roomID, role string, expiresAt time.Time) (string, error) {
	for _, f := range []string{inviteID, roomID, role} {
		if f == "" || strings.Contains(f, delimiter) {
			return "", ErrInvalidField
		}
	}
	payload := strings.Join([]string{
		inviteID,
		roomID,
		role,
		expiresAt.UTC().Format(time.RFC3339),
	}, delimiter)
	signed := payload + delimiter + c.signature(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(signed)), nil
}

// Verify 解码、验签、查过期，除此之外无任何副作用
func (c Codec) Verify(tok string) (*Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return nil, ErrMalformedToken
	}
	parts := strings.Split(string(raw), delimiter)
	if len(parts) != 5 {
		return nil, ErrMalformedToken
	}
	for _, p := range parts {
		if p == "" {
			return nil, ErrMalformedToken
		}
	}
	payload := strings.Join(parts[:4], delimiter)
	expected := c.signature(payload)
	// 逐字节恒定时间比较
	if !hmac.Equal([]byte(expected), []byte(parts[4])) {
		return nil, ErrBadSignature
	}
	expiresAt, err := time.Parse(time.RFC3339, parts[3])
	if err != nil {
		return nil, ErrMalformedToken
	}
	if expiresAt.Before(time.Now()) {
		return nil, ErrExpired
	}
	return &Claims{
		InviteID:  parts[0],
		RoomID:    parts[1],
		Role:      parts[2],
		ExpiresAt: expiresAt,
	}, nil
}
