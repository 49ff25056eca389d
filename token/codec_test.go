package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	c := NewCodec("test-secret")
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	tok, err := c.Sign("inv-123", "room-456", "participant", expires)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := c.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.InviteID != "inv-123" || claims.RoomID != "room-456" || claims.Role != "participant" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Equal(expires) {
		t.Fatalf("expiresAt = %v, want %v", claims.ExpiresAt, expires)
	}
}

func TestSignIsDeterministic(t *testing.T) {
	c := NewCodec("test-secret")
	expires := time.Now().Add(time.Hour)

	a, err := c.Sign("inv", "room", "host", expires)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	b, err := c.Sign("inv", "room", "host", expires)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if a != b {
		t.Fatal("same inputs and secret should produce the same token")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	c := NewCodec("test-secret")
	tok, err := c.Sign("inv-123", "room-456", "participant", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	// 改载荷里的一个字符：角色升权
	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	tampered := strings.Replace(string(raw), "participant", "host", 1)
	forged := base64.RawURLEncoding.EncodeToString([]byte(tampered))

	if _, err := c.Verify(forged); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	c := NewCodec("test-secret")
	tok, err := c.Sign("inv-123", "room-456", "participant", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	raw, _ := base64.RawURLEncoding.DecodeString(tok)
	s := string(raw)
	// 签名是 hex，翻转最后一个字符
	last := s[len(s)-1]
	repl := byte('0')
	if last == '0' {
		repl = '1'
	}
	forged := base64.RawURLEncoding.EncodeToString([]byte(s[:len(s)-1] + string(repl)))

	if _, err := c.Verify(forged); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := NewCodec("secret-a").Sign("inv", "room", "host", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewCodec("secret-b").Verify(tok); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	c := NewCodec("test-secret")
	// 签名合法但已过期 → 必须报 Expired 而不是 BadSignature
	tok, err := c.Sign("inv", "room", "participant", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	c := NewCodec("test-secret")
	cases := []struct {
		name string
		tok  string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"too few fields", base64.RawURLEncoding.EncodeToString([]byte("a|b|c"))},
		{"too many fields", base64.RawURLEncoding.EncodeToString([]byte("a|b|c|d|e|f"))},
		{"empty field", base64.RawURLEncoding.EncodeToString([]byte("a||c|d|e"))},
		{"empty token", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Verify(tc.tok); !errors.Is(err, ErrMalformedToken) {
				t.Fatalf("err = %v, want ErrMalformedToken", err)
			}
		})
	}
}

func TestSignRejectsDelimiterInFields(t *testing.T) {
	c := NewCodec("test-secret")
	if _, err := c.Sign("inv|ite", "room", "host", time.Now().Add(time.Hour)); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("err = %v, want ErrInvalidField", err)
	}
	if _, err := c.Sign("inv", "ro|om", "host", time.Now().Add(time.Hour)); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("err = %v, want ErrInvalidField", err)
	}
	if _, err := c.Sign("", "room", "host", time.Now().Add(time.Hour)); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("err = %v, want ErrInvalidField", err)
	}
}
