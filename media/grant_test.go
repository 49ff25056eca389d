package media

import (
	"errors"
	"strings"
	"testing"
	"time"

	"Gin_postgres_redis_meet_tool/models"

	"github.com/golang-jwt/jwt/v5"
)

func testIssuer() *Issuer {
	return NewIssuer("api-key", "api-secret", time.Hour)
}

func parseGrant(t *testing.T, raw string) *grantClaims {
	t.Helper()
	claims := &grantClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tk *jwt.Token) (interface{}, error) {
		return []byte("api-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		t.Fatalf("parse grant: %v", err)
	}
	return claims
}

func TestMintHostGrant(t *testing.T) {
	identity, raw, err := testIssuer().Mint("meet_demo", "ana", models.RoleHost)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims := parseGrant(t, raw)

	if claims.Issuer != "api-key" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if claims.Subject != identity {
		t.Fatalf("subject = %q, identity = %q", claims.Subject, identity)
	}
	if claims.Name != "ana" {
		t.Fatalf("name = %q", claims.Name)
	}
	v := claims.Video
	if v.Room != "meet_demo" || !v.RoomJoin || !v.RoomAdmin {
		t.Fatalf("video grant = %+v", v)
	}
	if !v.CanPublish || !v.CanSubscribe || !v.CanPublishData || !v.CanUpdateOwnMetadata {
		t.Fatalf("video grant = %+v", v)
	}
}

func TestMintParticipantGrant(t *testing.T) {
	_, raw, err := testIssuer().Mint("meet_demo", "bob", models.RoleParticipant)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims := parseGrant(t, raw)
	if claims.Video.RoomAdmin {
		t.Fatal("participant grant must not carry room admin")
	}
	if !claims.Video.CanPublish || !claims.Video.CanSubscribe {
		t.Fatalf("video grant = %+v", claims.Video)
	}
}

func TestIdentityIsRolePrefixedAndUnique(t *testing.T) {
	a := NewIdentity(models.RoleHost, "ana")
	b := NewIdentity(models.RoleHost, "ana")

	if !strings.HasPrefix(a, "host_ana_") {
		t.Fatalf("identity = %q", a)
	}
	// 同名同时入会也不能撞身份
	if a == b {
		t.Fatal("identities must never repeat")
	}
}

func TestMintRequiresDisplayName(t *testing.T) {
	if _, _, err := testIssuer().Mint("meet_demo", "  ", models.RoleHost); !errors.Is(err, ErrEmptyDisplayName) {
		t.Fatalf("err = %v, want ErrEmptyDisplayName", err)
	}
}
