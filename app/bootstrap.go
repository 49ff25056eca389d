// app/bootstrap.go
package app

import (
	"context"
	"fmt"
	"time"

	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/models"
	"Gin_postgres_redis_meet_tool/token"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BootstrapDemoRoom 首次启动时给 BOOTSTRAP_OWNER 建一个房间，
// 打印一条可以直接点开的 host 邀请链接
func BootstrapDemoRoom(ctx context.Context, cfg Config, repo *db.Repo, codec token.Codec) {
	if cfg.BootstrapOwner == "" {
		return
	}

	owner, err := repo.FindOrCreateUser(ctx, uuid.NewString(), cfg.BootstrapOwner, cfg.BootstrapOwner)
	if err != nil {
		logrus.Warnf("bootstrap owner failed: %v", err)
		return
	}

	// 重启不重复建房
	if n, err := repo.CountRoomsOwnedBy(ctx, owner.ID); err != nil || n > 0 {
		return
	}

	room := &models.Room{
		ID:       uuid.NewString(),
		OwnerUID: owner.ID,
		Name:     "Demo Room",
		Status:   models.RoomStatusOpen,
	}
	if err := repo.CreateRoom(ctx, room); err != nil {
		logrus.Warnf("bootstrap room failed: %v", err)
		return
	}

	inv := &models.Invite{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		CreatedBy: owner.ID,
		Role:      models.RoleHost,
		MaxUses:   1,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := repo.CreateInvite(ctx, inv); err != nil {
		logrus.Warnf("bootstrap invite failed: %v", err)
		return
	}

	tok, err := codec.Sign(inv.ID, room.ID, string(inv.Role), inv.ExpiresAt)
	if err != nil {
		logrus.Warnf("bootstrap token failed: %v", err)
		return
	}

	link := fmt.Sprintf("%s/join?invite=%s", cfg.WebOrigin, tok)
	logrus.Infof("[BOOTSTRAP] demo room created for %s", cfg.BootstrapOwner)
	logrus.Infof("[BOOTSTRAP] host invite link: %s", link)
}
