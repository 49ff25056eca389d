package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/models"
	"Gin_postgres_redis_meet_tool/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InviteController struct{ *Srv }

func GetInviteController(s *Srv) *InviteController { return &InviteController{Srv: s} }

// POST /api/rooms/:id/invites
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		Role         string `json:"role"`
		MaxUses      int    `json:"maxUses"`
		ExpiresHours int    `json:"expiresHours"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}
	if in.Role == "" {
		in.Role = string(models.RoleParticipant)
	}
	role := models.RoleFromLabel(in.Role)
	if !role.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "role must be host or participant", "code": "invalid_input"})
		return
	}
	if in.MaxUses <= 0 {
		in.MaxUses = 1
	}
	if in.ExpiresHours <= 0 {
		in.ExpiresHours = 24
	}

	room, err := ic.Repo.FindRoomByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "room not found", "code": "not_found"})
		return
	}
	uid := app.CurrentUID(c)
	if !ic.canManageRoom(c, room, uid) {
		c.JSON(http.StatusForbidden, app.H{"error": "not a host of this room", "code": "unauthorized"})
		return
	}

	inv := &models.Invite{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		CreatedBy: uid,
		Role:      role,
		MaxUses:   in.MaxUses,
		ExpiresAt: time.Now().Add(time.Duration(in.ExpiresHours) * time.Hour),
	}
	if err := ic.Repo.CreateInvite(c.Request.Context(), inv); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	tok, err := ic.Codec.Sign(inv.ID, inv.RoomID, string(inv.Role), inv.ExpiresAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	link := strings.TrimRight(ic.Cfg.WebOrigin, "/") + "/join?invite=" + tok

	c.JSON(http.StatusCreated, app.H{
		"invite": inv,
		"token":  tok,
		"link":   link, // 开发环境直接点
	})
}

// GET /api/rooms/:id/invites
func (ic *InviteController) ListByRoom(c *gin.Context) {
	room, err := ic.Repo.FindRoomByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "room not found", "code": "not_found"})
		return
	}
	if !ic.canManageRoom(c, room, app.CurrentUID(c)) {
		c.JSON(http.StatusForbidden, app.H{"error": "not a host of this room", "code": "unauthorized"})
		return
	}
	invs, err := ic.Repo.ListInvitesByRoom(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"invites": invs})
}

// POST /api/invites/redeem
// 兑换：先离线验签，再查库做原子扣次
func (ic *InviteController) Redeem(c *gin.Context) {
	var in struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	claims, err := ic.Codec.Verify(in.Token)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			c.JSON(http.StatusGone, app.H{"error": err.Error(), "code": "expired"})
		case errors.Is(err, token.ErrBadSignature):
			c.JSON(http.StatusUnauthorized, app.H{"error": err.Error(), "code": "unauthorized"})
		default:
			c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		}
		return
	}

	now := time.Now()
	inv, err := ic.Repo.FindInviteByID(c.Request.Context(), claims.InviteID)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "invite not found", "code": "not_found"})
		return
	}
	// 签名挡住了篡改；还对不上说明 token 是别的记录签出来的
	if inv.RoomID != claims.RoomID || string(inv.Role) != claims.Role {
		c.JSON(http.StatusBadRequest, app.H{"error": "token does not match invite", "code": "invalid_input"})
		return
	}

	room, err := ic.Repo.FindRoomByID(c.Request.Context(), inv.RoomID)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "room not found", "code": "not_found"})
		return
	}

	uid := app.CurrentUID(c)
	existing, err := ic.Repo.IsExistingParticipant(c.Request.Context(), room.ID, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	guard := room.Guard(existing)
	if !guard.CanJoin {
		if room.Status == models.RoomStatusEnded {
			c.JSON(http.StatusGone, app.H{"error": "room ended", "code": "expired"})
			return
		}
		c.JSON(http.StatusForbidden, app.H{"error": "room locked", "code": "denied"})
		return
	}

	// 原子扣次：并发打到上限恰好 maxUses 个成功
	if err := ic.Repo.RedeemInvite(c.Request.Context(), inv.ID, now); err != nil {
		switch {
		case errors.Is(err, db.ErrInviteRevoked), errors.Is(err, db.ErrInviteExhausted):
			c.JSON(http.StatusConflict, app.H{"error": err.Error(), "code": "conflict"})
		case errors.Is(err, db.ErrInviteExpired):
			c.JSON(http.StatusGone, app.H{"error": err.Error(), "code": "expired"})
		default:
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		}
		return
	}

	v, _ := c.Get("displayName")
	displayName, _ := v.(string)

	// host 不进等候室；participant 在开了等候室且不是老成员时要等放行
	if guard.NeedsAdmission && inv.Role != models.RoleHost {
		p := &models.Participant{
			ID:          uuid.NewString(),
			RoomID:      room.ID,
			UID:         uid,
			DisplayName: displayName,
			Role:        inv.Role,
			JoinedAt:    now,
			LobbyStatus: models.LobbyWaiting,
		}
		if err := ic.Repo.CreateParticipant(c.Request.Context(), p); err != nil && !errors.Is(err, db.ErrAlreadyWaiting) {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, app.H{"status": "waiting", "roomId": room.ID})
		return
	}

	if !existing {
		p := &models.Participant{
			ID:          uuid.NewString(),
			RoomID:      room.ID,
			UID:         uid,
			DisplayName: displayName,
			Role:        inv.Role,
			JoinedAt:    now,
		}
		if err := ic.Repo.CreateParticipant(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
	} else if inv.Role == models.RoleHost {
		// 老成员拿 host 邀请再进来 → 升 host（只升不降）
		if err := ic.Repo.PromoteParticipantRole(c.Request.Context(), room.ID, uid); err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
	}

	identity, grant, err := ic.Media.Mint(room.ID, displayName, inv.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"status":      "ok",
		"role":        inv.Role,
		"identity":    identity,
		"accessToken": grant,
		"roomId":      room.ID,
	})
}

// POST /api/invites/:id/revoke
// 创建者或房间 host；撤销是一次性的，重复撤销报 Conflict
func (ic *InviteController) Revoke(c *gin.Context) {
	inv, err := ic.Repo.FindInviteByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "invite not found", "code": "not_found"})
		return
	}
	uid := app.CurrentUID(c)
	if uid != inv.CreatedBy {
		isHost, err := ic.Repo.IsRoomHost(c.Request.Context(), inv.RoomID, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		if !isHost {
			c.JSON(http.StatusForbidden, app.H{"error": "not a host of this room", "code": "unauthorized"})
			return
		}
	}

	if err := ic.Repo.RevokeInvite(c.Request.Context(), inv.ID); err != nil {
		if errors.Is(err, db.ErrAlreadyRevoked) {
			c.JSON(http.StatusConflict, app.H{"error": err.Error(), "code": "conflict"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// owner 或该房间的 host
func (ic *InviteController) canManageRoom(c *gin.Context, room *models.Room, uid string) bool {
	if uid == room.OwnerUID {
		return true
	}
	isHost, err := ic.Repo.IsRoomHost(c.Request.Context(), room.ID, uid)
	return err == nil && isHost
}
