package controllers

import (
	"errors"
	"net/http"
	"time"

	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoomController struct{ *Srv }

func GetRoomController(s *Srv) *RoomController { return &RoomController{Srv: s} }

// POST /api/rooms
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var in struct {
		Name               string `json:"name" binding:"required"`
		WaitingRoomEnabled bool   `json:"waitingRoomEnabled"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}
	uid := app.CurrentUID(c)
	v, _ := c.Get("displayName")
	displayName, _ := v.(string)

	room := &models.Room{
		ID:                 uuid.NewString(),
		OwnerUID:           uid,
		Name:               in.Name,
		Status:             models.RoomStatusOpen,
		WaitingRoomEnabled: in.WaitingRoomEnabled,
	}
	if err := rc.Repo.CreateRoom(c.Request.Context(), room); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// 建房者立刻落一条 host 参与者记录，身份和角色从此绑定
	p := &models.Participant{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		UID:         uid,
		DisplayName: displayName,
		Role:        models.RoleHost,
		JoinedAt:    time.Now(),
	}
	if err := rc.Repo.CreateParticipant(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GET /api/rooms/:id/guard
// 只读判定，不改任何状态
func (rc *RoomController) Guard(c *gin.Context) {
	room, err := rc.Repo.FindRoomByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "room not found", "code": "not_found"})
		return
	}
	existing, err := rc.Repo.IsExistingParticipant(c.Request.Context(), room.ID, app.CurrentUID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, room.Guard(existing))
}

// POST /api/rooms/:id/join
func (rc *RoomController) Join(c *gin.Context) {
	room, err := rc.Repo.FindRoomByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "room not found", "code": "not_found"})
		return
	}
	uid := app.CurrentUID(c)
	v, _ := c.Get("displayName")
	displayName, _ := v.(string)
	now := time.Now()

	existing, err := rc.Repo.IsExistingParticipant(c.Request.Context(), room.ID, uid)
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

	if guard.NeedsAdmission {
		p := &models.Participant{
			ID:          uuid.NewString(),
			RoomID:      room.ID,
			UID:         uid,
			DisplayName: displayName,
			Role:        models.RoleParticipant,
			JoinedAt:    now,
			LobbyStatus: models.LobbyWaiting,
		}
		if err := rc.Repo.CreateParticipant(c.Request.Context(), p); err != nil && !errors.Is(err, db.ErrAlreadyWaiting) {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, app.H{"status": "waiting", "roomId": room.ID})
		return
	}

	role := models.RoleParticipant
	if uid == room.OwnerUID {
		role = models.RoleHost
	}
	if !existing {
		p := &models.Participant{
			ID:          uuid.NewString(),
			RoomID:      room.ID,
			UID:         uid,
			DisplayName: displayName,
			Role:        role,
			JoinedAt:    now,
		}
		if err := rc.Repo.CreateParticipant(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
	} else if existingP, err := rc.Repo.FindParticipant(c.Request.Context(), room.ID, uid); err == nil {
		role = existingP.Role
	}

	identity, grant, err := rc.Media.Mint(room.ID, displayName, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	_ = rc.Repo.TouchParticipantSeen(c.Request.Context(), room.ID, uid)

	c.JSON(http.StatusOK, app.H{
		"status":      "ok",
		"role":        role,
		"identity":    identity,
		"accessToken": grant,
		"roomId":      room.ID,
	})
}

// POST /api/rooms/:id/lock | /unlock | /end（owner 专属）
func (rc *RoomController) Lock(c *gin.Context)   { rc.setStatus(c, models.RoomStatusLocked) }
func (rc *RoomController) Unlock(c *gin.Context) { rc.setStatus(c, models.RoomStatusOpen) }
func (rc *RoomController) End(c *gin.Context)    { rc.setStatus(c, models.RoomStatusEnded) }

func (rc *RoomController) setStatus(c *gin.Context, target string) {
	room, err := rc.Repo.FindRoomByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "room not found", "code": "not_found"})
		return
	}
	if app.CurrentUID(c) != room.OwnerUID {
		c.JSON(http.StatusForbidden, app.H{"error": "only the owner can change room status", "code": "unauthorized"})
		return
	}
	if err := rc.Repo.SetRoomStatus(c.Request.Context(), room.ID, target); err != nil {
		if errors.Is(err, db.ErrRoomEnded) {
			c.JSON(http.StatusConflict, app.H{"error": err.Error(), "code": "conflict"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "status": target})
}
