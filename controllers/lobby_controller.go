package controllers

import (
	"errors"
	"net/http"
	"time"

	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/db"

	"github.com/gin-gonic/gin"
)

// 等候室：只有该房间的 host 能放行/拒绝。
// host 判定查的是这个房间里的参与者角色，不是全局角色
type LobbyController struct{ *Srv }

func GetLobbyController(s *Srv) *LobbyController { return &LobbyController{Srv: s} }

func (lc *LobbyController) requireRoomHost(c *gin.Context, roomID string) bool {
	uid := app.CurrentUID(c)
	isHost, err := lc.Repo.IsRoomHost(c.Request.Context(), roomID, uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return false
	}
	if !isHost {
		c.JSON(http.StatusForbidden, app.H{"error": "not a host of this room", "code": "unauthorized"})
		return false
	}
	return true
}

// POST /api/rooms/:id/lobby/:uid/admit
func (lc *LobbyController) Admit(c *gin.Context) {
	roomID := c.Param("id")
	if !lc.requireRoomHost(c, roomID) {
		return
	}
	err := lc.Repo.AdmitParticipant(c.Request.Context(), roomID, c.Param("uid"), time.Now())
	if err != nil {
		lc.respondLobbyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/rooms/:id/lobby/:uid/deny
// 被拒的记录保留不删，留作审计
func (lc *LobbyController) Deny(c *gin.Context) {
	roomID := c.Param("id")
	if !lc.requireRoomHost(c, roomID) {
		return
	}
	err := lc.Repo.DenyParticipant(c.Request.Context(), roomID, c.Param("uid"), time.Now())
	if err != nil {
		lc.respondLobbyErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/rooms/:id/lobby/admit-all
// 一次一致读内的全部 waiting 整体放行；之后进来的继续等
func (lc *LobbyController) AdmitAll(c *gin.Context) {
	roomID := c.Param("id")
	if !lc.requireRoomHost(c, roomID) {
		return
	}
	n, err := lc.Repo.AdmitAllWaiting(c.Request.Context(), roomID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"admitted": n})
}

// GET /api/rooms/:id/lobby
func (lc *LobbyController) ListWaiting(c *gin.Context) {
	roomID := c.Param("id")
	if !lc.requireRoomHost(c, roomID) {
		return
	}
	ps, err := lc.Repo.ListWaiting(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"waiting": ps})
}

func (lc *LobbyController) respondLobbyErr(c *gin.Context, err error) {
	if errors.Is(err, db.ErrNotWaiting) {
		c.JSON(http.StatusConflict, app.H{"error": err.Error(), "code": "conflict"})
		return
	}
	c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
}
