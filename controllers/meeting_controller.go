package controllers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"Gin_postgres_redis_meet_tool/app"
	"Gin_postgres_redis_meet_tool/db"
	"Gin_postgres_redis_meet_tool/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type MeetingController struct{ *Srv }

func GetMeetingController(s *Srv) *MeetingController { return &MeetingController{Srv: s} }

// 六位数字，创建时强制；入会时只比对摘要
var passcodeRe = regexp.MustCompile(`^[0-9]{6}$`)

// 两把钥匙都是 24 字节随机数的 hex
func newJoinKey() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

type createMeetingInput struct {
	Title             string    `json:"title" binding:"required"`
	StartAt           time.Time `json:"startAt" binding:"required"`
	DurationMin       int       `json:"durationMin" binding:"required"`
	Timezone          string    `json:"timezone"`
	AllowEarlyJoinMin int       `json:"allowEarlyJoinMin"`
	RequirePasscode   bool      `json:"requirePasscode"`
	Passcode          string    `json:"passcode"`
	LobbyEnabled      bool      `json:"lobbyEnabled"`
}

// 创建时的业务校验；套餐限制只在显式开启时生效
func validateMeetingInput(in createMeetingInput, enforcePlan bool, plan app.PlanLimits) error {
	if in.DurationMin <= 0 {
		return errors.New("durationMin must be positive")
	}
	if in.AllowEarlyJoinMin < 0 {
		return errors.New("allowEarlyJoinMin must not be negative")
	}
	if in.RequirePasscode && !passcodeRe.MatchString(in.Passcode) {
		return errors.New("passcode must be exactly six digits")
	}
	if enforcePlan && plan.MaxDurationMin > 0 && in.DurationMin > plan.MaxDurationMin {
		return fmt.Errorf("durationMin exceeds plan limit of %d", plan.MaxDurationMin)
	}
	return nil
}

// POST /api/meetings
func (mc *MeetingController) CreateMeeting(c *gin.Context) {
	var in createMeetingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}
	if err := validateMeetingInput(in, mc.Cfg.EnforcePlanLimits, mc.Cfg.Plan); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}
	uid := app.CurrentUID(c)

	var passcodeHash string
	if in.RequirePasscode {
		h, err := bcrypt.GenerateFromPassword([]byte(in.Passcode), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		passcodeHash = string(h)
	}

	hostKey := newJoinKey()
	participantKey := newJoinKey()
	for participantKey == hostKey {
		participantKey = newJoinKey()
	}

	m := &models.Meeting{
		ID:                 uuid.NewString(),
		OwnerUID:           uid,
		Title:              in.Title,
		Status:             models.MeetingStatusScheduled,
		StartAt:            in.StartAt,
		DurationMin:        in.DurationMin,
		Timezone:           in.Timezone,
		AllowEarlyJoinMin:  in.AllowEarlyJoinMin,
		RequirePasscode:    in.RequirePasscode,
		PasscodeHash:       passcodeHash,
		LobbyEnabled:       in.LobbyEnabled,
		RoomName:           "meet_" + uuid.NewString(),
		HostJoinKey:        hostKey,
		ParticipantJoinKey: participantKey,
	}
	if err := mc.Repo.CreateMeeting(c.Request.Context(), m); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	mc.audit(c.Request.Context(), m.ID, models.LogCreated, &uid, nil)

	// 钥匙只在创建响应和 owner 视图里出现
	c.JSON(http.StatusCreated, app.H{
		"meeting":            m,
		"hostJoinKey":        m.HostJoinKey,
		"participantJoinKey": m.ParticipantJoinKey,
	})
}

// GET /api/meetings/:id
func (mc *MeetingController) GetMeeting(c *gin.Context) {
	m, err := mc.Repo.FindMeetingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "meeting not found", "code": "not_found"})
		return
	}
	if app.CurrentUID(c) == m.OwnerUID {
		c.JSON(http.StatusOK, app.H{
			"meeting":            m,
			"hostJoinKey":        m.HostJoinKey,
			"participantJoinKey": m.ParticipantJoinKey,
		})
		return
	}
	c.JSON(http.StatusOK, app.H{"meeting": m})
}

// POST /api/meetings/:id/join
// 入会授权：key 定角色 → passcode → 时间窗 → 发媒体凭证，
// host 第一次进来顺带把 scheduled 拉成 live
func (mc *MeetingController) Join(c *gin.Context) {
	var in struct {
		Key         string `json:"key" binding:"required"`
		DisplayName string `json:"displayName" binding:"required"`
		Passcode    string `json:"passcode"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	m, err := mc.Repo.FindMeetingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "not found", "code": "not_found"})
		return
	}

	// 整个请求只取一次 now，避免步骤间状态翻转
	now := time.Now()
	d := authorizeJoin(m, joinRequest{Key: in.Key, DisplayName: in.DisplayName, Passcode: in.Passcode}, now)

	switch d.Outcome {
	case joinDenied:
		mc.audit(c.Request.Context(), m.ID, models.LogDenied, optionalUID(c),
			map[string]interface{}{"reason": d.Reason, "displayName": in.DisplayName})
		c.JSON(http.StatusForbidden, app.H{"error": d.Reason, "code": "denied"})
		return
	case joinExpired:
		c.JSON(http.StatusGone, app.H{"error": d.Reason, "code": "expired"})
		return
	case joinWaiting:
		c.JSON(http.StatusOK, app.H{
			"status":      "waiting",
			"remainingMs": d.RemainingMs,
			"eta":         d.ETA,
		})
		return
	}

	if d.ShouldStart {
		started, err := mc.Repo.StartMeeting(c.Request.Context(), m.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		if started {
			mc.audit(c.Request.Context(), m.ID, models.LogStarted, optionalUID(c), nil)
		}
	}

	identity, grant, err := mc.Media.Mint(m.RoomName, in.DisplayName, d.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	// 参与者记录：有登录态用 uid，否则用合成身份
	uid := app.CurrentUID(c)
	if uid == "" {
		uid = uuid.NewString()
	}
	lobbyStatus := ""
	if m.LobbyEnabled && d.Role == models.RoleParticipant {
		lobbyStatus = models.LobbyWaiting
	}
	p := &models.Participant{
		ID:          uuid.NewString(),
		RoomID:      m.ID,
		UID:         uid,
		DisplayName: in.DisplayName,
		Role:        d.Role,
		JoinedAt:    now,
		LobbyStatus: lobbyStatus,
	}
	if err := mc.Repo.CreateParticipant(c.Request.Context(), p); err != nil && !errors.Is(err, db.ErrAlreadyWaiting) {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}

	mc.audit(c.Request.Context(), m.ID, models.LogTokenIssued, optionalUID(c),
		map[string]interface{}{"role": d.Role, "identity": identity})

	c.JSON(http.StatusOK, app.H{
		"status":      "ok",
		"role":        d.Role,
		"identity":    identity,
		"accessToken": grant,
		"roomName":    m.RoomName,
		"lobby":       lobbyStatus == models.LobbyWaiting,
	})
}

// POST /api/meetings/:id/end
// owner 或持 host key 的人都能结束
func (mc *MeetingController) End(c *gin.Context) {
	var in struct {
		HostKey string `json:"hostKey"`
	}
	_ = c.ShouldBindJSON(&in)

	m, err := mc.Repo.FindMeetingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "not found", "code": "not_found"})
		return
	}
	uid := app.CurrentUID(c)
	if uid != m.OwnerUID && !(in.HostKey != "" && keyEqual(in.HostKey, m.HostJoinKey)) {
		c.JSON(http.StatusForbidden, app.H{"error": "owner or host key required", "code": "unauthorized"})
		return
	}

	if err := mc.Repo.EndMeeting(c.Request.Context(), m.ID); err != nil {
		mc.respondLifecycleErr(c, err)
		return
	}
	mc.audit(c.Request.Context(), m.ID, models.LogEnded, optionalUID(c), nil)
	c.JSON(http.StatusOK, app.H{"ok": true, "status": models.MeetingStatusEnded})
}

// POST /api/meetings/:id/cancel
// 只有 owner，且不能从终态 cancel
func (mc *MeetingController) Cancel(c *gin.Context) {
	m, err := mc.Repo.FindMeetingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "not found", "code": "not_found"})
		return
	}
	uid := app.CurrentUID(c)
	if uid != m.OwnerUID {
		c.JSON(http.StatusForbidden, app.H{"error": "only the owner can cancel", "code": "unauthorized"})
		return
	}

	if err := mc.Repo.CancelMeeting(c.Request.Context(), m.ID); err != nil {
		mc.respondLifecycleErr(c, err)
		return
	}
	mc.audit(c.Request.Context(), m.ID, models.LogCanceled, &uid, nil)
	c.JSON(http.StatusOK, app.H{"ok": true, "status": models.MeetingStatusCanceled})
}

// GET /api/meetings/:id/log
func (mc *MeetingController) ListLog(c *gin.Context) {
	m, err := mc.Repo.FindMeetingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "not found", "code": "not_found"})
		return
	}
	if app.CurrentUID(c) != m.OwnerUID {
		c.JSON(http.StatusForbidden, app.H{"error": "only the owner can read the log", "code": "unauthorized"})
		return
	}
	entries, err := mc.Repo.ListMeetingLog(c.Request.Context(), m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"entries": entries})
}

func (mc *MeetingController) respondLifecycleErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, app.H{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found", "code": "not_found"})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
