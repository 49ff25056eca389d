package controllers

import (
	"crypto/subtle"
	"fmt"
	"time"

	"Gin_postgres_redis_meet_tool/models"

	"golang.org/x/crypto/bcrypt"
)

// 入会判定。与存储解耦的纯函数：传入已加载的会议和一次性捕获的 now，
// 按固定顺序短路，时间窗判断优先于落库的 status（status 可能滞后于现实）

type joinRequest struct {
	Key         string
	DisplayName string
	Passcode    string
}

type joinOutcome int

const (
	joinDenied joinOutcome = iota
	joinExpired
	joinWaiting
	joinOK
)

type joinDecision struct {
	Outcome     joinOutcome
	Role        models.Role
	Reason      string
	RemainingMs int64
	ETA         string
	// host 在 scheduled 状态下成功入会要顺带把会议拉起来
	ShouldStart bool
}

func authorizeJoin(m *models.Meeting, req joinRequest, now time.Time) joinDecision {
	// 1. 终态直接拒绝
	if m.IsTerminal() {
		return joinDecision{Outcome: joinDenied, Reason: m.Status}
	}

	// 2. 时间窗独立于 status：盖过章的 expiresAt，或超出 endAt + 宽限期
	if m.ExpiredBy(now) {
		return joinDecision{Outcome: joinExpired, Reason: "meeting expired"}
	}

	// 3. 纯按 key 定角色，精确匹配，别无他途
	var role models.Role
	switch {
	case keyEqual(req.Key, m.HostJoinKey):
		role = models.RoleHost
	case keyEqual(req.Key, m.ParticipantJoinKey):
		role = models.RoleParticipant
	default:
		return joinDecision{Outcome: joinDenied, Reason: "invalid key"}
	}

	// 4. participant 才查 passcode；格式在创建时就限定了六位数字，
	//    这里只比对摘要
	if m.RequirePasscode && role == models.RoleParticipant {
		if req.Passcode == "" {
			return joinDecision{Outcome: joinDenied, Reason: "passcode required"}
		}
		if bcrypt.CompareHashAndPassword([]byte(m.PasscodeHash), []byte(req.Passcode)) != nil {
			return joinDecision{Outcome: joinDenied, Reason: "invalid passcode"}
		}
	}

	// 5. 还没到提前入会窗口 → 等着，不发凭证
	if m.InEarlyWaitWindow(now) {
		wait := m.EarlyJoinAt().Sub(now)
		return joinDecision{
			Outcome:     joinWaiting,
			Role:        role,
			RemainingMs: wait.Milliseconds(),
			ETA:         fmt.Sprintf("doors open in %s", wait.Round(time.Second)),
		}
	}

	return joinDecision{
		Outcome:     joinOK,
		Role:        role,
		ShouldStart: role == models.RoleHost && m.Status == models.MeetingStatusScheduled,
	}
}

func keyEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
