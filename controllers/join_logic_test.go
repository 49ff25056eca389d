package controllers

import (
	"testing"
	"time"

	"Gin_postgres_redis_meet_tool/models"

	"golang.org/x/crypto/bcrypt"
)

var meetingStart = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func scheduledMeeting() *models.Meeting {
	return &models.Meeting{
		ID:                 "m-1",
		OwnerUID:           "owner",
		Status:             models.MeetingStatusScheduled,
		StartAt:            meetingStart,
		DurationMin:        30,
		AllowEarlyJoinMin:  10,
		RoomName:           "meet_demo",
		HostJoinKey:        "host-key-aaaaaaaaaaaaaaaa",
		ParticipantJoinKey: "part-key-bbbbbbbbbbbbbbbb",
	}
}

func TestAuthorizeJoinEarlyWindow(t *testing.T) {
	m := scheduledMeeting()
	// 提前 20 分钟来，窗口是提前 10 分钟 → 还要等 10 分钟
	d := authorizeJoin(m, joinRequest{Key: m.ParticipantJoinKey, DisplayName: "ana"}, meetingStart.Add(-20*time.Minute))
	if d.Outcome != joinWaiting {
		t.Fatalf("outcome = %v, want waiting", d.Outcome)
	}
	if d.RemainingMs != (10 * time.Minute).Milliseconds() {
		t.Fatalf("remainingMs = %d, want 600000", d.RemainingMs)
	}
	if d.ETA == "" {
		t.Fatal("waiting must carry a human-readable ETA")
	}
}

func TestAuthorizeJoinHostStartsMeeting(t *testing.T) {
	m := scheduledMeeting()
	d := authorizeJoin(m, joinRequest{Key: m.HostJoinKey, DisplayName: "ana"}, meetingStart.Add(-5*time.Minute))
	if d.Outcome != joinOK {
		t.Fatalf("outcome = %v, want ok (%s)", d.Outcome, d.Reason)
	}
	if d.Role != models.RoleHost {
		t.Fatalf("role = %s, want host", d.Role)
	}
	if !d.ShouldStart {
		t.Fatal("first host join while scheduled must trigger start")
	}
}

func TestAuthorizeJoinHostWhileLiveDoesNotRestart(t *testing.T) {
	m := scheduledMeeting()
	m.Status = models.MeetingStatusLive
	d := authorizeJoin(m, joinRequest{Key: m.HostJoinKey, DisplayName: "ana"}, meetingStart.Add(5*time.Minute))
	if d.Outcome != joinOK || d.ShouldStart {
		t.Fatalf("outcome = %v shouldStart = %v", d.Outcome, d.ShouldStart)
	}
}

// 过了 endAt + 15 分钟，就算 status 还写着 scheduled 也必须拒绝
func TestAuthorizeJoinPastGracePeriod(t *testing.T) {
	m := scheduledMeeting()
	d := authorizeJoin(m, joinRequest{Key: m.HostJoinKey, DisplayName: "ana"}, meetingStart.Add(50*time.Minute))
	if d.Outcome != joinExpired {
		t.Fatalf("outcome = %v, want expired", d.Outcome)
	}
}

func TestAuthorizeJoinInsideGracePeriod(t *testing.T) {
	m := scheduledMeeting()
	m.Status = models.MeetingStatusLive
	d := authorizeJoin(m, joinRequest{Key: m.ParticipantJoinKey, DisplayName: "ana"}, meetingStart.Add(40*time.Minute))
	if d.Outcome != joinOK {
		t.Fatalf("outcome = %v, want ok inside the grace window", d.Outcome)
	}
}

func TestAuthorizeJoinTerminalStates(t *testing.T) {
	for _, status := range []string{models.MeetingStatusEnded, models.MeetingStatusCanceled} {
		m := scheduledMeeting()
		m.Status = status
		d := authorizeJoin(m, joinRequest{Key: m.HostJoinKey, DisplayName: "ana"}, meetingStart)
		if d.Outcome != joinDenied || d.Reason != status {
			t.Fatalf("status %s: outcome = %v reason = %q", status, d.Outcome, d.Reason)
		}
	}
}

func TestAuthorizeJoinInvalidKey(t *testing.T) {
	m := scheduledMeeting()
	d := authorizeJoin(m, joinRequest{Key: "nope", DisplayName: "ana"}, meetingStart)
	if d.Outcome != joinDenied || d.Reason != "invalid key" {
		t.Fatalf("outcome = %v reason = %q", d.Outcome, d.Reason)
	}
	// 部分匹配不算数
	d = authorizeJoin(m, joinRequest{Key: m.HostJoinKey[:10], DisplayName: "ana"}, meetingStart)
	if d.Outcome != joinDenied {
		t.Fatal("prefix of a key must not match")
	}
}

func TestAuthorizeJoinPasscode(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("042918"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	m := scheduledMeeting()
	m.RequirePasscode = true
	m.PasscodeHash = string(hash)
	now := meetingStart.Add(-5 * time.Minute)

	d := authorizeJoin(m, joinRequest{Key: m.ParticipantJoinKey, DisplayName: "ana", Passcode: "123456"}, now)
	if d.Outcome != joinDenied || d.Reason != "invalid passcode" {
		t.Fatalf("wrong code: outcome = %v reason = %q", d.Outcome, d.Reason)
	}

	d = authorizeJoin(m, joinRequest{Key: m.ParticipantJoinKey, DisplayName: "ana"}, now)
	if d.Outcome != joinDenied || d.Reason != "passcode required" {
		t.Fatalf("missing code: outcome = %v reason = %q", d.Outcome, d.Reason)
	}

	d = authorizeJoin(m, joinRequest{Key: m.ParticipantJoinKey, DisplayName: "ana", Passcode: "042918"}, now)
	if d.Outcome != joinOK || d.Role != models.RoleParticipant {
		t.Fatalf("correct code: outcome = %v role = %s", d.Outcome, d.Role)
	}

	// host 不用输 passcode
	d = authorizeJoin(m, joinRequest{Key: m.HostJoinKey, DisplayName: "ana"}, now)
	if d.Outcome != joinOK || d.Role != models.RoleHost {
		t.Fatalf("host: outcome = %v role = %s", d.Outcome, d.Role)
	}
}

// 终态优先于时间窗：ended 报 denied 而不是 expired
func TestAuthorizeJoinTerminalBeatsExpiry(t *testing.T) {
	m := scheduledMeeting()
	m.Status = models.MeetingStatusEnded
	stamp := meetingStart
	m.ExpiresAt = &stamp
	d := authorizeJoin(m, joinRequest{Key: m.HostJoinKey, DisplayName: "ana"}, meetingStart.Add(time.Hour))
	if d.Outcome != joinDenied {
		t.Fatalf("outcome = %v, want denied", d.Outcome)
	}
}
