package models

import (
	"testing"
	"time"
)

func testMeeting(start time.Time) *Meeting {
	return &Meeting{
		ID:                "m-1",
		Status:            MeetingStatusScheduled,
		StartAt:           start,
		DurationMin:       30,
		AllowEarlyJoinMin: 10,
	}
}

func TestMeetingTimeWindows(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	m := testMeeting(start)

	if got := m.EndAt(); !got.Equal(start.Add(30 * time.Minute)) {
		t.Fatalf("EndAt = %v", got)
	}
	if got := m.HardExpireAt(); !got.Equal(start.Add(45 * time.Minute)) {
		t.Fatalf("HardExpireAt = %v", got)
	}
	if got := m.EarlyJoinAt(); !got.Equal(start.Add(-10 * time.Minute)) {
		t.Fatalf("EarlyJoinAt = %v", got)
	}
}

func TestMeetingExpiredBy(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		now     time.Time
		stamped *time.Time
		want    bool
	}{
		{"before start", start.Add(-time.Hour), nil, false},
		{"during meeting", start.Add(10 * time.Minute), nil, false},
		{"inside grace period", start.Add(40 * time.Minute), nil, false},
		{"past grace period", start.Add(50 * time.Minute), nil, true},
		{"stamped in the past", start.Add(5 * time.Minute), timePtr(start), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := testMeeting(start)
			m.ExpiresAt = tc.stamped
			if got := m.ExpiredBy(tc.now); got != tc.want {
				t.Fatalf("ExpiredBy(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

// status 滞后也拦得住：哪怕还写着 scheduled，过了宽限期一样算过期
func TestMeetingExpiredByIgnoresStaleStatus(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	m := testMeeting(start)
	m.Status = MeetingStatusScheduled

	if !m.ExpiredBy(start.Add(50 * time.Minute)) {
		t.Fatal("a meeting past endAt + grace must be expired regardless of status")
	}
}

func TestMeetingIsTerminal(t *testing.T) {
	m := testMeeting(time.Now())
	for status, want := range map[string]bool{
		MeetingStatusScheduled: false,
		MeetingStatusLive:      false,
		MeetingStatusEnded:     true,
		MeetingStatusCanceled:  true,
	} {
		m.Status = status
		if m.IsTerminal() != want {
			t.Fatalf("IsTerminal(%s) = %v, want %v", status, !want, want)
		}
	}
}

func TestMeetingEarlyWaitWindow(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	m := testMeeting(start)

	if !m.InEarlyWaitWindow(start.Add(-20 * time.Minute)) {
		t.Fatal("20 minutes before start should still be waiting")
	}
	if m.InEarlyWaitWindow(start.Add(-5 * time.Minute)) {
		t.Fatal("inside the early-join window should not be waiting")
	}
}

func timePtr(ts time.Time) *time.Time { return &ts }
