package controllers

import (
	"strings"
	"testing"
	"time"

	"Gin_postgres_redis_meet_tool/app"
)

func validInput() createMeetingInput {
	return createMeetingInput{
		Title:             "standup",
		StartAt:           time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC),
		DurationMin:       30,
		AllowEarlyJoinMin: 10,
	}
}

func TestValidateMeetingInput(t *testing.T) {
	plan := app.PlanLimits{MaxDurationMin: 60, MaxParticipants: 50}

	cases := []struct {
		name    string
		mutate  func(*createMeetingInput)
		enforce bool
		wantErr string
	}{
		{"valid", func(in *createMeetingInput) {}, false, ""},
		{"zero duration", func(in *createMeetingInput) { in.DurationMin = 0 }, false, "durationMin"},
		{"negative early join", func(in *createMeetingInput) { in.AllowEarlyJoinMin = -1 }, false, "allowEarlyJoinMin"},
		{"passcode too short", func(in *createMeetingInput) { in.RequirePasscode = true; in.Passcode = "12345" }, false, "six digits"},
		{"passcode with letters", func(in *createMeetingInput) { in.RequirePasscode = true; in.Passcode = "12a456" }, false, "six digits"},
		{"passcode ok", func(in *createMeetingInput) { in.RequirePasscode = true; in.Passcode = "042918" }, false, ""},
		{"over plan limit, enforced", func(in *createMeetingInput) { in.DurationMin = 90 }, true, "plan limit"},
		{"over plan limit, not enforced", func(in *createMeetingInput) { in.DurationMin = 90 }, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			err := validateMeetingInput(in, tc.enforce, plan)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want contains %q", err, tc.wantErr)
			}
		})
	}
}

func TestNewJoinKeyShape(t *testing.T) {
	a := newJoinKey()
	b := newJoinKey()
	if len(a) != 48 || len(b) != 48 {
		t.Fatalf("key lengths = %d, %d, want 48", len(a), len(b))
	}
	if a == b {
		t.Fatal("join keys must be unguessable, got a duplicate")
	}
}
