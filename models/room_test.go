package models

import "testing"

func TestRoomGuard(t *testing.T) {
	cases := []struct {
		name        string
		status      string
		waitingRoom bool
		existing    bool
		want        GuardDecision
	}{
		{"open new no lobby", RoomStatusOpen, false, false, GuardDecision{CanJoin: true, NeedsAdmission: false}},
		{"open new with lobby", RoomStatusOpen, true, false, GuardDecision{CanJoin: true, NeedsAdmission: true}},
		{"open existing with lobby", RoomStatusOpen, true, true, GuardDecision{CanJoin: true, NeedsAdmission: false}},
		{"locked new", RoomStatusLocked, false, false, GuardDecision{CanJoin: false, NeedsAdmission: false}},
		{"locked new with lobby", RoomStatusLocked, true, false, GuardDecision{CanJoin: false, NeedsAdmission: true}},
		{"locked existing", RoomStatusLocked, false, true, GuardDecision{CanJoin: true, NeedsAdmission: false}},
		{"ended new", RoomStatusEnded, false, false, GuardDecision{CanJoin: false, NeedsAdmission: false}},
		{"ended existing", RoomStatusEnded, true, true, GuardDecision{CanJoin: false, NeedsAdmission: false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rm := &Room{Status: tc.status, WaitingRoomEnabled: tc.waitingRoom}
			if got := rm.Guard(tc.existing); got != tc.want {
				t.Fatalf("Guard(%v) = %+v, want %+v", tc.existing, got, tc.want)
			}
		})
	}
}

func TestRoleCapabilities(t *testing.T) {
	host := RoleHost.Capabilities()
	if !host.RoomAdmin || !host.CanPublish || !host.CanSubscribe {
		t.Fatalf("host capabilities: %+v", host)
	}
	p := RoleParticipant.Capabilities()
	if p.RoomAdmin {
		t.Fatal("participant must not get room admin")
	}
	if !p.CanPublish || !p.CanSubscribe || !p.CanPublishData || !p.CanUpdateOwnMetadata {
		t.Fatalf("participant capabilities: %+v", p)
	}
}

func TestRoleFromLabel(t *testing.T) {
	if RoleFromLabel(" Host ") != RoleHost {
		t.Fatal("host label should normalize")
	}
	if RoleFromLabel("participant") != RoleParticipant {
		t.Fatal("participant label should parse")
	}
	if RoleFromLabel("admin").Valid() {
		t.Fatal("unknown label must be invalid")
	}
}
