package race

import (
	"fmt"
	"testing"
)

func TestRoom_CapacityAndPhaseGuardJoins(t *testing.T) {
	r := NewRoom(0)

	var members []*Player
	for i := 0; i < maxRoomSize; i++ {
		p, _ := newTestPlayer(t, fmt.Sprintf("p%d", i))
		if err := r.AddMember(p); err != nil {
			t.Fatalf("AddMember(%d) error: %v", i, err)
		}
		members = append(members, p)
	}
	if !members[0].Admin {
		t.Fatal("first member must be admin")
	}
	if members[1].Admin || members[2].Admin || members[3].Admin {
		t.Fatal("only the first member may be admin")
	}
	if r.background != maxRoomSize {
		t.Fatalf("expected background tier %d, got %d", maxRoomSize, r.background)
	}

	extra, _ := newTestPlayer(t, "extra")
	if err := r.AddMember(extra); err != ErrRoomFull {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if got := r.memberCount(); got != maxRoomSize {
		t.Fatalf("rejected join must not mutate membership: %d members", got)
	}

	r.phase = Racing
	if err := r.AddMember(extra); err != ErrGameInProgress {
		t.Fatalf("expected ErrGameInProgress, got %v", err)
	}
}

func TestRoom_AdminSuccessionOnRemove(t *testing.T) {
	r := NewRoom(3)
	alice, _ := newTestPlayer(t, "Alice")
	bob, bobLines := newTestPlayer(t, "Bob")
	if err := r.AddMember(alice); err != nil {
		t.Fatalf("AddMember(alice): %v", err)
	}
	if err := r.AddMember(bob); err != nil {
		t.Fatalf("AddMember(bob): %v", err)
	}

	if failed := r.RemoveMember(alice); len(failed) != 0 {
		t.Fatalf("unexpected failed connections: %d", len(failed))
	}

	expectLine(t, bobLines, "ADMIN|You are now the admin")
	expectLine(t, bobLines, "ROOM|3|Bob 1|")

	if !bob.Admin {
		t.Fatal("remaining first member must be promoted to admin")
	}
}

func TestRoom_RemoveAbsentMemberIsNoop(t *testing.T) {
	r := NewRoom(0)
	alice, _ := newTestPlayer(t, "alice")
	bob, bobLines := newTestPlayer(t, "bob")
	if err := r.AddMember(bob); err != nil {
		t.Fatalf("AddMember(bob): %v", err)
	}

	if failed := r.RemoveMember(alice); failed != nil {
		t.Fatalf("expected nil failed list, got %v", failed)
	}
	if got := r.memberCount(); got != 1 {
		t.Fatalf("membership must be unchanged, got %d members", got)
	}
	expectNoLine(t, bobLines)
}

func TestRoom_StartAssignsDistinctCars(t *testing.T) {
	r := NewRoom(0)
	var lines []<-chan string
	var members []*Player
	for i := 0; i < maxRoomSize; i++ {
		p, ch := newTestPlayer(t, fmt.Sprintf("p%d", i))
		if err := r.AddMember(p); err != nil {
			t.Fatalf("AddMember(%d): %v", i, err)
		}
		members = append(members, p)
		lines = append(lines, ch)
	}

	started, failed := r.Start(members[0], "ready set go")
	if !started {
		t.Fatal("admin start in a waiting room must succeed")
	}
	if len(failed) != 0 {
		t.Fatalf("unexpected failed connections: %d", len(failed))
	}
	if r.phase != Racing {
		t.Fatalf("expected phase racing, got %v", r.phase)
	}

	seen := make(map[int]bool)
	for _, p := range members {
		if p.Car < 1 || p.Car > carPoolSize {
			t.Fatalf("car %d out of range 1..%d", p.Car, carPoolSize)
		}
		if seen[p.Car] {
			t.Fatalf("car %d assigned twice", p.Car)
		}
		seen[p.Car] = true
	}

	want := startMessage(maxRoomSize, members)
	for i, ch := range lines {
		expectLine(t, ch, "TEXT|ready set go")
		if got := waitForLine(t, ch); got != want {
			t.Fatalf("member %d start payload: got %q, want %q", i, got, want)
		}
	}
}

func TestRoom_StartRequiresAdminAndWaitingPhase(t *testing.T) {
	r := NewRoom(0)
	alice, aliceLines := newTestPlayer(t, "alice")
	bob, bobLines := newTestPlayer(t, "bob")
	if err := r.AddMember(alice); err != nil {
		t.Fatalf("AddMember(alice): %v", err)
	}
	if err := r.AddMember(bob); err != nil {
		t.Fatalf("AddMember(bob): %v", err)
	}

	if started, _ := r.Start(bob, "text"); started {
		t.Fatal("non-admin start must be a no-op")
	}
	if r.phase != Waiting {
		t.Fatal("no-op start must not change the phase")
	}
	expectNoLine(t, aliceLines)

	if started, _ := r.Start(alice, "text"); !started {
		t.Fatal("admin start must succeed")
	}
	if started, _ := r.Start(alice, "text"); started {
		t.Fatal("start while racing must be a no-op")
	}
	waitForPrefix(t, bobLines, "START|")
	expectNoLine(t, bobLines)
}

func TestRoom_PositionUpdatesAndFinishOrder(t *testing.T) {
	r := NewRoom(0)
	alice, aliceLines := newTestPlayer(t, "alice")
	bob, bobLines := newTestPlayer(t, "bob")
	if err := r.AddMember(alice); err != nil {
		t.Fatalf("AddMember(alice): %v", err)
	}
	if err := r.AddMember(bob); err != nil {
		t.Fatalf("AddMember(bob): %v", err)
	}

	// Updates outside a race are ignored.
	if failed, ended := r.UpdatePosition(alice, 1.2); failed != nil || ended {
		t.Fatal("update in a waiting room must be ignored")
	}
	expectNoLine(t, bobLines)
	if len(r.finishOrder) != 0 {
		t.Fatal("update in a waiting room must not record a finish")
	}

	if started, _ := r.Start(alice, "go"); !started {
		t.Fatal("start failed")
	}
	waitForPrefix(t, aliceLines, "START|")
	waitForPrefix(t, bobLines, "START|")

	if _, ended := r.UpdatePosition(alice, 0.5); ended {
		t.Fatal("race must not end at position 0.5")
	}
	expectLine(t, aliceLines, "POS| 0.500000|alice 0.000000|bob")
	expectLine(t, bobLines, "POS| 0.500000|alice 0.000000|bob")

	if _, ended := r.UpdatePosition(alice, 1.2); ended {
		t.Fatal("race must not end before every member finishes")
	}
	expectLine(t, bobLines, "POS| 1.200000|alice 0.000000|bob")
	if len(r.finishOrder) != 1 || r.finishOrder[0] != "alice" {
		t.Fatalf("unexpected finish order: %v", r.finishOrder)
	}

	// Repeating a finishing position records only one entry.
	if _, ended := r.UpdatePosition(alice, 1.2); ended {
		t.Fatal("duplicate finish must not end the race")
	}
	waitForPrefix(t, bobLines, "POS|")
	if len(r.finishOrder) != 1 {
		t.Fatalf("duplicate finish recorded: %v", r.finishOrder)
	}

	_, ended := r.UpdatePosition(bob, 1.0)
	if !ended {
		t.Fatal("race must end when every member has finished")
	}
	waitForPrefix(t, bobLines, "POS|")
	expectLine(t, bobLines, "END|alice|bob|")

	if r.phase != Waiting {
		t.Fatal("room must return to waiting after the race")
	}
	if len(r.finishOrder) != 0 {
		t.Fatal("finish order must be cleared after the race")
	}
	if alice.Position != 0 || bob.Position != 0 {
		t.Fatal("positions must reset to zero after the race")
	}
}

func TestRoom_PositionRoundsToSixDecimals(t *testing.T) {
	r := NewRoom(0)
	alice, aliceLines := newTestPlayer(t, "alice")
	if err := r.AddMember(alice); err != nil {
		t.Fatalf("AddMember(alice): %v", err)
	}
	if started, _ := r.Start(alice, "go"); !started {
		t.Fatal("start failed")
	}
	waitForPrefix(t, aliceLines, "START|")

	r.UpdatePosition(alice, 0.12345678)
	if alice.Position != 0.123457 {
		t.Fatalf("expected rounded position 0.123457, got %v", alice.Position)
	}
}
