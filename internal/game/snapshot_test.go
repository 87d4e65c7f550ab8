package game

import (
	"encoding/json"
	"testing"
)

func TestSnapshotEasyModeGuide(t *testing.T) {
	g, _ := newTestGame(OnePlayer, Easy)

	snap := g.Snapshot()

	if snap.Aim.Guide == nil {
		t.Fatal("easy mode snapshot has no aim guide")
	}
	if snap.Aim.Guide.From != NewVec2(200, 200) {
		t.Errorf("guide from %+v", snap.Aim.Guide.From)
	}
	if !near(snap.Aim.Guide.To.X, -100) || !near(snap.Aim.Guide.To.Y, 200) {
		t.Errorf("guide to %+v, want (-100, 200)", snap.Aim.Guide.To)
	}
}

func TestSnapshotHardModeHasNoGuide(t *testing.T) {
	g, _ := newTestGame(OnePlayer, Hard)
	if snap := g.Snapshot(); snap.Aim.Guide != nil {
		t.Errorf("hard mode guide = %+v", snap.Aim.Guide)
	}
}

func TestSnapshotHidesAimWhileSettling(t *testing.T) {
	g, _ := newTestGame(OnePlayer, Easy)
	shoot(t, g, 0, 5)

	snap := g.Snapshot()
	if snap.Aim.Visible || snap.Aim.Guide != nil || snap.Aim.Metering {
		t.Errorf("aim during settle = %+v", snap.Aim)
	}
	if snap.Phase != PhaseSettling || snap.Shots != 1 {
		t.Errorf("phase/shots = %s/%d", snap.Phase, snap.Shots)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	g, _ := newTestGame(OnePlayer, Easy)

	snap := g.Snapshot()
	snap.Balls[0].X = -1
	snap.Balls[3].InPlay = false
	snap.Pockets[0].Radius = 0

	if g.Ball(CueBall).Position.X != 200 || !g.Ball(3).InPlay {
		t.Error("mutating the snapshot changed the game")
	}
	if g.Table().Pockets[0].Radius != PocketRadius {
		t.Error("mutating snapshot pockets changed the table")
	}
}

func TestSnapshotGameOverFields(t *testing.T) {
	g, _ := newTestGame(TwoPlayer, Easy)
	g.Ball(EightBall).Position = NewVec2(15, 15)
	shoot(t, g, 0, 5)
	g.Tick()

	snap := g.Snapshot()
	if !snap.GameOver || snap.Status != StatusGameOver {
		t.Errorf("game over flags = %v/%s", snap.GameOver, snap.Status)
	}
	if snap.Reason != ReasonEarlyEight || !snap.Scratched {
		t.Errorf("reason/scratched = %q/%v", snap.Reason, snap.Scratched)
	}
	if snap.Balls[EightBall].InPlay {
		t.Error("eight ball shown in play")
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	g, _ := newTestGame(OnePlayer, Easy)

	b, err := json.Marshal(g.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"balls", "pockets", "phase", "current_player", "player1_score", "game_over", "aim"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := m["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}
