package main

import (
	"math"
	"testing"

	"github.com/playmatatu/poolsim/internal/game"
)

func TestTableViewRoundTrip(t *testing.T) {
	v := newTableView(82, 44, 800, 400)
	if v.cols != 80 || v.rows != 40 {
		t.Fatalf("view = %+v", v)
	}

	cx, cy := v.toCell(405, 205)
	if cx != 41 || cy != 22 {
		t.Errorf("toCell = (%d,%d), want (41,22)", cx, cy)
	}
	x, y := v.fromCell(cx, cy)
	if math.Abs(x-405) > 5 || math.Abs(y-205) > 5 {
		t.Errorf("fromCell = (%v,%v)", x, y)
	}
}

func TestTableViewClampsEdges(t *testing.T) {
	v := newTableView(82, 44, 800, 400)
	if cx, cy := v.toCell(800, 400); cx != v.x0+v.cols-1 || cy != v.y0+v.rows-1 {
		t.Errorf("far corner = (%d,%d)", cx, cy)
	}
	if cx, cy := v.toCell(-3, -3); cx != v.x0 || cy != v.y0 {
		t.Errorf("near corner = (%d,%d)", cx, cy)
	}
	if v.contains(0, 0) || !v.contains(v.x0, v.y0) {
		t.Error("contains is off by one")
	}
}

func TestPowerBar(t *testing.T) {
	if got := powerBar(game.MinPower); got != "[░░░░░░░░░░░░░░░░░░░░]" {
		t.Errorf("min = %s", got)
	}
	if got := powerBar(game.MaxPower); got != "[████████████████████]" {
		t.Errorf("max = %s", got)
	}
}

func TestImpactVolumeRange(t *testing.T) {
	if v := impactVolume(0); v != -4 {
		t.Errorf("silent impact = %v", v)
	}
	if v := impactVolume(100); v != -0.5 {
		t.Errorf("hard impact = %v", v)
	}
}
