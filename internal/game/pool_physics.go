package game

import "math"

// CollisionEvent records a contact during a tick, for sound playback and stats.
type CollisionEvent struct {
	Type     string  `json:"type"`      // "ball", "wall", "pocket"
	BallID   int     `json:"ball_id"`
	TargetID int     `json:"target_id"` // ball number or pocket ID; -1 for walls
	Speed    float64 `json:"speed"`     // impact speed (for sound volume)
}

// TickResult summarises one physics step.
type TickResult struct {
	Moving   bool
	Scratch  bool
	Pocketed []int // numbered balls captured this tick
	Events   []CollisionEvent
}

// PhysicsEngine advances a set of balls on a table one tick at a time.
type PhysicsEngine struct {
	Balls []*Ball
	Table *Table
}

// NewPhysicsEngine creates a physics engine from ball states and table geometry.
func NewPhysicsEngine(balls []*Ball, table *Table) *PhysicsEngine {
	return &PhysicsEngine{
		Balls: balls,
		Table: table,
	}
}

// Step runs one tick: integrate and bound every in-play ball, then resolve
// ball-ball contacts in a single index-ascending pass.
//
// The single pass is an approximation: a chain of three or more overlapping
// balls may stay partly overlapped after this tick and separates over the
// following ticks.
func (pe *PhysicsEngine) Step() TickResult {
	var res TickResult
	t := pe.Table.Tuning

	for _, ball := range pe.Balls {
		if !ball.InPlay {
			continue
		}
		if integrate(ball, t.Friction, t.MinSpeed) {
			res.Moving = true
		}
		if speed, hit := pe.resolveWalls(ball); hit {
			res.Events = append(res.Events, CollisionEvent{Type: "wall", BallID: ball.Number, TargetID: -1, Speed: speed})
		}
		if pocket, ok := pe.capture(ball); ok {
			res.Events = append(res.Events, CollisionEvent{Type: "pocket", BallID: ball.Number, TargetID: pocket.ID, Speed: ball.Velocity.Magnitude()})
			if ball.IsCue() {
				res.Scratch = true
			} else {
				res.Pocketed = append(res.Pocketed, ball.Number)
			}
		}
	}

	for i := 0; i < len(pe.Balls); i++ {
		a := pe.Balls[i]
		if !a.InPlay {
			continue
		}
		for j := i + 1; j < len(pe.Balls); j++ {
			b := pe.Balls[j]
			if !b.InPlay {
				continue
			}
			if speed, hit := resolveBallPair(a, b, t.Restitution); hit {
				res.Events = append(res.Events, CollisionEvent{Type: "ball", BallID: a.Number, TargetID: b.Number, Speed: speed})
			}
		}
	}

	return res
}

// AllStopped returns true if all in-play balls have zero velocity.
func (pe *PhysicsEngine) AllStopped() bool {
	for _, b := range pe.Balls {
		if b.InPlay && b.Moving() {
			return false
		}
	}
	return true
}

// Simulate steps until a tick reports no motion or maxTicks is reached.
// Returns the number of ticks run.
func (pe *PhysicsEngine) Simulate(maxTicks int) int {
	for n := 1; n <= maxTicks; n++ {
		if !pe.Step().Moving {
			return n
		}
	}
	return maxTicks
}

// integrate damps the velocity, snaps slow axes to zero and then moves the
// ball by the damped velocity. Returns true while the ball is still moving.
func integrate(b *Ball, friction, minSpeed float64) bool {
	b.Velocity.X *= friction
	b.Velocity.Y *= friction

	if math.Abs(b.Velocity.X) < minSpeed {
		b.Velocity.X = 0
	}
	if math.Abs(b.Velocity.Y) < minSpeed {
		b.Velocity.Y = 0
	}

	b.Position = b.Position.Plus(b.Velocity)
	return b.Moving()
}

// resolveWalls clamps a ball that crossed a cushion back to the tangent
// position and mirrors the velocity on that axis.
func (pe *PhysicsEngine) resolveWalls(b *Ball) (float64, bool) {
	w, h := pe.Table.Width(), pe.Table.Height()
	hit := false
	speed := 0.0

	if b.Position.X-b.Radius < 0 {
		b.Position.X = b.Radius
		speed = math.Max(speed, math.Abs(b.Velocity.X))
		b.Velocity.X = -b.Velocity.X
		hit = true
	}
	if b.Position.X+b.Radius > w {
		b.Position.X = w - b.Radius
		speed = math.Max(speed, math.Abs(b.Velocity.X))
		b.Velocity.X = -b.Velocity.X
		hit = true
	}
	if b.Position.Y-b.Radius < 0 {
		b.Position.Y = b.Radius
		speed = math.Max(speed, math.Abs(b.Velocity.Y))
		b.Velocity.Y = -b.Velocity.Y
		hit = true
	}
	if b.Position.Y+b.Radius > h {
		b.Position.Y = h - b.Radius
		speed = math.Max(speed, math.Abs(b.Velocity.Y))
		b.Velocity.Y = -b.Velocity.Y
		hit = true
	}
	return speed, hit
}

// capture tests pockets in table order and retires the ball in the first one
// whose centre is strictly within the capture radius. A ball that moves fast
// enough can pass over a pocket between two ticks without being captured.
func (pe *PhysicsEngine) capture(b *Ball) (Pocket, bool) {
	for _, p := range pe.Table.Pockets {
		if b.Position.DistanceTo(p.Position) < p.Radius {
			b.InPlay = false
			return p, true
		}
	}
	return Pocket{}, false
}

// resolveBallPair applies an equal-mass impulse to two overlapping balls that
// are approaching each other and pushes them apart by half the overlap each.
// Returns the normal closing speed when a contact was resolved.
func resolveBallPair(a, b *Ball, restitution float64) (float64, bool) {
	delta := b.Position.Minus(a.Position)
	dist := delta.Magnitude()
	if dist >= a.Radius+b.Radius || dist == 0 {
		return 0, false
	}

	n := delta.Times(1 / dist)
	velAlongNormal := b.Velocity.Minus(a.Velocity).Dot(n)
	if velAlongNormal > 0 {
		return 0, false
	}

	j := -(1 + restitution) * velAlongNormal / 2
	a.Velocity = a.Velocity.Minus(n.Times(j))
	b.Velocity = b.Velocity.Plus(n.Times(j))

	overlap := (a.Radius + b.Radius - dist) / 2
	a.Position = a.Position.Minus(n.Times(overlap))
	b.Position = b.Position.Plus(n.Times(overlap))

	return -velAlongNormal, true
}
