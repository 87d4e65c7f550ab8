package game

import (
	"errors"
	"fmt"
)

// Tuning holds table geometry and the physics coefficients a table runs with.
type Tuning struct {
	Width        float64 `yaml:"width" json:"width"`
	Height       float64 `yaml:"height" json:"height"`
	BallRadius   float64 `yaml:"ball_radius" json:"ball_radius"`
	PocketRadius float64 `yaml:"pocket_radius" json:"pocket_radius"`
	Friction     float64 `yaml:"friction" json:"friction"`
	MinSpeed     float64 `yaml:"min_speed" json:"min_speed"`
	Restitution  float64 `yaml:"restitution" json:"restitution"`
}

// DefaultTuning returns the standard 800x400 table.
func DefaultTuning() Tuning {
	return Tuning{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		BallRadius:   BallRadius,
		PocketRadius: PocketRadius,
		Friction:     Friction,
		MinSpeed:     MinSpeed,
		Restitution:  Restitution,
	}
}

// Validate rejects tunings that cannot hold a rack or would never settle.
func (t Tuning) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return errors.New("table width and height must be positive")
	}
	if t.BallRadius <= 0 || t.PocketRadius <= 0 {
		return errors.New("ball and pocket radius must be positive")
	}
	if t.Friction <= 0 || t.Friction >= 1 {
		return fmt.Errorf("friction must be in (0,1), got %v", t.Friction)
	}
	if t.MinSpeed <= 0 {
		return errors.New("min speed must be positive")
	}
	if t.Restitution < 0 || t.Restitution > 1 {
		return fmt.Errorf("restitution must be in [0,1], got %v", t.Restitution)
	}
	// the rack's last row must fit between the apex and the right cushion
	rackDepth := float64(RackRows-1) * 2 * t.BallRadius
	if t.Width*RackApexX+rackDepth+t.BallRadius > t.Width {
		return errors.New("table too narrow for the rack")
	}
	if float64(RackRows)*2*t.BallRadius > t.Height {
		return errors.New("table too short for the rack")
	}
	return nil
}

// Pocket is one of the six capture circles on the table.
type Pocket struct {
	ID       int     `json:"id"`
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Ball is a single ball's physics state. Number 0 is the cue ball.
type Ball struct {
	Number   int     `json:"number"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Striped  bool    `json:"striped"`
	InPlay   bool    `json:"in_play"`
	Color    string  `json:"color"`
}

func (b *Ball) IsCue() bool {
	return b.Number == CueBall
}

// Moving reports whether either velocity axis is nonzero.
func (b *Ball) Moving() bool {
	return !b.Velocity.IsZero()
}

// Table holds the complete table geometry.
type Table struct {
	Tuning  Tuning
	Pockets []Pocket
}

// NewTable creates the table and its six pockets. Pocket order is fixed and is
// also the order in which pockets are tested for capture: top-left, top-middle,
// top-right, bottom-left, bottom-middle, bottom-right.
func NewTable(t Tuning) *Table {
	w, h, pr := t.Width, t.Height, t.PocketRadius
	return &Table{
		Tuning: t,
		Pockets: []Pocket{
			{ID: 0, Position: NewVec2(0, 0), Radius: pr},
			{ID: 1, Position: NewVec2(w/2, 0), Radius: pr},
			{ID: 2, Position: NewVec2(w, 0), Radius: pr},
			{ID: 3, Position: NewVec2(0, h), Radius: pr},
			{ID: 4, Position: NewVec2(w/2, h), Radius: pr},
			{ID: 5, Position: NewVec2(w, h), Radius: pr},
		},
	}
}

// Width and Height are the wall bounds.
func (tb *Table) Width() float64 { return tb.Tuning.Width }
func (tb *Table) Height() float64 { return tb.Tuning.Height }

// Rack returns the cue ball plus the 15 numbered balls in a five-row triangle.
// Index i always holds ball number i.
func (tb *Table) Rack() []*Ball {
	t := tb.Tuning
	r := t.BallRadius
	balls := make([]*Ball, 0, NumBalls)

	balls = append(balls, &Ball{
		Number:   CueBall,
		Position: NewVec2(t.Width*CueSpotX, t.Height/2),
		Radius:   r,
		InPlay:   true,
		Color:    ballColors[CueBall],
	})

	startX := t.Width * RackApexX
	startY := t.Height / 2
	n := 1
	for row := 0; row < RackRows; row++ {
		for col := 0; col <= row; col++ {
			balls = append(balls, &Ball{
				Number: n,
				Position: NewVec2(
					startX+float64(row)*r*2,
					startY-float64(row)*r+float64(col)*r*2,
				),
				Radius:  r,
				Striped: n > EightBall,
				InPlay:  true,
				Color:   ballColors[n],
			})
			n++
		}
	}
	return balls
}
