package game

import "time"

// Physics and table constants for the default table.
// A YAML tuning file may override the geometry and physics values (see Tuning).

const (
	DefaultWidth  = 800.0
	DefaultHeight = 400.0
	BallRadius    = 15.0
	PocketRadius  = 25.0
	Friction      = 0.99 // per-tick velocity multiplier
	MinSpeed      = 0.1  // per-axis speed snapped to zero below this
	Restitution   = 0.9  // ball-ball
	NumBalls      = 16   // 0=cue, 1-7=solids, 8=eight, 9-15=stripes
	CueBall       = 0
	EightBall     = 8

	MinPower     = 2.0
	MaxPower     = 15.0
	DefaultPower = 5.0
	PowerStep    = 0.2 // power meter change per tick

	AimGuideLength = 300.0

	// Rack placement as fractions of the table size.
	RackApexX = 0.75
	CueSpotX  = 0.25
	RackRows  = 5
)

// SpeedDemonLimit is the clear time under which a win reports EventSpeedDemon.
const SpeedDemonLimit = 60 * time.Second

// Display colours for balls 1-15; stripes reuse the solid colour of n-8.
var ballColors = [NumBalls]string{
	"#FFFFFF",
	"#FFFF00", "#0000FF", "#FF0000", "#800080", "#FFA500", "#008000", "#800000",
	"#000000",
	"#FFFF00", "#0000FF", "#FF0000", "#800080", "#FFA500", "#008000", "#800000",
}
