package game

import "math"

// BallState represents a ball's position and status for serialization.
type BallState struct {
	Number  int     `json:"number"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VX      float64 `json:"vx"`
	VY      float64 `json:"vy"`
	Radius  float64 `json:"radius"`
	InPlay  bool    `json:"in_play"`
	Striped bool    `json:"striped"`
	Color   string  `json:"color"`
}

// AimGuide is the easy-mode trajectory line from the cue ball.
type AimGuide struct {
	From Vec2 `json:"from"`
	To   Vec2 `json:"to"`
}

// AimView is what a renderer needs to draw the cue stick and power meter.
type AimView struct {
	Angle    float64   `json:"angle"`
	Power    float64   `json:"power"`
	Visible  bool      `json:"visible"`
	Metering bool      `json:"metering"`
	Guide    *AimGuide `json:"guide,omitempty"`
}

// Snapshot is a read-only copy of everything a renderer or client needs.
type Snapshot struct {
	ID               string      `json:"id"`
	Tick             int         `json:"tick"`
	Status           GameStatus  `json:"status"`
	Phase            Phase       `json:"phase"`
	Mode             PlayerMode  `json:"mode"`
	Difficulty       Difficulty  `json:"difficulty"`
	CurrentPlayer    int         `json:"current_player"`
	Player1Score     int         `json:"player1_score"`
	Player2Score     int         `json:"player2_score"`
	PocketedThisShot int         `json:"pocketed_this_shot"`
	Shots            int         `json:"shots"`
	GameOver         bool        `json:"game_over"`
	Reason           string      `json:"reason,omitempty"`
	Scratched        bool        `json:"scratched"`
	ElapsedSeconds   float64     `json:"elapsed_seconds"`
	Width            float64     `json:"width"`
	Height           float64     `json:"height"`
	Balls            []BallState `json:"balls"`
	Pockets          []Pocket    `json:"pockets"`
	Aim              AimView     `json:"aim"`
}

// Snapshot copies the current state. The result shares nothing with the game.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		ID:               g.ID,
		Tick:             g.tick,
		Status:           g.status,
		Phase:            g.phase,
		Mode:             g.mode,
		Difficulty:       g.difficulty,
		CurrentPlayer:    g.currentPlayer,
		Player1Score:     g.scores[0],
		Player2Score:     g.scores[1],
		PocketedThisShot: g.pocketedThisShot,
		Shots:            g.shots,
		GameOver:         g.status == StatusGameOver,
		Reason:           g.reason,
		Scratched:        g.scratchedThisGame,
		ElapsedSeconds:   g.Elapsed().Seconds(),
		Width:            g.table.Width(),
		Height:           g.table.Height(),
		Balls:            make([]BallState, len(g.balls)),
		Pockets:          append([]Pocket(nil), g.table.Pockets...),
		Aim: AimView{
			Angle:    g.aim.angle,
			Power:    g.aim.power,
			Visible:  g.aim.visible && g.status == StatusPlaying && g.phase != PhaseSettling,
			Metering: g.status == StatusPlaying && g.phase == PhaseShooting,
		},
	}

	for i, b := range g.balls {
		s.Balls[i] = BallState{
			Number:  b.Number,
			X:       b.Position.X,
			Y:       b.Position.Y,
			VX:      b.Velocity.X,
			VY:      b.Velocity.Y,
			Radius:  b.Radius,
			InPlay:  b.InPlay,
			Striped: b.Striped,
			Color:   b.Color,
		}
	}

	if s.Aim.Visible && g.difficulty == Easy {
		if cue := g.cueBall(); cue != nil {
			s.Aim.Guide = &AimGuide{
				From: cue.Position,
				To:   cue.Position.Plus(FromAngle(g.aim.angle+math.Pi, AimGuideLength)),
			}
		}
	}
	return s
}
