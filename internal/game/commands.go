package game

import "log"

// CommandType names an input-layer request.
type CommandType string

const (
	CmdSelectMode       CommandType = "select_mode"
	CmdSelectDifficulty CommandType = "select_difficulty"
	CmdBeginAim         CommandType = "begin_aim"
	CmdSetAngle         CommandType = "set_angle"
	CmdAimAt            CommandType = "aim_at"
	CmdCommitShot       CommandType = "commit_shot"
	CmdRestart          CommandType = "restart"
)

// Command is a queued input event. Only the fields relevant to Type are read.
type Command struct {
	Type       CommandType `json:"type"`
	Player     int         `json:"player,omitempty"`
	Angle      float64     `json:"angle,omitempty"`
	Power      float64     `json:"power,omitempty"`
	X          float64     `json:"x,omitempty"`
	Y          float64     `json:"y,omitempty"`
	Mode       PlayerMode  `json:"mode,omitempty"`
	Difficulty Difficulty  `json:"difficulty,omitempty"`
}

// Enqueue queues a command for the start of the next Tick.
func (g *Game) Enqueue(cmd Command) {
	g.commands = append(g.commands, cmd)
}

// Apply runs a command immediately. Hosts normally Enqueue instead so input
// never lands mid-tick.
func (g *Game) Apply(cmd Command) error {
	switch cmd.Type {
	case CmdSelectMode:
		return g.SetMode(cmd.Mode)
	case CmdSelectDifficulty:
		return g.SetDifficulty(cmd.Difficulty)
	case CmdBeginAim:
		return g.BeginAim(cmd.Player)
	case CmdSetAngle:
		return g.SetAimAngle(cmd.Angle)
	case CmdAimAt:
		return g.AimAt(cmd.X, cmd.Y)
	case CmdCommitShot:
		return g.CommitShot(cmd.Power)
	case CmdRestart:
		g.RequestRestart()
		return nil
	}
	return ErrUnknownCommand
}

func (g *Game) drainCommands() {
	if len(g.commands) == 0 {
		return
	}
	pending := g.commands
	g.commands = nil
	for _, cmd := range pending {
		if err := g.Apply(cmd); err != nil {
			log.Printf("[POOL] Game %s dropped %s: %v", g.ID, cmd.Type, err)
		}
	}
}
