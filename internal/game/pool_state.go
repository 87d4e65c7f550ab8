package game

import (
	"log"
	"math"
	"time"
)

// Options configures a new Game.
type Options struct {
	Tuning     Tuning
	Mode       PlayerMode
	Difficulty Difficulty
	Clock      func() time.Time // defaults to time.Now
}

// aimState is the shot intent set by the input layer.
type aimState struct {
	angle   float64
	power   float64
	rising  bool // power meter direction
	visible bool
}

// Game is the table/game aggregate: balls, turn/shot state and the queue of
// pending input commands. It is owned by a single goroutine; Tick and the
// command methods must not be called concurrently.
type Game struct {
	ID string

	table  *Table
	balls  []*Ball
	engine *PhysicsEngine

	status     GameStatus
	phase      Phase
	mode       PlayerMode
	difficulty Difficulty

	currentPlayer     int
	scores            [2]int
	pocketedThisShot  int
	scratchedThisGame bool
	reason            string
	shots             int
	tick              int
	startedAt         time.Time
	endedAt           time.Time

	aim       aimState
	stickAims [2]float64 // each player's last aim angle; aim.angle is the shooter's

	commands []Command
	events   []Event
	contacts []CollisionEvent // last tick only
	clock    func() time.Time
}

// NewGame creates a game sitting at the start menu. The rack is laid out by
// RequestRestart.
func NewGame(id string, opts Options) *Game {
	if opts.Tuning == (Tuning{}) {
		opts.Tuning = DefaultTuning()
	} else if err := opts.Tuning.Validate(); err != nil {
		log.Printf("[POOL] Game %s: invalid table tuning, using defaults: %v", id, err)
		opts.Tuning = DefaultTuning()
	}
	if !opts.Mode.Valid() {
		opts.Mode = OnePlayer
	}
	if !opts.Difficulty.Valid() {
		opts.Difficulty = Easy
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	g := &Game{
		ID:            id,
		table:         NewTable(opts.Tuning),
		status:        StatusStart,
		phase:         PhaseAiming,
		mode:          opts.Mode,
		difficulty:    opts.Difficulty,
		currentPlayer: 1,
		clock:         opts.Clock,
		aim:           aimState{power: DefaultPower, rising: true},
		stickAims:     [2]float64{0, math.Pi},
	}
	g.balls = g.table.Rack()
	g.engine = NewPhysicsEngine(g.balls, g.table)
	return g
}

// RequestRestart racks a fresh game and resets every piece of turn/shot
// state. Mode and difficulty are kept.
func (g *Game) RequestRestart() {
	g.balls = g.table.Rack()
	g.engine = NewPhysicsEngine(g.balls, g.table)
	g.status = StatusPlaying
	g.phase = PhaseAiming
	g.stickAims[g.currentPlayer-1] = g.aim.angle
	g.currentPlayer = 1
	g.scores = [2]int{}
	g.pocketedThisShot = 0
	g.scratchedThisGame = false
	g.reason = ""
	g.shots = 0
	g.startedAt = g.clock()
	g.endedAt = time.Time{}
	g.aim = aimState{angle: g.stickAims[0], power: DefaultPower, rising: true, visible: true}

	log.Printf("[POOL] Game %s racked (mode=%s difficulty=%s)", g.ID, g.mode, g.difficulty)
}

// SetMode selects one- or two-player play. Only allowed outside a game.
func (g *Game) SetMode(m PlayerMode) error {
	if !m.Valid() {
		return ErrInvalidMode
	}
	if g.status == StatusPlaying {
		return ErrGameRunning
	}
	g.mode = m
	return nil
}

// SetDifficulty selects easy or hard. Only allowed outside a game.
func (g *Game) SetDifficulty(d Difficulty) error {
	if !d.Valid() {
		return ErrInvalidLevel
	}
	if g.status == StatusPlaying {
		return ErrGameRunning
	}
	g.difficulty = d
	return nil
}

// SetAimAngle points the cue stick while aiming or choosing power.
func (g *Game) SetAimAngle(angle float64) error {
	if g.status != StatusPlaying {
		return ErrGameOver
	}
	if g.phase == PhaseSettling {
		return ErrWrongPhase
	}
	if g.cueBall() == nil {
		return ErrNoCueBall
	}
	g.aim.angle = angle
	g.aim.visible = true
	return nil
}

// AimAt points the cue stick from the cue ball towards a table position,
// the way a pointer does.
func (g *Game) AimAt(x, y float64) error {
	cue := g.cueBall()
	if cue == nil {
		return ErrNoCueBall
	}
	return g.SetAimAngle(math.Atan2(y-cue.Position.Y, x-cue.Position.X))
}

// BeginAim locks the aim and starts the power meter. player is 1 or 2, or 0
// for whoever is at the table.
func (g *Game) BeginAim(player int) error {
	if g.status != StatusPlaying {
		return ErrGameOver
	}
	if g.phase != PhaseAiming {
		return ErrWrongPhase
	}
	if player != 0 && player != g.currentPlayer {
		return ErrNotYourTurn
	}
	if g.cueBall() == nil {
		return ErrNoCueBall
	}
	g.phase = PhaseShooting
	g.aim.power = DefaultPower
	g.aim.rising = true
	return nil
}

// CommitShot releases the cue. A power of zero or less takes the power
// meter's current value; anything else is clamped to [MinPower, MaxPower].
// The cue ball travels away from the stick, along angle+π.
func (g *Game) CommitShot(power float64) error {
	if g.status != StatusPlaying {
		return ErrGameOver
	}
	if g.phase != PhaseShooting {
		return ErrWrongPhase
	}
	cue := g.cueBall()
	if cue == nil {
		return ErrNoCueBall
	}

	if power <= 0 {
		power = g.aim.power
	}
	power = math.Max(MinPower, math.Min(MaxPower, power))
	g.aim.power = power

	cue.Velocity = NewVec2(
		math.Cos(g.aim.angle+math.Pi)*power,
		math.Sin(g.aim.angle+math.Pi)*power,
	)
	g.aim.visible = false
	g.phase = PhaseSettling
	g.shots++
	g.emit(EventFirstShot, "")
	return nil
}

// Tick applies queued commands, then advances the power meter or the
// physics depending on the phase. It never blocks.
func (g *Game) Tick() {
	g.tick++
	g.contacts = g.contacts[:0]
	g.drainCommands()

	if g.status != StatusPlaying {
		return
	}
	switch g.phase {
	case PhaseShooting:
		g.advancePowerMeter()
	case PhaseSettling:
		res := g.engine.Step()
		g.contacts = append(g.contacts, res.Events...)
		g.evaluateShot(res)
	}
}

// RunUntilSettled ticks until the shot in flight has been evaluated or
// maxTicks is reached. Returns the number of ticks run.
func (g *Game) RunUntilSettled(maxTicks int) int {
	n := 0
	for n < maxTicks && g.status == StatusPlaying && g.phase == PhaseSettling {
		g.Tick()
		n++
	}
	return n
}

// LastContacts returns the wall, ball and pocket contacts of the latest
// tick. The slice is reused by the next Tick.
func (g *Game) LastContacts() []CollisionEvent { return g.contacts }

// DrainEvents returns and clears the events emitted since the last call.
func (g *Game) DrainEvents() []Event {
	ev := g.events
	g.events = nil
	return ev
}

func (g *Game) Status() GameStatus { return g.status }
func (g *Game) Phase() Phase { return g.phase }
func (g *Game) Mode() PlayerMode { return g.mode }
func (g *Game) Difficulty() Difficulty { return g.difficulty }
func (g *Game) CurrentPlayer() int { return g.currentPlayer }
func (g *Game) Scores() (int, int) { return g.scores[0], g.scores[1] }
func (g *Game) Reason() string { return g.reason }
func (g *Game) ScratchedThisGame() bool { return g.scratchedThisGame }
func (g *Game) Balls() []*Ball { return g.balls }
func (g *Game) Table() *Table { return g.table }
func (g *Game) Power() float64 { return g.aim.power }
func (g *Game) AimAngle() float64 { return g.aim.angle }

// Ball returns the ball with the given number.
func (g *Game) Ball(number int) *Ball {
	for _, b := range g.balls {
		if b.Number == number {
			return b
		}
	}
	return nil
}

// Elapsed is the time since the rack was laid out, frozen at game over.
func (g *Game) Elapsed() time.Duration {
	if g.startedAt.IsZero() {
		return 0
	}
	if !g.endedAt.IsZero() {
		return g.endedAt.Sub(g.startedAt)
	}
	return g.clock().Sub(g.startedAt)
}

func (g *Game) cueBall() *Ball {
	b := g.Ball(CueBall)
	if b == nil || !b.InPlay {
		return nil
	}
	return b
}

func (g *Game) advancePowerMeter() {
	if g.aim.rising {
		g.aim.power += PowerStep
		if g.aim.power >= MaxPower {
			g.aim.power = MaxPower
			g.aim.rising = false
		}
	} else {
		g.aim.power -= PowerStep
		if g.aim.power <= MinPower {
			g.aim.power = MinPower
			g.aim.rising = true
		}
	}
}

// switchPlayer hands the table over. Each player's stick keeps its own angle.
func (g *Game) switchPlayer() {
	g.stickAims[g.currentPlayer-1] = g.aim.angle
	if g.currentPlayer == 1 {
		g.currentPlayer = 2
	} else {
		g.currentPlayer = 1
	}
	g.aim.angle = g.stickAims[g.currentPlayer-1]
}

func (g *Game) emit(kind EventKind, reason string) {
	g.events = append(g.events, Event{Kind: kind, Tick: g.tick, Player: g.currentPlayer, Reason: reason})
}
