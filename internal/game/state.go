package game

import "errors"

// GameStatus represents the current state of the game
type GameStatus string

const (
	StatusStart    GameStatus = "start" // menu shown, no rack yet
	StatusPlaying  GameStatus = "playing"
	StatusGameOver GameStatus = "game_over"
)

// Phase gates whether physics runs during a game in progress.
type Phase string

const (
	PhaseAiming   Phase = "aiming"
	PhaseShooting Phase = "shooting"
	PhaseSettling Phase = "settling"
)

type PlayerMode string

const (
	OnePlayer PlayerMode = "one_player"
	TwoPlayer PlayerMode = "two_player"
)

// Difficulty only changes what the snapshot exposes: easy mode carries an aim guide.
type Difficulty string

const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// Game-over reasons.
const (
	ReasonScratch    = "Scratch! White ball in pocket"
	ReasonEarlyEight = "Scratch! You pocketed the 8-ball too early"
	ReasonWin        = "You won! All balls pocketed"
)

// EventKind names a milestone reported to the achievement collaborator.
type EventKind string

const (
	EventFirstShot   EventKind = "first_shot"
	EventFirstPocket EventKind = "first_pocket"
	EventThreeInOne  EventKind = "three_in_one"
	EventSpeedDemon  EventKind = "speed_demon"
	EventPerfectGame EventKind = "perfect_game"
	EventGameOver    EventKind = "game_over"
)

// Event is emitted by Tick and command handling, drained by the host each frame.
type Event struct {
	Kind   EventKind `json:"kind"`
	Tick   int       `json:"tick"`
	Player int       `json:"player"`
	Reason string    `json:"reason,omitempty"`
}

var (
	ErrWrongPhase   = errors.New("command not allowed in the current phase")
	ErrNoCueBall    = errors.New("cue ball is not on the table")
	ErrGameOver     = errors.New("game is not in progress")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrGameRunning  = errors.New("settings cannot change during a game")
	ErrInvalidMode  = errors.New("invalid player mode")
	ErrInvalidLevel = errors.New("invalid difficulty")

	ErrUnknownCommand = errors.New("unknown command")
)

func (m PlayerMode) Valid() bool {
	return m == OnePlayer || m == TwoPlayer
}

func (d Difficulty) Valid() bool {
	return d == Easy || d == Hard
}
