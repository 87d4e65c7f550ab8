package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/poolsim/internal/achievements"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/game"
)

const (
	tickRate  = 60
	aimStep   = 0.03
	aimStepFx = 0.12
)

// client is the local single-process table: input goes onto the game's
// command queue, the ticker advances it and the screen shows the result.
type client struct {
	screen  tcell.Screen
	game    *game.Game
	tracker *achievements.Tracker
	sound   *SoundManager
	profile string

	buttons  tcell.ButtonMask // primary button state from the last mouse event
	metering bool             // power meter running once queued commands apply
}

func main() {
	tablePath := flag.String("table", "", "YAML table tuning file")
	profile := flag.String("profile", "local", "achievement profile")
	store := flag.String("achievements", "achievements.json", "achievement file")
	mode := flag.String("mode", string(game.OnePlayer), "one_player or two_player")
	difficulty := flag.String("difficulty", string(game.Easy), "easy or hard")
	mute := flag.Bool("mute", false, "disable sound")
	flag.Parse()

	// tcell owns the terminal; log lines would corrupt it
	log.SetOutput(io.Discard)

	tuning, err := config.LoadTable(*tablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load table: %v\n", err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()

	c := &client{
		screen: screen,
		game: game.NewGame("local", game.Options{
			Tuning:     tuning,
			Mode:       game.PlayerMode(*mode),
			Difficulty: game.Difficulty(*difficulty),
		}),
		tracker: achievements.NewTracker(context.Background(), achievements.NewFileStore(*store), *profile),
		sound:   NewSoundManager(),
		profile: *profile,
	}
	if !*mute {
		// Non-fatal, the game runs without sound
		c.sound.Initialize()
	}
	defer c.cleanup()

	c.run()
}

func (c *client) cleanup() {
	c.sound.Cleanup()
	c.screen.Fini()
}

func (c *client) run() {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ctx := context.Background()
	for {
		select {
		case ev := <-events:
			if !c.handleInput(ev) {
				return
			}

		case <-ticker.C:
			c.game.Tick()
			c.metering = c.game.Phase() == game.PhaseShooting
			c.tracker.Tick()
			c.sound.PlayContacts(c.game.LastContacts())
			if len(c.tracker.Handle(ctx, c.game.DrainEvents())) > 0 {
				c.sound.PlayUnlock()
			}

			var toast *achievements.Toast
			if t, ok := c.tracker.Toast(); ok {
				toast = &t
			}
			draw(c.screen, c.game.Snapshot(), toast, c.profile)
		}
	}
}

// handleInput queues commands for the next tick. Returns false to quit.
func (c *client) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev)

	case *tcell.EventMouse:
		w, h := c.screen.Size()
		t := c.game.Table()
		v := newTableView(w, h, t.Width(), t.Height())
		mx, my := ev.Position()
		if v.contains(mx, my) {
			x, y := v.fromCell(mx, my)
			c.game.Enqueue(game.Command{Type: game.CmdAimAt, X: x, Y: y})
		}

		// press starts the meter, release fires; drags only aim
		held := ev.Buttons() & tcell.Button1
		switch {
		case held != 0 && c.buttons == 0 && v.contains(mx, my):
			c.beginAim()
		case held == 0 && c.buttons != 0:
			c.commitShot()
		}
		c.buttons = held

	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

func (c *client) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		if c.game.Status() != game.StatusPlaying {
			c.game.Enqueue(game.Command{Type: game.CmdRestart})
		}
	case tcell.KeyLeft, tcell.KeyRight:
		step := aimStep
		if ev.Modifiers()&tcell.ModShift != 0 {
			step = aimStepFx
		}
		if ev.Key() == tcell.KeyLeft {
			step = -step
		}
		c.game.Enqueue(game.Command{Type: game.CmdSetAngle, Angle: c.game.AimAngle() + step})
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			c.shootKey()
		case 'r':
			c.game.Enqueue(game.Command{Type: game.CmdRestart})
		case '1':
			c.game.Enqueue(game.Command{Type: game.CmdSelectMode, Mode: game.OnePlayer})
		case '2':
			c.game.Enqueue(game.Command{Type: game.CmdSelectMode, Mode: game.TwoPlayer})
		case 'e':
			c.game.Enqueue(game.Command{Type: game.CmdSelectDifficulty, Difficulty: game.Easy})
		case 'h':
			c.game.Enqueue(game.Command{Type: game.CmdSelectDifficulty, Difficulty: game.Hard})
		}
	}
	return true
}

// shootKey starts the power meter, or releases the shot when it is running.
func (c *client) shootKey() {
	if c.metering {
		c.commitShot()
	} else {
		c.beginAim()
	}
}

func (c *client) beginAim() {
	if c.metering {
		return
	}
	c.game.Enqueue(game.Command{Type: game.CmdBeginAim})
	c.metering = true
}

func (c *client) commitShot() {
	if !c.metering {
		return
	}
	c.game.Enqueue(game.Command{Type: game.CmdCommitShot})
	c.metering = false
}
