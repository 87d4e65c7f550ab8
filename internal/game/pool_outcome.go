package game

import "log"

// evaluateShot interprets one physics tick of a shot in flight. The early
// 8-ball check runs every tick and overrides everything else; a scratch ends
// the game before the shot settles; once nothing moves the shot is scored and
// the table checked for a win.
func (g *Game) evaluateShot(res TickResult) {
	if res.Scratch {
		g.scratchedThisGame = true
	}

	before := g.pocketedThisShot
	g.pocketedThisShot += len(res.Pocketed)
	if before == 0 && g.pocketedThisShot > 0 {
		g.emit(EventFirstPocket, "")
	}
	if before < 3 && g.pocketedThisShot >= 3 {
		g.emit(EventThreeInOne, "")
	}

	if g.eightBallDownEarly() {
		g.scratchedThisGame = true
		g.finish(ReasonEarlyEight)
		return
	}

	if res.Scratch {
		g.finish(ReasonScratch)
		return
	}

	if res.Moving {
		return
	}

	g.settle()

	if g.numberedInPlay() == 0 {
		g.finish(ReasonWin)
		if g.Elapsed() < SpeedDemonLimit {
			g.emit(EventSpeedDemon, "")
		}
		if !g.scratchedThisGame {
			g.emit(EventPerfectGame, "")
		}
	}
}

// settle returns the table to aiming. In two-player mode an empty shot passes
// the turn; the shot's pockets are credited to whoever holds the turn after
// that decision.
func (g *Game) settle() {
	g.phase = PhaseAiming
	if g.mode == TwoPlayer && g.pocketedThisShot == 0 {
		g.switchPlayer()
	}
	g.scores[g.currentPlayer-1] += g.pocketedThisShot
	g.pocketedThisShot = 0
	g.aim.visible = true
}

// eightBallDownEarly reports the 8-ball off the table while another numbered
// ball is still in play.
func (g *Game) eightBallDownEarly() bool {
	eight := g.Ball(EightBall)
	if eight == nil || eight.InPlay {
		return false
	}
	for _, b := range g.balls {
		if b.Number > 0 && b.Number != EightBall && b.InPlay {
			return true
		}
	}
	return false
}

func (g *Game) numberedInPlay() int {
	n := 0
	for _, b := range g.balls {
		if b.Number > 0 && b.InPlay {
			n++
		}
	}
	return n
}

func (g *Game) finish(reason string) {
	g.status = StatusGameOver
	g.reason = reason
	g.endedAt = g.clock()
	g.aim.visible = false
	g.emit(EventGameOver, reason)

	log.Printf("[POOL] Game %s over after %d shots: %s (p1=%d p2=%d)",
		g.ID, g.shots, reason, g.scores[0], g.scores[1])
}
