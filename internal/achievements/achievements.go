package achievements

import "github.com/playmatatu/poolsim/internal/game"

// ToastFrames is how many frames an unlock notification stays up.
const ToastFrames = 180

// Definition describes one achievement.
type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Record is the persisted unlock state of one achievement.
type Record struct {
	ID       string `json:"id"`
	Unlocked bool   `json:"unlocked"`
}

// Achievement is a definition merged with a profile's unlock state.
type Achievement struct {
	Definition
	Unlocked bool `json:"unlocked"`
}

var catalogue = []Definition{
	{ID: string(game.EventFirstShot), Title: "First Shot", Description: "Take your first shot", Icon: "🎯"},
	{ID: string(game.EventFirstPocket), Title: "Pocket Master", Description: "Pocket your first ball", Icon: "🎱"},
	{ID: string(game.EventThreeInOne), Title: "Triple Threat", Description: "Pocket 3 balls in one shot", Icon: "🏆"},
	{ID: string(game.EventSpeedDemon), Title: "Speed Demon", Description: "Clear the table in under 60 seconds", Icon: "⚡"},
	{ID: string(game.EventPerfectGame), Title: "Perfect Game", Description: "Win without scratching", Icon: "👑"},
}

// Catalogue returns the achievement definitions in display order.
func Catalogue() []Definition {
	return append([]Definition(nil), catalogue...)
}

// Lookup finds a definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range catalogue {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Merge lays saved records over the catalogue. Records for unknown ids are
// dropped and achievements with no record start locked.
func Merge(saved []Record) []Achievement {
	unlocked := make(map[string]bool, len(saved))
	for _, r := range saved {
		unlocked[r.ID] = r.Unlocked
	}
	out := make([]Achievement, len(catalogue))
	for i, d := range catalogue {
		out[i] = Achievement{Definition: d, Unlocked: unlocked[d.ID]}
	}
	return out
}

// Records flattens merged achievements back to their persisted form.
func Records(list []Achievement) []Record {
	out := make([]Record, len(list))
	for i, a := range list {
		out[i] = Record{ID: a.ID, Unlocked: a.Unlocked}
	}
	return out
}
