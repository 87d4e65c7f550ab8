package achievements

import (
	"context"
	"log"
	"sync"

	"github.com/playmatatu/poolsim/internal/game"
)

// Toast is the unlock notification currently on screen.
type Toast struct {
	Achievement Achievement `json:"achievement"`
	FramesLeft  int         `json:"frames_left"`
}

// Tracker holds one profile's achievements and turns game events into
// unlocks. Every unlock is persisted immediately.
type Tracker struct {
	profile string
	store   Store

	mu    sync.Mutex
	list  []Achievement
	toast *Toast
}

// NewTracker loads a profile's saved records. A store that fails to load
// leaves every achievement locked.
func NewTracker(ctx context.Context, store Store, profile string) *Tracker {
	t := &Tracker{profile: profile, store: store}

	var saved []Record
	if store != nil {
		recs, err := store.Load(ctx, profile)
		if err != nil {
			log.Printf("[ACH] Failed to load achievements for %s: %v", profile, err)
		}
		saved = recs
	}
	t.list = Merge(saved)
	return t
}

// Unlock marks an achievement unlocked and shows its toast. Returns false for
// unknown ids and for achievements that were already unlocked.
func (t *Tracker) Unlock(ctx context.Context, id string) bool {
	t.mu.Lock()
	idx := -1
	for i, a := range t.list {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || t.list[idx].Unlocked {
		t.mu.Unlock()
		return false
	}
	t.list[idx].Unlocked = true
	t.toast = &Toast{Achievement: t.list[idx], FramesLeft: ToastFrames}
	records := Records(t.list)
	t.mu.Unlock()

	log.Printf("[ACH] %s unlocked %s", t.profile, id)
	if t.store != nil {
		if err := t.store.Save(ctx, t.profile, records); err != nil {
			log.Printf("[ACH] Failed to save achievements for %s: %v", t.profile, err)
		}
	}
	return true
}

// Handle unlocks the achievements named by a batch of game events and
// returns the newly unlocked ones.
func (t *Tracker) Handle(ctx context.Context, events []game.Event) []Achievement {
	var unlocked []Achievement
	for _, ev := range events {
		if _, ok := Lookup(string(ev.Kind)); !ok {
			continue
		}
		if t.Unlock(ctx, string(ev.Kind)) {
			if a, ok := t.get(string(ev.Kind)); ok {
				unlocked = append(unlocked, a)
			}
		}
	}
	return unlocked
}

// Tick counts the toast down by one frame.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.toast == nil {
		return
	}
	t.toast.FramesLeft--
	if t.toast.FramesLeft <= 0 {
		t.toast = nil
	}
}

// Toast returns the notification on screen, if any.
func (t *Tracker) Toast() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.toast == nil {
		return Toast{}, false
	}
	return *t.toast, true
}

// List returns the profile's achievements in catalogue order.
func (t *Tracker) List() []Achievement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Achievement(nil), t.list...)
}

func (t *Tracker) get(id string) (Achievement, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, a := range t.list {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
