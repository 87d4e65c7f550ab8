package achievements

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/playmatatu/poolsim/internal/game"
)

// memStore records saves for assertions.
type memStore struct {
	records map[string][]Record
	saves   int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string][]Record)}
}

func (m *memStore) Load(_ context.Context, profile string) ([]Record, error) {
	return m.records[profile], nil
}

func (m *memStore) Save(_ context.Context, profile string, records []Record) error {
	m.saves++
	m.records[profile] = append([]Record(nil), records...)
	return nil
}

func (m *memStore) Reset(_ context.Context, profile string) error {
	delete(m.records, profile)
	return nil
}

func TestCatalogue(t *testing.T) {
	defs := Catalogue()
	want := []string{"first_shot", "first_pocket", "three_in_one", "speed_demon", "perfect_game"}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions", len(defs))
	}
	for i, d := range defs {
		if d.ID != want[i] || d.Title == "" || d.Icon == "" {
			t.Errorf("definition %d = %+v", i, d)
		}
	}
}

func TestMergeKeepsCatalogueOrder(t *testing.T) {
	list := Merge([]Record{
		{ID: "speed_demon", Unlocked: true},
		{ID: "retired", Unlocked: true},
	})

	if len(list) != len(Catalogue()) {
		t.Fatalf("got %d achievements", len(list))
	}
	for _, a := range list {
		if a.Unlocked != (a.ID == "speed_demon") {
			t.Errorf("%s unlocked = %v", a.ID, a.Unlocked)
		}
	}
}

func TestUnlockIsIdempotent(t *testing.T) {
	store := newMemStore()
	tr := NewTracker(context.Background(), store, "p1")

	if !tr.Unlock(context.Background(), "first_shot") {
		t.Fatal("first unlock returned false")
	}
	if tr.Unlock(context.Background(), "first_shot") {
		t.Error("second unlock returned true")
	}
	if tr.Unlock(context.Background(), "no_such_thing") {
		t.Error("unknown id unlocked")
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}

	reloaded := NewTracker(context.Background(), store, "p1")
	for _, a := range reloaded.List() {
		if a.Unlocked != (a.ID == "first_shot") {
			t.Errorf("after reload %s unlocked = %v", a.ID, a.Unlocked)
		}
	}
}

func TestToastCountsDown(t *testing.T) {
	tr := NewTracker(context.Background(), nil, "p1")
	tr.Unlock(context.Background(), "first_pocket")

	toast, ok := tr.Toast()
	if !ok || toast.Achievement.ID != "first_pocket" || toast.FramesLeft != ToastFrames {
		t.Fatalf("toast = %+v, %v", toast, ok)
	}

	for i := 0; i < ToastFrames-1; i++ {
		tr.Tick()
	}
	if _, ok := tr.Toast(); !ok {
		t.Fatal("toast gone a frame early")
	}
	tr.Tick()
	if _, ok := tr.Toast(); ok {
		t.Error("toast still up after its frames ran out")
	}
}

func TestHandleGameEvents(t *testing.T) {
	tr := NewTracker(context.Background(), newMemStore(), "p1")

	got := tr.Handle(context.Background(), []game.Event{
		{Kind: game.EventFirstShot},
		{Kind: game.EventFirstPocket},
		{Kind: game.EventGameOver, Reason: game.ReasonWin},
		{Kind: game.EventFirstShot},
	})

	if len(got) != 2 || got[0].ID != "first_shot" || got[1].ID != "first_pocket" {
		t.Errorf("unlocked = %+v", got)
	}
	if toast, _ := tr.Toast(); toast.Achievement.ID != "first_pocket" {
		t.Errorf("toast shows %s, want the latest unlock", toast.Achievement.ID)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	store := NewFileStore(path)
	ctx := context.Background()

	recs, err := store.Load(ctx, "p1")
	if err != nil || len(recs) != 0 {
		t.Fatalf("empty load = %v, %v", recs, err)
	}

	if err := store.Save(ctx, "p1", []Record{{ID: "first_shot", Unlocked: true}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "p2", []Record{{ID: "perfect_game", Unlocked: true}}); err != nil {
		t.Fatal(err)
	}

	recs, err = NewFileStore(path).Load(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].ID != "first_shot" || !recs[0].Unlocked {
		t.Errorf("p1 records = %+v", recs)
	}

	if err := store.Reset(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if recs, _ := store.Load(ctx, "p1"); len(recs) != 0 {
		t.Errorf("p1 after reset = %+v", recs)
	}
	if recs, _ := store.Load(ctx, "p2"); len(recs) != 1 {
		t.Errorf("reset touched p2: %+v", recs)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Load(context.Background(), "p1"); err == nil {
		t.Error("expected parse error")
	}

	// a tracker over a broken store still works, everything locked
	tr := NewTracker(context.Background(), NewFileStore(path), "p1")
	for _, a := range tr.List() {
		if a.Unlocked {
			t.Errorf("%s unlocked from a corrupt file", a.ID)
		}
	}
}

func TestNewStore(t *testing.T) {
	if _, err := NewStore("file", "x.json", nil, nil); err != nil {
		t.Errorf("file store: %v", err)
	}
	if _, err := NewStore("redis", "", nil, nil); err == nil {
		t.Error("redis store without a client should fail")
	}
	if _, err := NewStore("postgres", "", nil, nil); err == nil {
		t.Error("postgres store without a db should fail")
	}
	if _, err := NewStore("s3", "", nil, nil); err == nil {
		t.Error("unknown store kind should fail")
	}
}
