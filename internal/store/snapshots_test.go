package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"associate-os/internal/model"
	"associate-os/internal/mutate"
	"associate-os/internal/schema"
)

// tickingClock advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

func TestSnapshotKey(t *testing.T) {
	at := time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC)
	if got, want := SnapshotKey(at, ""), "07.03.2024, 09:05:02"; got != want {
		t.Fatalf("SnapshotKey = %q, want %q", got, want)
	}
	if got, want := SnapshotKey(at, " before-cleanup "), "07.03.2024, 09:05:02 - before-cleanup"; got != want {
		t.Fatalf("SnapshotKey = %q, want %q", got, want)
	}
}

func TestSnapshotRestore_Scenario(t *testing.T) {
	ctx := context.Background()
	docs, _ := openTestDocuments(t, WithClock(tickingClock(time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC))))

	doc := addTask(t, docs.Current(), "t1", "One")
	doc = addTask(t, doc, "t2", "Two")
	doc = addTask(t, doc, "t3", "Three")
	if err := docs.Replace(ctx, doc); err != nil {
		t.Fatal(err)
	}
	before := docs.Current()

	key, err := docs.Snapshot(ctx, "before-cleanup")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if key != "07.03.2024, 09:00:00 - before-cleanup" {
		t.Fatalf("unexpected key %q", key)
	}

	if _, err := docs.Apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.DeleteTask(d, "t2") }); err != nil {
		t.Fatal(err)
	}
	if len(docs.Current().Tasks) != 2 {
		t.Fatalf("expected delete to apply")
	}

	notified := 0
	docs.Subscribe(func(model.AppData) { notified++ })
	if err := docs.Restore(ctx, "before-cleanup"); err != nil {
		t.Fatalf("Restore by name: %v", err)
	}
	if !reflect.DeepEqual(docs.Current(), before) {
		t.Fatalf("restored document differs from snapshot source")
	}
	if notified != 1 {
		t.Fatalf("expected one notification, got %d", notified)
	}

	if err := docs.Restore(ctx, key); err != nil {
		t.Fatalf("Restore by key: %v", err)
	}
}

func TestListSnapshots_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	docs, _ := openTestDocuments(t, WithClock(tickingClock(time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC))))
	for _, name := range []string{"a", "", "c"} {
		if _, err := docs.Snapshot(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	infos, err := docs.ListSnapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	want := []string{"07.03.2024, 09:00:02 - c", "07.03.2024, 09:00:01", "07.03.2024, 09:00:00 - a"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if infos[0].Name != "c" || infos[0].Size == 0 {
		t.Fatalf("unexpected info: %+v", infos[0])
	}
}

func TestSnapshot_SameKeyLastWriteWins(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	docs, _ := openTestDocuments(t, WithClock(func() time.Time { return fixed }))

	if _, err := docs.Snapshot(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if err := docs.Replace(ctx, addTask(t, docs.Current(), "t1", "One")); err != nil {
		t.Fatal(err)
	}
	if _, err := docs.Snapshot(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	infos, _ := docs.ListSnapshots(ctx)
	if len(infos) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(infos))
	}
	if _, err := docs.Apply(ctx, func(d model.AppData) (model.AppData, error) { return mutate.DeleteTask(d, "t1") }); err != nil {
		t.Fatal(err)
	}
	if err := docs.Restore(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if len(docs.Current().Tasks) != 1 {
		t.Fatalf("expected the later snapshot to win")
	}
}

func TestRestore_CorruptSnapshotLeavesLiveDocument(t *testing.T) {
	ctx := context.Background()
	docs, st := openTestDocuments(t)
	if err := docs.Replace(ctx, addTask(t, docs.Current(), "t1", "One")); err != nil {
		t.Fatal(err)
	}
	live := docs.Current()

	info := SnapshotInfo{Key: "broken", CreatedAt: time.Now()}
	if err := st.PutSnapshot(ctx, DefaultSnapshotNamespace, info, []byte(`{"tasks":[{"id":1}],"settings":{}}`)); err != nil {
		t.Fatal(err)
	}
	notified := false
	docs.Subscribe(func(model.AppData) { notified = true })

	err := docs.Restore(ctx, "broken")
	if !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}
	if !reflect.DeepEqual(docs.Current(), live) || notified {
		t.Fatalf("corrupt snapshot changed the live document")
	}
}

func TestRestore_UnknownKey(t *testing.T) {
	docs, _ := openTestDocuments(t)
	if err := docs.Restore(context.Background(), "nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshot_AfterCorruptLoadCanBeRestored(t *testing.T) {
	ctx := context.Background()
	st := Store{Dir: t.TempDir()}
	if err := st.WriteRecord(ctx, DefaultNamespace, []byte(`{"tasks":[{"id":"x"}],"settings":{}}`)); err != nil {
		t.Fatal(err)
	}
	docs, err := Open(ctx, st)
	if err != nil {
		t.Fatal(err)
	}

	key, err := docs.Snapshot(ctx, "recovered")
	if err != nil {
		t.Fatal(err)
	}
	if err := docs.Restore(ctx, key); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !reflect.DeepEqual(docs.Current(), schema.Default()) {
		t.Fatalf("expected the default document after restore")
	}
}
