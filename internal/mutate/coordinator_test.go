package mutate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"satchel-cli/internal/model"
	"satchel-cli/internal/store"
)

type fakeRemote struct {
	mu          sync.Mutex
	deleted     []string
	restored    []string
	moved       map[string]*string
	failDelete  map[string]error
	failRestore map[string]error
	failMove    map[string]error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{moved: map[string]*string{}}
}

func (f *fakeRemote) ListItems(context.Context, store.Scope) ([]model.Item, error) {
	return nil, nil
}

func (f *fakeRemote) CreateItem(context.Context, store.ItemDraft) (model.Item, error) {
	return model.Item{}, nil
}

func (f *fakeRemote) UpdateItem(context.Context, string, store.ItemPatch) error {
	return nil
}

func (f *fakeRemote) MoveItem(_ context.Context, id string, target *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failMove[id]; err != nil {
		return err
	}
	f.moved[id] = target
	return nil
}

func (f *fakeRemote) DeleteItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDelete[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemote) RestoreItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRestore[id]; err != nil {
		return err
	}
	f.restored = append(f.restored, id)
	return nil
}

type manualTimer struct {
	mu      sync.Mutex
	pending []func()
}

func (m *manualTimer) afterFunc(_ time.Duration, f func()) *time.Timer {
	m.mu.Lock()
	m.pending = append(m.pending, f)
	m.mu.Unlock()
	return time.NewTimer(time.Hour)
}

func (m *manualTimer) fire(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		t.Fatalf("no timer armed")
	}
	f := m.pending[len(m.pending)-1]
	m.mu.Unlock()
	f()
}

type recordingNotifier struct {
	mu      sync.Mutex
	expired [][]string
}

func (n *recordingNotifier) UndoExpired(ids []string) {
	n.mu.Lock()
	n.expired = append(n.expired, ids)
	n.mu.Unlock()
}

func testItems(ids ...string) []model.Item {
	out := make([]model.Item, len(ids))
	for i, id := range ids {
		out[i] = model.Item{ID: id, Title: id, Type: model.ItemTypeNote}
	}
	return out
}

func itemIDs(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sameIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func newTestCoordinator(remote *fakeRemote, notify Notifier) (*Coordinator, *manualTimer) {
	c := New(remote, notify, zerolog.Nop())
	mt := &manualTimer{}
	c.afterFunc = mt.afterFunc
	return c, mt
}

func TestDeleteThenUndo(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, _ := newTestCoordinator(remote, nil)

	items := testItems("item-1", "item-2", "item-3", "item-4", "item-5")
	after, err := c.DeleteItems(ctx, items, []string{"item-3", "item-4"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !sameIDs(itemIDs(after), "item-1", "item-2", "item-5") {
		t.Fatalf("after delete: %v", itemIDs(after))
	}
	if c.PendingUndo() != 2 {
		t.Fatalf("pending undo: got %d, want 2", c.PendingUndo())
	}

	restoredList, ok, err := c.Undo(ctx, after)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !ok {
		t.Fatalf("undo reported nothing to restore")
	}
	// Undone items come back at the front, in their original order.
	if !sameIDs(itemIDs(restoredList), "item-3", "item-4", "item-1", "item-2", "item-5") {
		t.Fatalf("after undo: %v", itemIDs(restoredList))
	}
	if len(remote.restored) != 2 {
		t.Fatalf("remote restores: %v", remote.restored)
	}

	// A second undo has nothing buffered.
	again, ok, err := c.Undo(ctx, restoredList)
	if err != nil || ok {
		t.Fatalf("second undo: ok=%v err=%v", ok, err)
	}
	if len(again) != len(restoredList) {
		t.Fatalf("second undo changed the list")
	}
}

func TestUndoAfterExpiryIsNoop(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	notify := &recordingNotifier{}
	c, mt := newTestCoordinator(remote, notify)

	items := testItems("item-1", "item-2")
	after, err := c.DeleteItems(ctx, items, []string{"item-2"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	mt.fire(t)
	if c.PendingUndo() != 0 {
		t.Fatalf("buffer survived expiry")
	}
	if len(notify.expired) != 1 || !sameIDs(notify.expired[0], "item-2") {
		t.Fatalf("expiry notification: %v", notify.expired)
	}

	got, ok, err := c.Undo(ctx, after)
	if err != nil || ok {
		t.Fatalf("undo after expiry: ok=%v err=%v", ok, err)
	}
	if !sameIDs(itemIDs(got), "item-1") {
		t.Fatalf("undo after expiry changed list: %v", itemIDs(got))
	}
	if len(remote.restored) != 0 {
		t.Fatalf("unexpected remote restores: %v", remote.restored)
	}
}

func TestNewDeleteReplacesBuffer(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, mt := newTestCoordinator(remote, nil)

	items := testItems("item-1", "item-2", "item-3")
	after, err := c.DeleteItems(ctx, items, []string{"item-1"})
	if err != nil {
		t.Fatalf("first delete: %v", err)
	}
	after, err = c.DeleteItems(ctx, after, []string{"item-2"})
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}

	got, ok, err := c.Undo(ctx, after)
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	// Only the newest delete is reversible; item-1 stays gone.
	if !sameIDs(itemIDs(got), "item-2", "item-3") {
		t.Fatalf("after undo: %v", itemIDs(got))
	}

	// A stale timer firing late must not clear anything.
	mt.fire(t)
	if c.PendingUndo() != 0 {
		t.Fatalf("pending undo after stale expiry: %d", c.PendingUndo())
	}
}

func TestDeleteRollsBackOnPartialFailure(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failDelete = map[string]error{"item-2": errors.New("offline")}
	c, _ := newTestCoordinator(remote, nil)

	items := testItems("item-1", "item-2", "item-3")
	after, err := c.DeleteItems(ctx, items, []string{"item-1", "item-2"})

	var be BatchError
	if !errors.As(err, &be) {
		t.Fatalf("want BatchError, got %v", err)
	}
	if be.Op != "delete" || len(be.Errs) != 1 {
		t.Fatalf("batch error: %+v", be)
	}
	if !sameIDs(itemIDs(after), "item-1", "item-2", "item-3") {
		t.Fatalf("list not rolled back: %v", itemIDs(after))
	}
	// The delete that landed remotely gets compensated.
	if !sameIDs(remote.restored, "item-1") {
		t.Fatalf("compensation restores: %v", remote.restored)
	}
	if c.PendingUndo() != 0 {
		t.Fatalf("failed batch armed an undo buffer")
	}
}

func TestMoveItems(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, _ := newTestCoordinator(remote, nil)

	target := "space-a"
	items := testItems("item-1", "item-2")
	after, err := c.MoveItems(ctx, items, []string{"item-2"}, &target)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if after[1].SpaceID == nil || *after[1].SpaceID != target {
		t.Fatalf("item-2 not moved: %+v", after[1])
	}
	if after[0].SpaceID != nil {
		t.Fatalf("item-1 moved unexpectedly")
	}
	if got := remote.moved["item-2"]; got == nil || *got != target {
		t.Fatalf("remote move: %v", got)
	}
}

func TestMoveRollsBackOnPartialFailure(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	remote.failMove = map[string]error{"item-2": errors.New("offline")}
	c, _ := newTestCoordinator(remote, nil)

	target := "space-a"
	items := testItems("item-1", "item-2")
	after, err := c.MoveItems(ctx, items, []string{"item-1", "item-2"}, &target)

	var be BatchError
	if !errors.As(err, &be) {
		t.Fatalf("want BatchError, got %v", err)
	}
	if after[0].SpaceID != nil || after[1].SpaceID != nil {
		t.Fatalf("list not rolled back: %+v", after)
	}
	// item-1 landed remotely, so it gets moved back to its old home.
	if got, ok := remote.moved["item-1"]; !ok || got != nil {
		t.Fatalf("compensating move: %v ok=%v", got, ok)
	}
}

func TestDeleteUnknownIDsIsNoop(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	c, _ := newTestCoordinator(remote, nil)

	items := testItems("item-1")
	after, err := c.DeleteItems(ctx, items, []string{"item-nope"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !sameIDs(itemIDs(after), "item-1") {
		t.Fatalf("list changed: %v", itemIDs(after))
	}
	if len(remote.deleted) != 0 {
		t.Fatalf("remote deletes: %v", remote.deleted)
	}
}
