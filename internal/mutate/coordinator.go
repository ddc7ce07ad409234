package mutate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"satchel-cli/internal/model"
	"satchel-cli/internal/store"
)

// UndoWindow is how long a committed delete stays reversible.
const UndoWindow = 6 * time.Second

// Notifier receives coordinator events that happen outside any call, such
// as the undo window running out on its own.
type Notifier interface {
	UndoExpired(itemIDs []string)
}

type NopNotifier struct{}

func (NopNotifier) UndoExpired([]string) {}

// Coordinator applies item mutations optimistically. The returned list
// reflects the change immediately, remote calls for a batch run
// concurrently, and a batch with any remote failure rolls back as a unit.
type Coordinator struct {
	remote store.ItemStore
	notify Notifier
	log    zerolog.Logger

	window    time.Duration
	afterFunc func(time.Duration, func()) *time.Timer

	mu     sync.Mutex
	buffer []model.Item
	timer  *time.Timer
	gen    int
}

func New(remote store.ItemStore, notify Notifier, log zerolog.Logger) *Coordinator {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Coordinator{
		remote:    remote,
		notify:    notify,
		log:       log,
		window:    UndoWindow,
		afterFunc: time.AfterFunc,
	}
}

// MoveItems moves the listed items into targetSpaceID (nil for the
// overview). On failure the original list comes back together with a
// BatchError; remote moves that did land are compensated best-effort.
func (c *Coordinator) MoveItems(ctx context.Context, items []model.Item, ids []string, targetSpaceID *string) ([]model.Item, error) {
	picked := indexByID(items, ids)
	if len(picked) == 0 {
		return items, nil
	}

	next := make([]model.Item, len(items))
	copy(next, items)
	for _, i := range picked {
		next[i].SpaceID = cloneID(targetSpaceID)
	}

	errs := c.settle(len(picked), func(k int) (string, error) {
		id := items[picked[k]].ID
		return id, c.remote.MoveItem(ctx, id, targetSpaceID)
	})
	if len(errs) == 0 {
		return next, nil
	}
	for _, i := range picked {
		it := items[i]
		if _, failed := errs[it.ID]; failed {
			continue
		}
		if err := c.remote.MoveItem(ctx, it.ID, it.SpaceID); err != nil {
			c.log.Warn().Err(err).Str("item", it.ID).Msg("move compensation failed")
		}
	}
	return items, BatchError{Op: "move", Errs: errs}
}

// DeleteItems removes the listed items. A committed delete replaces any
// pending undo buffer; only the newest delete stays reversible.
func (c *Coordinator) DeleteItems(ctx context.Context, items []model.Item, ids []string) ([]model.Item, error) {
	picked := indexByID(items, ids)
	if len(picked) == 0 {
		return items, nil
	}

	pickedSet := make(map[int]bool, len(picked))
	snapshot := make([]model.Item, 0, len(picked))
	for _, i := range picked {
		pickedSet[i] = true
		snapshot = append(snapshot, items[i])
	}
	next := make([]model.Item, 0, len(items)-len(picked))
	for i, it := range items {
		if !pickedSet[i] {
			next = append(next, it)
		}
	}

	errs := c.settle(len(snapshot), func(k int) (string, error) {
		id := snapshot[k].ID
		return id, c.remote.DeleteItem(ctx, id)
	})
	if len(errs) > 0 {
		for _, it := range snapshot {
			if _, failed := errs[it.ID]; failed {
				continue
			}
			if err := c.remote.RestoreItem(ctx, it.ID); err != nil {
				c.log.Warn().Err(err).Str("item", it.ID).Msg("delete compensation failed")
			}
		}
		return items, BatchError{Op: "delete", Errs: errs}
	}

	c.arm(snapshot)
	return next, nil
}

// Undo restores the most recent committed delete, prepending the items to
// the front of the list in their original order. Outside the undo window it
// is a no-op.
func (c *Coordinator) Undo(ctx context.Context, items []model.Item) ([]model.Item, bool, error) {
	c.mu.Lock()
	snapshot := c.buffer
	c.buffer = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
	c.mu.Unlock()
	if len(snapshot) == 0 {
		return items, false, nil
	}

	errs := c.settle(len(snapshot), func(k int) (string, error) {
		id := snapshot[k].ID
		return id, c.remote.RestoreItem(ctx, id)
	})
	restored := make([]model.Item, 0, len(snapshot))
	for _, it := range snapshot {
		if _, failed := errs[it.ID]; !failed {
			restored = append(restored, it)
		}
	}
	next := append(restored, items...)
	if len(errs) > 0 {
		return next, len(restored) > 0, BatchError{Op: "restore", Errs: errs}
	}
	return next, true, nil
}

// PendingUndo reports how many items the next Undo would bring back.
func (c *Coordinator) PendingUndo() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

// arm replaces any pending undo buffer with a fresh one. Items dropped from
// the old buffer stay deleted for good.
func (c *Coordinator) arm(snapshot []model.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.buffer = snapshot
	c.gen++
	gen := c.gen
	c.timer = c.afterFunc(c.window, func() { c.expire(gen) })
}

// expire fires at most once per armed buffer; gen guards against a timer
// racing a later arm or Undo.
func (c *Coordinator) expire(gen int) {
	c.mu.Lock()
	if gen != c.gen || c.buffer == nil {
		c.mu.Unlock()
		return
	}
	ids := make([]string, len(c.buffer))
	for i, it := range c.buffer {
		ids[i] = it.ID
	}
	c.buffer = nil
	c.timer = nil
	c.mu.Unlock()
	c.notify.UndoExpired(ids)
}

// settle runs one remote call per entry concurrently and waits for all of
// them, collecting failures by item id.
func (c *Coordinator) settle(n int, call func(k int) (string, error)) map[string]error {
	var wg sync.WaitGroup
	var mu sync.Mutex
	errs := map[string]error{}
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			id, err := call(k)
			if err != nil {
				mu.Lock()
				errs[id] = err
				mu.Unlock()
			}
		}(k)
	}
	wg.Wait()
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func indexByID(items []model.Item, ids []string) []int {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []int
	for i, it := range items {
		if want[it.ID] {
			out = append(out, i)
		}
	}
	return out
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
