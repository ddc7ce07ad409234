package order

import "errors"

// ErrDragActive is returned when a dragstart arrives while another drag is
// still in progress. Exactly one drag may be active; the second start is
// rejected rather than silently restarting, so callers get a testable rule
// instead of an ambiguous UI event.
var ErrDragActive = errors.New("drag already in progress")

type DragKind string

const (
	DragSpace    DragKind = "space"
	DragCategory DragKind = "category"
)

// DragInfo identifies the element being dragged. SourceParent is the
// category id for space drags and empty for category drags.
type DragInfo struct {
	Kind         DragKind
	ID           string
	SourceParent string
}

// Drag is the tagged-variant drag state machine: Idle | Dragging.
// It is not safe for concurrent use; the engine runs single-threaded.
type Drag struct {
	active bool
	info   DragInfo
}

// Start transitions idle → dragging.
func (d *Drag) Start(kind DragKind, id, sourceParent string) error {
	if d.active {
		return ErrDragActive
	}
	d.active = true
	d.info = DragInfo{Kind: kind, ID: id, SourceParent: sourceParent}
	return nil
}

// Drop ends the drag and returns what was being dragged.
// Returns ok=false when no drag was active.
func (d *Drag) Drop() (DragInfo, bool) {
	if !d.active {
		return DragInfo{}, false
	}
	info := d.info
	d.active = false
	d.info = DragInfo{}
	return info, true
}

// Cancel aborts any active drag. Canceling while idle is a no-op.
func (d *Drag) Cancel() {
	d.active = false
	d.info = DragInfo{}
}

// Active returns the current drag, if any.
func (d *Drag) Active() (DragInfo, bool) {
	if !d.active {
		return DragInfo{}, false
	}
	return d.info, true
}
