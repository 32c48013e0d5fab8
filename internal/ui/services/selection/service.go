// Package selection tracks which list entries are selected in a
// multi-select editing view and notifies observers synchronously on
// change.
package selection

// Controller holds the selected entity keys for one list view. One
// controller exists per view that supports multi-select; it is dropped
// with the view.
//
// The snapshot handed out is never mutated in place: every change
// builds a fresh set, so observers may use reference equality to
// detect changes.
type Controller struct {
	snapshot  map[string]struct{}
	listeners []registration
	nextID    int
}

type registration struct {
	id int
	fn func()
}

// New creates a controller with the given keys selected. Duplicates
// collapse.
func New(initial []string) *Controller {
	snapshot := make(map[string]struct{}, len(initial))
	for _, key := range initial {
		snapshot[key] = struct{}{}
	}
	return &Controller{snapshot: snapshot}
}

// Subscribe registers a listener invoked after every snapshot change.
// The returned function removes exactly this registration; subscribing
// the same function twice yields two independent registrations.
func (c *Controller) Subscribe(fn func()) (unsubscribe func()) {
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, registration{id: id, fn: fn})

	return func() {
		for i, r := range c.listeners {
			if r.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				break
			}
		}
	}
}

// Snapshot returns the current selection. The same map is returned
// until the next mutation; callers must treat it as read-only.
func (c *Controller) Snapshot() map[string]struct{} {
	return c.snapshot
}

// Toggle flips the selection state of key. It always produces a new
// snapshot and always notifies, even when a listener could not tell
// the difference by size: views reset transient state on any toggle.
func (c *Controller) Toggle(key string) {
	next := c.clone()
	if _, ok := next[key]; ok {
		delete(next, key)
	} else {
		next[key] = struct{}{}
	}
	c.snapshot = next
	c.notify()
}

// BulkUnselect removes every key in keys that is currently selected.
// Listeners are notified only when at least one key was actually
// removed; a disjoint or nil keys leaves the snapshot untouched, so no
// spurious re-renders happen. Asymmetric with Toggle on purpose.
func (c *Controller) BulkUnselect(keys []string) {
	var next map[string]struct{}
	for _, key := range keys {
		if _, ok := c.snapshot[key]; !ok {
			continue
		}
		if next == nil {
			next = c.clone()
		}
		delete(next, key)
	}
	if next == nil {
		return
	}
	c.snapshot = next
	c.notify()
}

// Has reports whether key is selected.
func (c *Controller) Has(key string) bool {
	_, ok := c.snapshot[key]
	return ok
}

// Count returns the number of selected keys.
func (c *Controller) Count() int {
	return len(c.snapshot)
}

// Selected returns the selected keys as a slice.
func (c *Controller) Selected() []string {
	keys := make([]string, 0, len(c.snapshot))
	for key := range c.snapshot {
		keys = append(keys, key)
	}
	return keys
}

func (c *Controller) clone() map[string]struct{} {
	next := make(map[string]struct{}, len(c.snapshot)+1)
	for key := range c.snapshot {
		next[key] = struct{}{}
	}
	return next
}

// notify runs listeners synchronously, in subscription order, against
// the already-swapped snapshot.
func (c *Controller) notify() {
	// Copy first: a listener may unsubscribe itself (or others) mid-walk.
	regs := make([]registration, len(c.listeners))
	copy(regs, c.listeners)
	for _, r := range regs {
		r.fn()
	}
}
