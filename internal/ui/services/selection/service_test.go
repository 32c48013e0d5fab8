package selection

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

// sameRef reports whether two snapshots are the same underlying map.
func sameRef(a, b map[string]struct{}) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestNewCollapsesDuplicates(t *testing.T) {
	c := New([]string{"a", "b", "a"})
	require.Equal(t, 2, c.Count())
	require.True(t, c.Has("a"))
	require.True(t, c.Has("b"))
}

func TestSnapshotStableBetweenMutations(t *testing.T) {
	c := New([]string{"a"})
	first := c.Snapshot()
	second := c.Snapshot()
	require.True(t, sameRef(first, second), "snapshot must be reference-stable with no mutation in between")

	c.Toggle("b")
	third := c.Snapshot()
	require.False(t, sameRef(first, third), "mutation must produce a fresh snapshot")
}

func TestToggleAddsAndRemoves(t *testing.T) {
	c := New(nil)

	c.Toggle("a")
	require.True(t, c.Has("a"))

	c.Toggle("a")
	require.False(t, c.Has("a"))
	require.Equal(t, 0, c.Count())
}

func TestToggleIsSelfInverse(t *testing.T) {
	c := New([]string{"a", "b"})
	before := c.Snapshot()

	c.Toggle("b")
	c.Toggle("b")

	after := c.Snapshot()
	require.Equal(t, before, after, "double toggle must restore the set content")
	require.False(t, sameRef(before, after), "each toggle still produces a new snapshot")
}

func TestToggleAlwaysNotifies(t *testing.T) {
	c := New(nil)
	notified := 0
	c.Subscribe(func() { notified++ })

	c.Toggle("a")
	c.Toggle("a")
	require.Equal(t, 2, notified)
}

func TestToggleNeverMutatesHandedOutSnapshot(t *testing.T) {
	c := New([]string{"a"})
	snap := c.Snapshot()

	c.Toggle("b")
	c.Toggle("a")

	require.Equal(t, map[string]struct{}{"a": {}}, snap, "earlier snapshots must stay frozen")
}

func TestBulkUnselectRemovesPresent(t *testing.T) {
	c := New([]string{"a", "b", "c"})
	notified := 0
	c.Subscribe(func() { notified++ })

	c.BulkUnselect([]string{"a", "missing", "c"})

	require.Equal(t, 1, notified)
	require.Equal(t, 1, c.Count())
	require.True(t, c.Has("b"))
}

func TestBulkUnselectDisjointIsSilentNoop(t *testing.T) {
	c := New([]string{"a", "b"})
	notified := 0
	c.Subscribe(func() { notified++ })
	before := c.Snapshot()

	c.BulkUnselect([]string{"x", "y"})
	c.BulkUnselect(nil)

	require.Zero(t, notified, "disjoint bulk-unselect must not notify")
	require.True(t, sameRef(before, c.Snapshot()), "disjoint bulk-unselect must keep the snapshot reference")
}

func TestSubscribeReturnsIndependentRemovers(t *testing.T) {
	c := New(nil)
	calls := 0
	fn := func() { calls++ }

	unsub1 := c.Subscribe(fn)
	unsub2 := c.Subscribe(fn)

	c.Toggle("a")
	require.Equal(t, 2, calls, "same listener subscribed twice fires twice")

	unsub1()
	c.Toggle("b")
	require.Equal(t, 3, calls, "removing one registration leaves the other")

	unsub2()
	unsub2() // idempotent
	c.Toggle("c")
	require.Equal(t, 3, calls)
}

func TestNotifyOrderMatchesSubscriptionOrder(t *testing.T) {
	c := New(nil)
	var order []int
	c.Subscribe(func() { order = append(order, 1) })
	c.Subscribe(func() { order = append(order, 2) })
	c.Subscribe(func() { order = append(order, 3) })

	c.Toggle("a")
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestListenerSeesNewSnapshot(t *testing.T) {
	c := New(nil)
	var seen bool
	c.Subscribe(func() { seen = c.Has("a") })

	c.Toggle("a")
	require.True(t, seen, "notification fires after the snapshot swap")
}
