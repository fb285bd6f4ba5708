package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-menu-mirror/internal/config"
	"github.com/MKhiriev/go-menu-mirror/internal/logger"
	"github.com/MKhiriev/go-menu-mirror/internal/menu"
	"github.com/MKhiriev/go-menu-mirror/models"
)

const (
	waitFor  = 3 * time.Second
	pollTick = 5 * time.Millisecond
)

// ── Scripted remote side ─────────────────────────────────────────────────────

type layoutReply struct {
	revision uint32
	layout   models.Layout
	err      error
}

type eventCall struct {
	id        int
	name      string
	data      models.Variant
	timestamp uint32
}

// fakeCaller is an in-memory remote menu. Layout responses are scripted
// through a channel so tests control exactly when a fetch completes; group
// property calls answer immediately with a synthetic label per id.
type fakeCaller struct {
	mu          sync.Mutex
	layoutCalls int
	replies     chan layoutReply

	groupCalls [][]int
	groupErr   error
	labels     map[int]string
	extraProps map[int]map[string]models.Variant

	events     []eventCall
	eventErr   error
	needUpdate bool
	aboutErr   error
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		replies:    make(chan layoutReply, 16),
		labels:     make(map[int]string),
		extraProps: make(map[int]map[string]models.Variant),
	}
}

func (c *fakeCaller) GetLayout(ctx context.Context, parentID int) (uint32, models.Layout, error) {
	c.mu.Lock()
	c.layoutCalls++
	c.mu.Unlock()

	select {
	case r := <-c.replies:
		return r.revision, r.layout, r.err
	case <-ctx.Done():
		return 0, models.Layout{}, ctx.Err()
	}
}

func (c *fakeCaller) GetGroupProperties(_ context.Context, ids []int, _ []string) ([]models.NodeProperties, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groupCalls = append(c.groupCalls, append([]int(nil), ids...))
	if c.groupErr != nil {
		return nil, c.groupErr
	}

	out := make([]models.NodeProperties, 0, len(ids))
	for _, id := range ids {
		props := map[string]models.Variant{
			models.PropertyLabel: models.StringVariant(c.labelFor(id)),
		}
		for k, v := range c.extraProps[id] {
			props[k] = v
		}
		out = append(out, models.NodeProperties{ID: id, Properties: props})
	}
	return out, nil
}

func (c *fakeCaller) Event(_ context.Context, id int, name string, data models.Variant, timestamp uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, eventCall{id: id, name: name, data: data, timestamp: timestamp})
	return c.eventErr
}

func (c *fakeCaller) AboutToShow(_ context.Context, _ int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.needUpdate, c.aboutErr
}

func (c *fakeCaller) labelFor(id int) string {
	if label, ok := c.labels[id]; ok {
		return label
	}
	return fmt.Sprintf("item-%d", id)
}

func (c *fakeCaller) setLabel(id int, label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels[id] = label
}

func (c *fakeCaller) reply(revision uint32, l models.Layout) {
	c.replies <- layoutReply{revision: revision, layout: l}
}

func (c *fakeCaller) layoutCallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layoutCalls
}

func (c *fakeCaller) groupCallsFor(id int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, call := range c.groupCalls {
		for _, got := range call {
			if got == id {
				n++
			}
		}
	}
	return n
}

func (c *fakeCaller) eventCalls() []eventCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]eventCall(nil), c.events...)
}

// ── Recording observer ───────────────────────────────────────────────────────

type activation struct {
	id        int
	timestamp uint32
}

type eventOutcome struct {
	id    int
	event string
	err   error
}

// recordingObserver captures notifications into buffered channels. Callbacks
// run on the session loop, so node details are copied out before sending.
type recordingObserver struct {
	rootChanged   chan int // -1 stands for a nil root
	layoutUpdated chan struct{}
	newNodes      chan int
	activations   chan activation
	eventResults  chan eventOutcome
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		rootChanged:   make(chan int, 16),
		layoutUpdated: make(chan struct{}, 16),
		newNodes:      make(chan int, 256),
		activations:   make(chan activation, 16),
		eventResults:  make(chan eventOutcome, 16),
	}
}

func (o *recordingObserver) RootChanged(root *menu.Node) {
	if root == nil {
		o.rootChanged <- -1
		return
	}
	o.rootChanged <- root.ID()
}

func (o *recordingObserver) LayoutUpdated() {
	o.layoutUpdated <- struct{}{}
}

func (o *recordingObserver) NewNode(node *menu.Node) {
	o.newNodes <- node.ID()
}

func (o *recordingObserver) ItemActivationRequested(node *menu.Node, timestamp uint32) {
	o.activations <- activation{id: node.ID(), timestamp: timestamp}
}

func (o *recordingObserver) EventResult(node *menu.Node, event string, _ models.Variant, _ uint32, err error) {
	o.eventResults <- eventOutcome{id: node.ID(), event: event, err: err}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func newTestSession(t *testing.T) (*Session, *fakeCaller, *recordingObserver) {
	t.Helper()

	caller := newFakeCaller()
	obs := newRecordingObserver()
	s := New(caller, obs, config.Timeouts{Event: time.Second}, logger.Nop())
	t.Cleanup(func() { _ = s.Close() })
	return s, caller, obs
}

func layoutOf(id int, children ...models.Layout) models.Layout {
	return models.Layout{ID: id, Children: children}
}

func recvRoot(t *testing.T, obs *recordingObserver) int {
	t.Helper()
	select {
	case id := <-obs.rootChanged:
		return id
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for root change")
		return 0
	}
}

func recvLayoutUpdated(t *testing.T, obs *recordingObserver) {
	t.Helper()
	select {
	case <-obs.layoutUpdated:
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for layout update")
	}
}

func drainNewNodes(obs *recordingObserver) []int {
	var ids []int
	for {
		select {
		case id := <-obs.newNodes:
			ids = append(ids, id)
		default:
			return ids
		}
	}
}

// waitTree polls the live tree through Inspect until cond holds.
func waitTree(t *testing.T, s *Session, cond func(tree *menu.Tree) bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		ok := false
		if err := s.Inspect(func(tree *menu.Tree) { ok = cond(tree) }); err != nil {
			return false
		}
		return ok
	}, waitFor, pollTick)
}

func allRealized(tree *menu.Tree, ids ...int) bool {
	for _, id := range ids {
		node := tree.Find(id)
		if node == nil || !node.Realized() {
			return false
		}
	}
	return true
}

// buildMenu drives the session to a settled mirror of 0 ── (1, 2).
func buildMenu(t *testing.T, s *Session, caller *fakeCaller, obs *recordingObserver) {
	t.Helper()

	caller.reply(1, layoutOf(0, layoutOf(1), layoutOf(2)))
	s.RequestRefresh()

	recvLayoutUpdated(t, obs)
	waitTree(t, s, func(tree *menu.Tree) bool {
		return allRealized(tree, 0, 1, 2)
	})
}

// ── Tests ────────────────────────────────────────────────────────────────────

// TestSession_InitialRefreshBuildsTree verifies that the first refresh
// mirrors the remote structure, realizes every node, and reports the new
// root.
func TestSession_InitialRefreshBuildsTree(t *testing.T) {
	s, caller, obs := newTestSession(t)

	buildMenu(t, s, caller, obs)

	assert.Equal(t, 0, recvRoot(t, obs))

	// State is copied out of the closure; failing an assertion on the loop
	// goroutine would take the loop down with it.
	var (
		rootSet  bool
		childIDs []int
		label    string
		revision uint32
	)
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		root := tree.Root()
		if root == nil {
			return
		}
		rootSet = true
		childIDs = root.ChildIDs()
		label = tree.Find(1).PropertyString(models.PropertyLabel)
		revision = s.localRevision
	}))
	require.True(t, rootSet)
	assert.Equal(t, []int{1, 2}, childIDs)
	assert.Equal(t, "item-1", label)
	assert.Equal(t, uint32(1), revision)

	require.Eventually(t, func() bool {
		return len(obs.newNodes) == 3
	}, waitFor, pollTick)
	assert.ElementsMatch(t, []int{0, 1, 2}, drainNewNodes(obs))

	// The whole structure went out as a single group fetch.
	assert.Equal(t, 1, caller.groupCallsFor(1))
}

// TestSession_ReorderKeepsNodeIdentity verifies that a layout moving existing
// ids around recycles the node instances instead of recreating them.
func TestSession_ReorderKeepsNodeIdentity(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)
	assert.Equal(t, 0, recvRoot(t, obs))

	var before1, before2 *menu.Node
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		before1 = tree.Find(1)
		before2 = tree.Find(2)
	}))

	caller.reply(2, layoutOf(0, layoutOf(2), layoutOf(1)))
	s.LayoutUpdated(2, models.RootID)
	recvLayoutUpdated(t, obs)

	var (
		childIDs       []int
		after1, after2 *menu.Node
	)
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		childIDs = tree.Root().ChildIDs()
		after1 = tree.Find(1)
		after2 = tree.Find(2)
	}))
	assert.Equal(t, []int{2, 1}, childIDs)
	assert.Same(t, before1, after1)
	assert.Same(t, before2, after2)

	// The root survived, so no further root change may be announced.
	select {
	case id := <-obs.rootChanged:
		t.Fatalf("unexpected root change to %d", id)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestSession_InsertFetchesNewNodeOnce verifies that a layout inserting one
// new id fetches its properties exactly once while recycling the rest.
func TestSession_InsertFetchesNewNodeOnce(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)
	drainNewNodes(obs)

	caller.reply(2, layoutOf(0, layoutOf(3), layoutOf(2), layoutOf(1)))
	s.LayoutUpdated(2, models.RootID)
	recvLayoutUpdated(t, obs)

	waitTree(t, s, func(tree *menu.Tree) bool {
		return allRealized(tree, 3)
	})

	var childIDs []int
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		childIDs = tree.Root().ChildIDs()
	}))
	assert.Equal(t, []int{3, 2, 1}, childIDs)
	assert.Equal(t, 1, caller.groupCallsFor(3))
	assert.Equal(t, []int{3}, drainNewNodes(obs))
}

// TestSession_PruneRemovesSubtree verifies that ids the layout dropped leave
// the tree together with their descendants.
func TestSession_PruneRemovesSubtree(t *testing.T) {
	s, caller, obs := newTestSession(t)

	caller.reply(1, layoutOf(0, layoutOf(1), layoutOf(2, layoutOf(5))))
	s.RequestRefresh()
	recvLayoutUpdated(t, obs)
	waitTree(t, s, func(tree *menu.Tree) bool {
		return allRealized(tree, 0, 1, 2, 5)
	})

	caller.reply(2, layoutOf(0, layoutOf(1)))
	s.LayoutUpdated(2, models.RootID)
	recvLayoutUpdated(t, obs)

	var (
		childIDs []int
		found2   bool
		found5   bool
	)
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		childIDs = tree.Root().ChildIDs()
		found2 = tree.Find(2) != nil
		found5 = tree.Find(5) != nil
	}))
	assert.Equal(t, []int{1}, childIDs)
	assert.False(t, found2)
	assert.False(t, found5)
}

// TestSession_MoveBetweenParentsKeepsNode verifies that an id moving from one
// parent to another within a single layout change survives the reconcile pass
// with its identity intact, in both sibling orders.
func TestSession_MoveBetweenParentsKeepsNode(t *testing.T) {
	s, caller, obs := newTestSession(t)

	caller.reply(1, layoutOf(0, layoutOf(1, layoutOf(5)), layoutOf(2)))
	s.RequestRefresh()
	recvLayoutUpdated(t, obs)
	waitTree(t, s, func(tree *menu.Tree) bool {
		return allRealized(tree, 0, 1, 2, 5)
	})
	drainNewNodes(obs)

	var before *menu.Node
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		before = tree.Find(5)
	}))
	require.NotNil(t, before)

	// 5 moves from 1 to 2. The later sibling reconciles first, so the new
	// parent sees the id while the old parent still lists it.
	caller.reply(2, layoutOf(0, layoutOf(1), layoutOf(2, layoutOf(5))))
	s.LayoutUpdated(2, models.RootID)
	recvLayoutUpdated(t, obs)

	assertMoved := func(fromID, toID int) {
		t.Helper()
		var (
			after        *menu.Node
			fromChildren []int
			toChildren   []int
		)
		require.NoError(t, s.Inspect(func(tree *menu.Tree) {
			after = tree.Find(5)
			fromChildren = tree.Find(fromID).ChildIDs()
			toChildren = tree.Find(toID).ChildIDs()
		}))
		require.Same(t, before, after, "node 5 must survive the move")
		assert.NotContains(t, fromChildren, 5)
		assert.Contains(t, toChildren, 5)
	}
	assertMoved(1, 2)

	// And back again. Now the old parent reconciles first, detaching 5
	// before the new parent claims it.
	caller.reply(3, layoutOf(0, layoutOf(1, layoutOf(5)), layoutOf(2)))
	s.LayoutUpdated(3, models.RootID)
	recvLayoutUpdated(t, obs)
	assertMoved(2, 1)

	// A recycled node is never announced as new again.
	assert.Empty(t, drainNewNodes(obs))
}

// TestSession_RevisionAnnouncedMidFlight verifies that a revision announced
// while a fetch is in flight triggers exactly one follow-up fetch.
func TestSession_RevisionAnnouncedMidFlight(t *testing.T) {
	s, caller, obs := newTestSession(t)

	s.RequestRefresh()
	require.Eventually(t, func() bool {
		return caller.layoutCallCount() == 1
	}, waitFor, pollTick)

	// A newer revision lands before the first fetch answers.
	s.LayoutUpdated(7, models.RootID)

	caller.reply(5, layoutOf(0, layoutOf(1)))
	caller.reply(7, layoutOf(0, layoutOf(1)))

	recvLayoutUpdated(t, obs)
	recvLayoutUpdated(t, obs)

	waitTree(t, s, func(*menu.Tree) bool {
		return s.localRevision == 7
	})
	assert.Equal(t, 2, caller.layoutCallCount())
	assert.Never(t, func() bool {
		return caller.layoutCallCount() > 2
	}, 150*time.Millisecond, pollTick)
}

// TestSession_DisconnectDiscardsStaleLayout verifies that a layout response
// arriving after the owner left the bus does not touch the tree, and that a
// later reappearance rebuilds it cleanly.
func TestSession_DisconnectDiscardsStaleLayout(t *testing.T) {
	s, caller, obs := newTestSession(t)

	s.RequestRefresh()
	require.Eventually(t, func() bool {
		return caller.layoutCallCount() == 1
	}, waitFor, pollTick)

	s.OwnerLost()
	caller.reply(3, layoutOf(0, layoutOf(1)))

	select {
	case <-obs.layoutUpdated:
		t.Fatal("stale layout response was applied")
	case <-time.After(150 * time.Millisecond):
	}
	var (
		rootSet  bool
		nodes    int
		revision uint32
	)
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		rootSet = tree.Root() != nil
		nodes = tree.Len()
		revision = s.localRevision
	}))
	assert.False(t, rootSet)
	assert.Zero(t, nodes)
	assert.Zero(t, revision)

	// The owner comes back; mirroring resumes from scratch. The refresh is
	// re-requested until it lands in case the stale completion was still
	// being drained when the owner reappeared.
	caller.reply(1, layoutOf(0, layoutOf(1), layoutOf(2)))
	s.OwnerAppeared()
	require.Eventually(t, func() bool {
		built := false
		if err := s.Inspect(func(tree *menu.Tree) { built = allRealized(tree, 0, 1, 2) }); err != nil {
			return false
		}
		if !built {
			s.RequestRefresh()
		}
		return built
	}, waitFor, 20*time.Millisecond)
}

// TestSession_OwnerLostDropsTree verifies the full teardown on connection
// loss: empty tree, reset revisions, and a nil root announcement.
func TestSession_OwnerLostDropsTree(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)
	assert.Equal(t, 0, recvRoot(t, obs))

	s.OwnerLost()

	assert.Equal(t, -1, recvRoot(t, obs))
	recvLayoutUpdated(t, obs)
	var (
		nodes         int
		local, remote uint32
	)
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		nodes = tree.Len()
		local = s.localRevision
		remote = s.remoteRevision
	}))
	assert.Zero(t, nodes)
	assert.Zero(t, local)
	assert.Zero(t, remote)
}

// TestSession_ItemPropertyUpdated verifies a pushed single-property change is
// applied without any fetch.
func TestSession_ItemPropertyUpdated(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)
	fetchesBefore := caller.groupCallsFor(1)

	s.ItemPropertyUpdated(1, models.PropertyEnabled, models.BoolVariant(false))

	waitTree(t, s, func(tree *menu.Tree) bool {
		v, ok := tree.Find(1).Property(models.PropertyEnabled)
		if !ok {
			return false
		}
		enabled, _ := v.AsBool()
		return !enabled
	})
	assert.Equal(t, fetchesBefore, caller.groupCallsFor(1))

	// Updates for ids the mirror does not hold are ignored.
	s.ItemPropertyUpdated(99, models.PropertyLabel, models.StringVariant("ghost"))
	var ghost bool
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		ghost = tree.Find(99) != nil
	}))
	assert.False(t, ghost)
}

// TestSession_ItemPropertiesUpdated_RemovalsFirst verifies that in a bulk
// change removals apply before changed pairs, so a key present in both ends
// up with its new value.
func TestSession_ItemPropertiesUpdated_RemovalsFirst(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)

	s.ItemPropertyUpdated(1, models.PropertyIconName, models.StringVariant("document-open"))
	s.ItemPropertiesUpdated(
		[]models.NodeProperties{
			{ID: 1, Properties: map[string]models.Variant{
				models.PropertyLabel: models.StringVariant("Recent Files"),
			}},
		},
		[]models.RemovedProperties{
			{ID: 1, Keys: []string{models.PropertyLabel, models.PropertyIconName}},
		},
	)

	waitTree(t, s, func(tree *menu.Tree) bool {
		return tree.Find(1).PropertyString(models.PropertyLabel) == "Recent Files"
	})
	var hasIcon bool
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		_, hasIcon = tree.Find(1).Property(models.PropertyIconName)
	}))
	assert.False(t, hasIcon)
}

// TestSession_ItemUpdatedRefetches verifies that an item invalidation fetches
// the node's properties again and merges the result.
func TestSession_ItemUpdatedRefetches(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)

	caller.setLabel(1, "renamed")
	s.ItemUpdated(1)

	waitTree(t, s, func(tree *menu.Tree) bool {
		return tree.Find(1).PropertyString(models.PropertyLabel) == "renamed"
	})
	assert.Equal(t, 2, caller.groupCallsFor(1))
}

// TestSession_TypeHandlerClaimsNode verifies handler dispatch by type tag and
// that a claimed node skips the generic new-node notification.
func TestSession_TypeHandlerClaimsNode(t *testing.T) {
	s, caller, obs := newTestSession(t)

	claimed := make(chan int, 16)
	err := s.AddTypeHandler("separator", TypeHandlerFunc(func(node, parent *menu.Node) bool {
		claimed <- node.ID()
		return true
	}))
	require.NoError(t, err)

	caller.extraProps[2] = map[string]models.Variant{
		models.PropertyType: models.StringVariant("separator"),
	}
	buildMenu(t, s, caller, obs)

	select {
	case id := <-claimed:
		assert.Equal(t, 2, id)
	case <-time.After(waitFor):
		t.Fatal("handler never saw the separator node")
	}
	assert.ElementsMatch(t, []int{0, 1}, drainNewNodes(obs))

	var realized bool
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		realized = tree.Find(2).Realized()
	}))
	assert.True(t, realized)
}

// TestSession_AddTypeHandler_Duplicate verifies a tag can only be claimed
// once per session.
func TestSession_AddTypeHandler_Duplicate(t *testing.T) {
	s, _, _ := newTestSession(t)

	handler := TypeHandlerFunc(func(node, parent *menu.Node) bool { return false })
	require.NoError(t, s.AddTypeHandler("separator", handler))

	err := s.AddTypeHandler("separator", handler)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeRegistered)
}

// TestSession_ItemActivationRequested verifies activation notifications reach
// the observer for known nodes only.
func TestSession_ItemActivationRequested(t *testing.T) {
	s, caller, obs := newTestSession(t)
	buildMenu(t, s, caller, obs)

	s.ItemActivationRequested(1, 99)

	select {
	case got := <-obs.activations:
		assert.Equal(t, activation{id: 1, timestamp: 99}, got)
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for activation")
	}

	s.ItemActivationRequested(42, 100)
	select {
	case got := <-obs.activations:
		t.Fatalf("unexpected activation for %d", got.id)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestSession_CloseReleasesHandlers verifies teardown gives type handlers
// their release call and that Close is idempotent.
func TestSession_CloseReleasesHandlers(t *testing.T) {
	caller := newFakeCaller()
	s := New(caller, nil, config.Timeouts{}, logger.Nop())

	released := make(chan struct{})
	require.NoError(t, s.AddTypeHandler("standard", &releasingHandler{released: released}))

	// Leave a fetch hanging to prove Close unblocks it.
	s.RequestRefresh()
	require.Eventually(t, func() bool {
		return caller.layoutCallCount() == 1
	}, waitFor, pollTick)

	require.NoError(t, s.Close())
	select {
	case <-released:
	case <-time.After(waitFor):
		t.Fatal("handler was never released")
	}
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Inspect(func(*menu.Tree) {}), ErrShutdown)
}

type releasingHandler struct {
	released chan struct{}
}

func (*releasingHandler) Realize(_, _ *menu.Node) bool { return false }

func (h *releasingHandler) Release() { close(h.released) }

// TestSession_GroupFetchFailureKeepsStructure verifies that nodes whose
// property fetch failed stay in the tree unrealized instead of poisoning the
// structure.
func TestSession_GroupFetchFailureKeepsStructure(t *testing.T) {
	s, caller, obs := newTestSession(t)
	caller.groupErr = errors.New("remote side went away")

	caller.reply(1, layoutOf(0, layoutOf(1)))
	s.RequestRefresh()
	recvLayoutUpdated(t, obs)

	require.Eventually(t, func() bool {
		return caller.groupCallsFor(0) == 1
	}, waitFor, pollTick)
	var found, realized bool
	require.NoError(t, s.Inspect(func(tree *menu.Tree) {
		node := tree.Find(1)
		if node == nil {
			return
		}
		found = true
		realized = node.Realized()
	}))
	require.True(t, found)
	assert.False(t, realized)
	assert.Empty(t, drainNewNodes(obs))
}
