package domain

import (
	"iter"
	"slices"
	"strings"
)

// NodeState tracks what a command did to a tree node, so the store can flush
// the whole mutation pass as one batch.
type NodeState uint8

// Node states. Created, updated and deleted are terminal for one command.
const (
	NodeUnchanged NodeState = iota
	NodeCreated
	NodeUpdated
	NodeDeleted
)

func (s NodeState) String() string {
	switch s {
	case NodeCreated:
		return "created"
	case NodeUpdated:
		return "updated"
	case NodeDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// CyclePathSeparator joins genre names in a GenreCycleError path.
const CyclePathSeparator = " → "

type treeSlot struct {
	node  *GenreTreeNode
	state NodeState
}

// GenreTree is the in-memory graph over every genre. It is loaded whole at the
// start of a command, mutated, flushed through Changes, and discarded.
//
// Nodes live in an arena addressed by slot; deleted nodes keep their slot so
// the store can still see what to remove.
type GenreTree struct {
	slots []treeSlot
	index map[int]int // genre ID -> slot
}

// NewGenreTree builds a tree from persisted nodes. All nodes start unchanged.
func NewGenreTree(nodes ...*GenreTreeNode) *GenreTree {
	t := &GenreTree{
		slots: make([]treeSlot, 0, len(nodes)),
		index: make(map[int]int, len(nodes)),
	}
	for _, n := range nodes {
		t.put(n.clone(), NodeUnchanged)
	}
	return t
}

// GenreDeletion describes what DeleteGenre removed.
type GenreDeletion struct {
	// Node is the deleted genre's edges as they were before removal.
	Node *GenreTreeNode
	// Children are the direct children that were re-parented, ascending.
	Children []int
}

// Has reports whether id is a live (non-deleted) node.
func (t *GenreTree) Has(id int) bool {
	_, ok := t.live(id)
	return ok
}

// Node returns a copy of a live node.
func (t *GenreTree) Node(id int) (*GenreTreeNode, bool) {
	slot, ok := t.live(id)
	if !ok {
		return nil, false
	}
	return slot.node.clone(), true
}

// Nodes returns copies of all live nodes in ascending ID order.
func (t *GenreTree) Nodes() []*GenreTreeNode {
	out := make([]*GenreTreeNode, 0, len(t.slots))
	for _, slot := range t.slots {
		if slot.state != NodeDeleted {
			out = append(out, slot.node.clone())
		}
	}
	slices.SortFunc(out, func(a, b *GenreTreeNode) int { return a.ID - b.ID })
	return out
}

// Parents returns the parent IDs of a live node.
func (t *GenreTree) Parents(id int) IDSet {
	if slot, ok := t.live(id); ok {
		return slot.node.Parents.Clone()
	}
	return IDSet{}
}

// DerivedFrom returns the derived-from IDs of a live node.
func (t *GenreTree) DerivedFrom(id int) IDSet {
	if slot, ok := t.live(id); ok {
		return slot.node.DerivedFrom.Clone()
	}
	return IDSet{}
}

// Influences returns the influence IDs of a live node.
func (t *GenreTree) Influences(id int) IDSet {
	if slot, ok := t.live(id); ok {
		return slot.node.Influences.Clone()
	}
	return IDSet{}
}

// Children returns the IDs of live nodes that list id as a parent, ascending.
func (t *GenreTree) Children(id int) []int {
	var children []int
	for _, slot := range t.slots {
		if slot.state != NodeDeleted && slot.node.Parents.Has(id) {
			children = append(children, slot.node.ID)
		}
	}
	slices.Sort(children)
	return children
}

// Ancestors returns every transitive parent of id in breadth-first order,
// visiting parents of the same node in ascending ID order.
func (t *GenreTree) Ancestors(id int) []int {
	var out []int
	seen := IDSet{id: {}}
	queue := []int{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range t.Parents(cur).Sorted() {
			if seen.Has(p) || !t.Has(p) {
				continue
			}
			seen.Add(p)
			out = append(out, p)
			queue = append(queue, p)
		}
	}
	return out
}

// Missing returns the IDs in ids that are not live nodes, ascending.
func (t *GenreTree) Missing(ids IDSet) []int {
	var missing []int
	for _, id := range ids.Sorted() {
		if !t.Has(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// InsertGenre adds a new node and marks it created.
func (t *GenreTree) InsertGenre(node *GenreTreeNode) {
	t.put(node.clone(), NodeCreated)
}

// UpdateGenre replaces a node's edges after checking that its proposed parents
// do not close a loop in the hierarchy. On error the tree is left untouched.
func (t *GenreTree) UpdateGenre(node *GenreTreeNode) error {
	slot, ok := t.live(node.ID)
	if !ok {
		return &GenreNotFoundError{ID: node.ID}
	}
	if path := t.findCycle(node); path != nil {
		return &GenreCycleError{Path: t.describePath(path, node)}
	}

	i := t.index[node.ID]
	t.slots[i].node = node.clone()
	t.slots[i].state = touched(slot.state)
	return nil
}

// DeleteGenre removes a node and promotes its direct children to the removed
// node's parents. Derived-from and influence edges pointing at the removed node
// are dropped from the remaining nodes without marking them.
//
// A promoted parent that the child already lists as derived-from is skipped,
// so the child keeps satisfying the parent/derived-from rule.
func (t *GenreTree) DeleteGenre(id int) (*GenreDeletion, error) {
	slot, ok := t.live(id)
	if !ok {
		return nil, &GenreNotFoundError{ID: id}
	}
	removed := slot.node.clone()
	children := t.Children(id)

	t.slots[t.index[id]].state = NodeDeleted

	for _, childID := range children {
		i := t.index[childID]
		child := t.slots[i].node
		child.Parents.Remove(id)
		for p := range removed.Parents {
			if p != childID && !child.DerivedFrom.Has(p) {
				child.Parents.Add(p)
			}
		}
		t.slots[i].state = touched(t.slots[i].state)
	}

	for i := range t.slots {
		if t.slots[i].state == NodeDeleted {
			continue
		}
		t.slots[i].node.DerivedFrom.Remove(id)
		t.slots[i].node.Influences.Remove(id)
	}

	return &GenreDeletion{Node: removed, Children: children}, nil
}

// Changes yields every node a command touched, in slot order.
// Deleted nodes are yielded with their last known edges.
func (t *GenreTree) Changes() iter.Seq2[NodeState, *GenreTreeNode] {
	return func(yield func(NodeState, *GenreTreeNode) bool) {
		for _, slot := range t.slots {
			if slot.state == NodeUnchanged {
				continue
			}
			if !yield(slot.state, slot.node.clone()) {
				return
			}
		}
	}
}

// State returns the state of id during the current command.
func (t *GenreTree) State(id int) (NodeState, bool) {
	i, ok := t.index[id]
	if !ok {
		return NodeUnchanged, false
	}
	return t.slots[i].state, true
}

// findCycle searches breadth-first from the proposed node up through its
// ancestors for a path back to the node, using the proposed parents for the
// node itself. Parents are expanded in ascending ID order, so among equally
// short cycles the one through smaller IDs is reported. Returns the IDs on the
// path, starting and ending with the node, or nil when there is no cycle.
func (t *GenreTree) findCycle(proposed *GenreTreeNode) []int {
	start := proposed.ID
	parentsOf := func(id int) []int {
		if id == start {
			return proposed.Parents.Sorted()
		}
		return t.Parents(id).Sorted()
	}

	prev := map[int]int{}
	seen := IDSet{start: {}}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range parentsOf(cur) {
			if p == start {
				path := []int{start}
				for at := cur; at != start; at = prev[at] {
					path = append(path, at)
				}
				// path holds start, then cur back down to the first hop; flip the tail.
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if seen.Has(p) || !t.Has(p) {
				continue
			}
			seen.Add(p)
			prev[p] = cur
			queue = append(queue, p)
		}
	}
	return nil
}

func (t *GenreTree) describePath(path []int, proposed *GenreTreeNode) string {
	names := make([]string, len(path))
	for i, id := range path {
		if id == proposed.ID {
			names[i] = proposed.Name
			continue
		}
		names[i] = t.slots[t.index[id]].node.Name
	}
	return strings.Join(names, CyclePathSeparator)
}

func (t *GenreTree) live(id int) (treeSlot, bool) {
	i, ok := t.index[id]
	if !ok || t.slots[i].state == NodeDeleted {
		return treeSlot{}, false
	}
	return t.slots[i], true
}

func (t *GenreTree) put(node *GenreTreeNode, state NodeState) {
	if i, ok := t.index[node.ID]; ok {
		t.slots[i] = treeSlot{node: node, state: state}
		return
	}
	t.index[node.ID] = len(t.slots)
	t.slots = append(t.slots, treeSlot{node: node, state: state})
}

// touched moves a node into the updated state unless it was created in the
// same command, in which case the store still needs a plain insert.
func touched(s NodeState) NodeState {
	if s == NodeCreated {
		return NodeCreated
	}
	return NodeUpdated
}
