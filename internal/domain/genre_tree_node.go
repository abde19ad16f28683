package domain

// NewGenreID is the placeholder ID of a tree node whose genre is not yet persisted.
const NewGenreID = -1

// GenreTreeNode is one genre's outgoing edges in the three relations.
type GenreTreeNode struct {
	ID          int
	Name        string
	Parents     IDSet
	DerivedFrom IDSet
	Influences  IDSet
}

// NewGenreTreeNode validates the cross-relation rules for a single genre.
// Checks run in a fixed order and stop at the first violation:
// parents vs derived-from, then derived-from vs influences, then self-influence.
func NewGenreTreeNode(id int, name string, parents, derivedFrom, influences IDSet) (*GenreTreeNode, error) {
	n := &GenreTreeNode{
		ID:          id,
		Name:        name,
		Parents:     orEmpty(parents).Clone(),
		DerivedFrom: orEmpty(derivedFrom).Clone(),
		Influences:  orEmpty(influences).Clone(),
	}

	if shared, ok := n.DerivedFrom.FirstShared(n.Parents); ok {
		return nil, &DerivedChildError{ID: shared}
	}
	if shared, ok := n.DerivedFrom.FirstShared(n.Influences); ok {
		return nil, &DerivedInfluenceError{ID: shared}
	}
	if n.Influences.Has(id) {
		return nil, &SelfInfluenceError{ID: id}
	}
	return n, nil
}

// WithID returns a copy of n under a new ID, used once a created genre is persisted.
func (n *GenreTreeNode) WithID(id int) *GenreTreeNode {
	next := n.clone()
	next.ID = id
	return next
}

// RelationIDs returns every genre referenced by any of the node's edges.
func (n *GenreTreeNode) RelationIDs() IDSet {
	all := n.Parents.Clone()
	for id := range n.DerivedFrom {
		all.Add(id)
	}
	for id := range n.Influences {
		all.Add(id)
	}
	return all
}

func (n *GenreTreeNode) clone() *GenreTreeNode {
	return &GenreTreeNode{
		ID:          n.ID,
		Name:        n.Name,
		Parents:     n.Parents.Clone(),
		DerivedFrom: n.DerivedFrom.Clone(),
		Influences:  n.Influences.Clone(),
	}
}

func orEmpty(s IDSet) IDSet {
	if s == nil {
		return IDSet{}
	}
	return s
}
