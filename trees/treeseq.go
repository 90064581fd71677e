package trees

import (
	"sort"
)

// TreeSequence is a validated, immutable tree sequence. It keeps a
// private copy of the tables it was sealed from together with the edge
// insertion and removal orders used by the Tree iterator.
type TreeSequence struct {
	tables      TableCollection
	samples     []int
	insertion   []int
	removal     []int
	breakpoints []float64
}

// TreeSequence validates the collection and seals it. The tables must
// already be in the order produced by Sort; TreeSequence does not
// reorder rows, so that sealing never changes ids under the caller.
func (tc *TableCollection) TreeSequence() (*TreeSequence, error) {
	if err := tc.validate(); err != nil {
		return nil, err
	}
	ts := &TreeSequence{tables: tc.clone()}
	ts.samples = ts.tables.Samples()
	ts.buildIndexes()
	return ts, nil
}

func (tc *TableCollection) validate() error {
	if !validCoordinate(tc.SequenceLength) || tc.SequenceLength <= 0 {
		return newError(KindTables, "sequence length must be positive, got %v", tc.SequenceLength)
	}
	for u, n := range tc.Nodes {
		if !validCoordinate(n.Time) {
			return newError(KindTables, "node %d has non-finite time", u)
		}
	}
	numNodes := len(tc.Nodes)
	for i, e := range tc.Edges {
		if e.Parent < 0 || e.Parent >= numNodes {
			return newError(KindTables, "edge %d references unknown parent %d", i, e.Parent)
		}
		if e.Child < 0 || e.Child >= numNodes {
			return newError(KindTables, "edge %d references unknown child %d", i, e.Child)
		}
		if e.Parent == e.Child {
			return newError(KindTables, "edge %d has node %d as both parent and child", i, e.Parent)
		}
		if !validCoordinate(e.Left) || !validCoordinate(e.Right) {
			return newError(KindTables, "edge %d has non-finite coordinates", i)
		}
		if e.Left < 0 || e.Right > tc.SequenceLength || e.Left >= e.Right {
			return newError(KindTables, "edge %d interval [%v, %v) is not within [0, %v)",
				i, e.Left, e.Right, tc.SequenceLength)
		}
		if tc.Nodes[e.Child].Time >= tc.Nodes[e.Parent].Time {
			return newError(KindTables, "edge %d child %d is not younger than parent %d",
				i, e.Child, e.Parent)
		}
		if i > 0 && edgeBefore(tc, tc.Edges[i], tc.Edges[i-1]) {
			return newError(KindTables, "edges are not sorted at row %d; call Sort first", i)
		}
	}
	if err := tc.validateChildIntervals(); err != nil {
		return err
	}
	for i, s := range tc.Sites {
		if !validCoordinate(s.Position) || s.Position < 0 || s.Position >= tc.SequenceLength {
			return newError(KindTables, "site %d position %v is not within [0, %v)",
				i, s.Position, tc.SequenceLength)
		}
		if i > 0 && s.Position <= tc.Sites[i-1].Position {
			return newError(KindTables, "site positions must be sorted and unique, row %d", i)
		}
	}
	for i, m := range tc.Mutations {
		if m.Site < 0 || m.Site >= len(tc.Sites) {
			return newError(KindTables, "mutation %d references unknown site %d", i, m.Site)
		}
		if m.Node < 0 || m.Node >= numNodes {
			return newError(KindTables, "mutation %d references unknown node %d", i, m.Node)
		}
		if i > 0 && m.Site < tc.Mutations[i-1].Site {
			return newError(KindTables, "mutations must be sorted by site, row %d", i)
		}
		if m.Parent != NullMutation {
			if m.Parent < 0 || m.Parent >= i {
				return newError(KindTables, "mutation %d must come after its parent %d", i, m.Parent)
			}
			if tc.Mutations[m.Parent].Site != m.Site {
				return newError(KindTables, "mutation %d and its parent are at different sites", i)
			}
		}
	}
	return nil
}

// edgeBefore reports whether a sorts strictly before b in canonical
// edge order.
func edgeBefore(tc *TableCollection, a, b Edge) bool {
	at, bt := tc.Nodes[a.Parent].Time, tc.Nodes[b.Parent].Time
	if at != bt {
		return at < bt
	}
	if a.Parent != b.Parent {
		return a.Parent < b.Parent
	}
	if a.Child != b.Child {
		return a.Child < b.Child
	}
	return a.Left < b.Left
}

// validateChildIntervals rejects tables where some genome position
// gives a child two parents at once.
func (tc *TableCollection) validateChildIntervals() error {
	byChild := make([]Edge, len(tc.Edges))
	copy(byChild, tc.Edges)
	sort.Slice(byChild, func(i, j int) bool {
		if byChild[i].Child != byChild[j].Child {
			return byChild[i].Child < byChild[j].Child
		}
		return byChild[i].Left < byChild[j].Left
	})
	for i := 1; i < len(byChild); i++ {
		prev, cur := byChild[i-1], byChild[i]
		if cur.Child == prev.Child && cur.Left < prev.Right {
			return newError(KindTables, "node %d has two parents over [%v, %v)",
				cur.Child, cur.Left, min(prev.Right, cur.Right))
		}
	}
	return nil
}

func (tc *TableCollection) clone() TableCollection {
	out := TableCollection{
		SequenceLength: tc.SequenceLength,
		Nodes:          make([]Node, len(tc.Nodes)),
		Edges:          append([]Edge(nil), tc.Edges...),
		Sites:          append([]Site(nil), tc.Sites...),
		Mutations:      append([]Mutation(nil), tc.Mutations...),
	}
	for i, n := range tc.Nodes {
		out.Nodes[i] = n
		if n.Metadata != nil {
			out.Nodes[i].Metadata = append([]byte(nil), n.Metadata...)
		}
	}
	return out
}

// buildIndexes computes the edge insertion order (by left coordinate,
// then parent time so that older nodes are wired in above younger
// ones), the removal order (by right coordinate, reversed tie-break)
// and the tree breakpoints.
func (ts *TreeSequence) buildIndexes() {
	tc := &ts.tables
	n := len(tc.Edges)
	ts.insertion = make([]int, n)
	ts.removal = make([]int, n)
	for i := 0; i < n; i++ {
		ts.insertion[i] = i
		ts.removal[i] = i
	}
	sort.Slice(ts.insertion, func(i, j int) bool {
		a, b := tc.Edges[ts.insertion[i]], tc.Edges[ts.insertion[j]]
		if a.Left != b.Left {
			return a.Left < b.Left
		}
		at, bt := tc.Nodes[a.Parent].Time, tc.Nodes[b.Parent].Time
		if at != bt {
			return at < bt
		}
		if a.Parent != b.Parent {
			return a.Parent < b.Parent
		}
		return a.Child < b.Child
	})
	sort.Slice(ts.removal, func(i, j int) bool {
		a, b := tc.Edges[ts.removal[i]], tc.Edges[ts.removal[j]]
		if a.Right != b.Right {
			return a.Right < b.Right
		}
		at, bt := tc.Nodes[a.Parent].Time, tc.Nodes[b.Parent].Time
		if at != bt {
			return at > bt
		}
		if a.Parent != b.Parent {
			return a.Parent > b.Parent
		}
		return a.Child > b.Child
	})

	coords := map[float64]struct{}{0: {}, tc.SequenceLength: {}}
	for _, e := range tc.Edges {
		coords[e.Left] = struct{}{}
		coords[e.Right] = struct{}{}
	}
	ts.breakpoints = make([]float64, 0, len(coords))
	for x := range coords {
		ts.breakpoints = append(ts.breakpoints, x)
	}
	sort.Float64s(ts.breakpoints)
}

// SequenceLength returns the length of the genome interval.
func (ts *TreeSequence) SequenceLength() float64 { return ts.tables.SequenceLength }

// NumNodes returns the number of node rows.
func (ts *TreeSequence) NumNodes() int { return len(ts.tables.Nodes) }

// NumEdges returns the number of edge rows.
func (ts *TreeSequence) NumEdges() int { return len(ts.tables.Edges) }

// NumSites returns the number of site rows.
func (ts *TreeSequence) NumSites() int { return len(ts.tables.Sites) }

// NumMutations returns the number of mutation rows.
func (ts *TreeSequence) NumMutations() int { return len(ts.tables.Mutations) }

// NumSamples returns the number of sample nodes.
func (ts *TreeSequence) NumSamples() int { return len(ts.samples) }

// NumTrees returns the number of marginal trees along the genome.
func (ts *TreeSequence) NumTrees() int { return len(ts.breakpoints) - 1 }

// Samples returns the sample node ids in ascending order.
func (ts *TreeSequence) Samples() []int {
	return append([]int(nil), ts.samples...)
}

// Breakpoints returns the positions where trees change, including 0
// and the sequence length.
func (ts *TreeSequence) Breakpoints() []float64 {
	return append([]float64(nil), ts.breakpoints...)
}

// Node returns the node row with the given id.
func (ts *TreeSequence) Node(id int) Node { return ts.tables.Nodes[id] }

// Edge returns the edge row at the given index.
func (ts *TreeSequence) Edge(i int) Edge { return ts.tables.Edges[i] }

// Site returns the site row with the given id.
func (ts *TreeSequence) Site(id int) Site { return ts.tables.Sites[id] }

// Mutation returns the mutation row at the given index.
func (ts *TreeSequence) Mutation(i int) Mutation { return ts.tables.Mutations[i] }

// Tables returns a deep copy of the underlying tables, suitable for
// modification and resealing.
func (ts *TreeSequence) Tables() *TableCollection {
	tc := ts.tables.clone()
	return &tc
}
