package trees

// Tree is a sweep iterator over the marginal trees of a TreeSequence.
// A fresh Tree points before the first tree; each call to Next advances
// to the next genome interval, updating the topology in place by
// removing the edges that end at the interval's left coordinate and
// inserting the ones that start there.
type Tree struct {
	ts         *TreeSequence
	parent     []int
	leftChild  []int
	rightChild []int
	leftSib    []int
	rightSib   []int

	index       int
	left, right float64
	nextInsert  int
	nextRemove  int
}

// NewTree returns an iterator positioned before the first tree.
func (ts *TreeSequence) NewTree() *Tree {
	n := ts.NumNodes()
	t := &Tree{
		ts:         ts,
		parent:     make([]int, n),
		leftChild:  make([]int, n),
		rightChild: make([]int, n),
		leftSib:    make([]int, n),
		rightSib:   make([]int, n),
		index:      -1,
	}
	for u := 0; u < n; u++ {
		t.parent[u] = NullNode
		t.leftChild[u] = NullNode
		t.rightChild[u] = NullNode
		t.leftSib[u] = NullNode
		t.rightSib[u] = NullNode
	}
	return t
}

// Next advances to the next tree, returning false once the sweep has
// passed the end of the genome.
func (t *Tree) Next() bool {
	if t.index == -1 {
		t.left = 0
	} else {
		t.left = t.right
	}
	if t.left >= t.ts.SequenceLength() {
		return false
	}
	edges := t.ts.tables.Edges
	m := len(edges)
	for t.nextRemove < m && edges[t.ts.removal[t.nextRemove]].Right == t.left {
		t.removeEdge(edges[t.ts.removal[t.nextRemove]])
		t.nextRemove++
	}
	for t.nextInsert < m && edges[t.ts.insertion[t.nextInsert]].Left == t.left {
		t.insertEdge(edges[t.ts.insertion[t.nextInsert]])
		t.nextInsert++
	}
	t.right = t.ts.SequenceLength()
	if t.nextInsert < m {
		if l := edges[t.ts.insertion[t.nextInsert]].Left; l < t.right {
			t.right = l
		}
	}
	if t.nextRemove < m {
		if r := edges[t.ts.removal[t.nextRemove]].Right; r < t.right {
			t.right = r
		}
	}
	t.index++
	return true
}

func (t *Tree) insertEdge(e Edge) {
	p, c := e.Parent, e.Child
	t.parent[c] = p
	t.leftSib[c] = t.rightChild[p]
	t.rightSib[c] = NullNode
	if t.rightChild[p] != NullNode {
		t.rightSib[t.rightChild[p]] = c
	} else {
		t.leftChild[p] = c
	}
	t.rightChild[p] = c
}

func (t *Tree) removeEdge(e Edge) {
	p, c := e.Parent, e.Child
	lsib, rsib := t.leftSib[c], t.rightSib[c]
	if lsib == NullNode {
		t.leftChild[p] = rsib
	} else {
		t.rightSib[lsib] = rsib
	}
	if rsib == NullNode {
		t.rightChild[p] = lsib
	} else {
		t.leftSib[rsib] = lsib
	}
	t.parent[c] = NullNode
	t.leftSib[c] = NullNode
	t.rightSib[c] = NullNode
}

// Index returns the position of the current tree along the genome,
// starting at 0. Before the first call to Next it returns -1.
func (t *Tree) Index() int { return t.index }

// Interval returns the half-open genome interval the current tree
// covers.
func (t *Tree) Interval() (left, right float64) { return t.left, t.right }

// Parent returns the parent of u in the current tree, or NullNode.
func (t *Tree) Parent(u int) int { return t.parent[u] }

// IsLeaf reports whether u has no children in the current tree.
func (t *Tree) IsLeaf(u int) bool { return t.leftChild[u] == NullNode }

// Children returns the children of u in sweep insertion order. For a
// single-tree sequence over sorted tables this is ascending node id.
func (t *Tree) Children(u int) []int {
	var children []int
	for c := t.leftChild[u]; c != NullNode; c = t.rightSib[c] {
		children = append(children, c)
	}
	return children
}

// Roots returns the roots of the current tree: the top of every path
// from a sample, in order of first reaching sample. An isolated sample
// is its own root.
func (t *Tree) Roots() []int {
	seen := make(map[int]bool)
	var roots []int
	for _, s := range t.ts.samples {
		u := s
		for t.parent[u] != NullNode {
			u = t.parent[u]
		}
		if !seen[u] {
			seen[u] = true
			roots = append(roots, u)
		}
	}
	return roots
}

// Root returns the single root of the current tree, failing if the
// tree has zero or several roots.
func (t *Tree) Root() (int, error) {
	roots := t.Roots()
	if len(roots) != 1 {
		return NullNode, newError(KindTopology,
			"tree %d over [%v, %v) has %d roots, need exactly 1",
			t.index, t.left, t.right, len(roots))
	}
	return roots[0], nil
}

// Samples returns the sample nodes in the subtree rooted at u,
// including u itself when it is a sample.
func (t *Tree) Samples(u int) []int {
	var samples []int
	stack := []int{u}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.ts.tables.Nodes[v].IsSample() {
			samples = append(samples, v)
		}
		for c := t.rightChild[v]; c != NullNode; c = t.leftSib[c] {
			stack = append(stack, c)
		}
	}
	return samples
}
