package trees

import "sort"

// ancestrySegment maps a genome interval of an input node to the
// output node representing that node's ancestral material there.
type ancestrySegment struct {
	left, right float64
	node        int
}

// Simplify reduces the tables to the history of their samples. Samples
// become nodes 0..n-1 in input id order; nodes carrying no ancestral
// material and nodes that are unary everywhere disappear; abutting
// edge intervals for the same parent-child pair are squashed. Sites
// are kept as they are. The tables are modified in place and the
// returned slice maps input node ids to output ids, with NullNode for
// nodes that were removed.
//
// The edges must be in canonical sorted order, and tables carrying
// mutations cannot be simplified since mutation nodes would dangle.
func (tc *TableCollection) Simplify() ([]int, error) {
	if len(tc.Mutations) > 0 {
		return nil, newError(KindSimplify, "tables with mutations cannot be simplified")
	}
	numNodes := len(tc.Nodes)
	for i, e := range tc.Edges {
		if e.Parent < 0 || e.Parent >= numNodes || e.Child < 0 || e.Child >= numNodes {
			return nil, newError(KindSimplify, "edge %d references node outside the node table", i)
		}
		if tc.Nodes[e.Child].Time >= tc.Nodes[e.Parent].Time {
			return nil, newError(KindSimplify, "edge %d child %d is not younger than parent %d",
				i, e.Child, e.Parent)
		}
		if i > 0 && edgeBefore(tc, tc.Edges[i], tc.Edges[i-1]) {
			return nil, newError(KindSimplify, "edges are not sorted; call Sort before Simplify")
		}
	}
	s := newSimplifier(tc)
	s.run()
	return s.nodeMap, nil
}

type simplifier struct {
	in       *TableCollection
	nodeMap  []int
	outNodes []Node
	outEdges []Edge
	ancestry [][]ancestrySegment
	buffer   []Edge
}

func newSimplifier(tc *TableCollection) *simplifier {
	s := &simplifier{
		in:       tc,
		nodeMap:  make([]int, len(tc.Nodes)),
		ancestry: make([][]ancestrySegment, len(tc.Nodes)),
	}
	for u := range s.nodeMap {
		s.nodeMap[u] = NullNode
	}
	for u, n := range tc.Nodes {
		if n.IsSample() {
			id := len(s.outNodes)
			s.nodeMap[u] = id
			s.outNodes = append(s.outNodes, n)
			s.ancestry[u] = []ancestrySegment{{0, tc.SequenceLength, id}}
		}
	}
	return s
}

func (s *simplifier) run() {
	edges := s.in.Edges
	for i := 0; i < len(edges); {
		j := i
		for j < len(edges) && edges[j].Parent == edges[i].Parent {
			j++
		}
		s.mergeAncestors(edges[i].Parent, edges[i:j])
		i = j
	}
	sort.SliceStable(s.outEdges, func(i, j int) bool {
		a, b := s.outEdges[i], s.outEdges[j]
		at, bt := s.outNodes[a.Parent].Time, s.outNodes[b.Parent].Time
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
	})
	s.in.Nodes = s.outNodes
	s.in.Edges = s.outEdges
}

// mergeAncestors combines the ancestral material inherited by parent p
// through its edge group. Intervals where a single lineage passes
// through a non-sample parent stay mapped to that lineage; intervals
// where lineages meet, or where the parent is itself a sample, are
// bound to the parent's output node and emit edges.
func (s *simplifier) mergeAncestors(p int, group []Edge) {
	var segs []ancestrySegment
	for _, e := range group {
		for _, x := range s.ancestry[e.Child] {
			l, r := max(x.left, e.Left), min(x.right, e.Right)
			if l < r {
				segs = append(segs, ancestrySegment{l, r, x.node})
			}
		}
	}
	if len(segs) == 0 {
		return
	}

	points := make([]float64, 0, 2*len(segs))
	for _, x := range segs {
		points = append(points, x.left, x.right)
	}
	sort.Float64s(points)
	points = dedupeFloats(points)

	isSample := s.in.Nodes[p].IsSample()
	outP := s.nodeMap[p]
	var mapped []ancestrySegment
	var cover []int
	for i := 0; i+1 < len(points); i++ {
		l, r := points[i], points[i+1]
		cover = cover[:0]
		for k, x := range segs {
			if x.left <= l && x.right >= r {
				cover = append(cover, k)
			}
		}
		if len(cover) == 0 {
			continue
		}
		if len(cover) == 1 && !isSample {
			mapped = append(mapped, ancestrySegment{l, r, segs[cover[0]].node})
			continue
		}
		if outP == NullNode {
			outP = len(s.outNodes)
			s.nodeMap[p] = outP
			s.outNodes = append(s.outNodes, s.in.Nodes[p])
		}
		for _, k := range cover {
			s.buffer = append(s.buffer, Edge{Left: l, Right: r, Parent: outP, Child: segs[k].node})
		}
		mapped = append(mapped, ancestrySegment{l, r, outP})
	}
	// A sample keeps representing itself over the whole genome, so its
	// ancestry is never replaced by what it inherited.
	if !isSample {
		s.ancestry[p] = squashSegments(mapped)
	}
	s.flushEdges()
}

// flushEdges squashes the buffered edges for one parent and moves them
// to the output table.
func (s *simplifier) flushEdges() {
	if len(s.buffer) == 0 {
		return
	}
	sort.Slice(s.buffer, func(i, j int) bool {
		if s.buffer[i].Child != s.buffer[j].Child {
			return s.buffer[i].Child < s.buffer[j].Child
		}
		return s.buffer[i].Left < s.buffer[j].Left
	})
	for _, e := range s.buffer {
		n := len(s.outEdges)
		if n > 0 {
			last := &s.outEdges[n-1]
			if last.Parent == e.Parent && last.Child == e.Child && last.Right == e.Left {
				last.Right = e.Right
				continue
			}
		}
		s.outEdges = append(s.outEdges, e)
	}
	s.buffer = s.buffer[:0]
}

func squashSegments(segs []ancestrySegment) []ancestrySegment {
	out := segs[:0]
	for _, x := range segs {
		if n := len(out); n > 0 && out[n-1].node == x.node && out[n-1].right == x.left {
			out[n-1].right = x.right
			continue
		}
		out = append(out, x)
	}
	return out
}

func dedupeFloats(xs []float64) []float64 {
	out := xs[:0]
	for i, x := range xs {
		if i == 0 || x != xs[i-1] {
			out = append(out, x)
		}
	}
	return out
}
