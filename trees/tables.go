package trees

import (
	"math"
	"sort"
)

// NullNode marks the absence of a node reference, for example the
// parent of a root or an unmapped entry in a simplification map.
const NullNode = -1

// NullMutation marks a mutation with no parent mutation.
const NullMutation = -1

// NodeIsSample flags a node as a sample. Samples are the observed
// genomes; every marginal tree is interpreted relative to them.
const NodeIsSample uint32 = 1

// Node is one row of the node table. Time is the age of the node,
// increasing into the past, with samples conventionally at time 0.
// Metadata, when present, holds a JSON object.
type Node struct {
	Flags    uint32
	Time     float64
	Metadata []byte
}

// IsSample reports whether the node carries the sample flag.
func (n Node) IsSample() bool { return n.Flags&NodeIsSample != 0 }

// Edge records that Child inherits from Parent over the half-open
// genome interval [Left, Right).
type Edge struct {
	Left   float64
	Right  float64
	Parent int
	Child  int
}

// Site is a position on the genome with its ancestral state.
type Site struct {
	Position       float64
	AncestralState string
}

// Mutation places a state change at a site, above a node. Mutations at
// the same site apply in table order, later rows overriding earlier
// ones on the subtree they cover. Parent is the index of the mutation
// this one sits on top of, or NullMutation.
type Mutation struct {
	Site         int
	Node         int
	DerivedState string
	Parent       int
}

// TableCollection is the mutable form of a tree sequence. Converters
// append rows freely, then call Sort, optionally Simplify, and finally
// TreeSequence to validate and seal the tables.
type TableCollection struct {
	SequenceLength float64
	Nodes          []Node
	Edges          []Edge
	Sites          []Site
	Mutations      []Mutation
}

// NewTableCollection returns an empty collection over [0, sequenceLength).
func NewTableCollection(sequenceLength float64) *TableCollection {
	return &TableCollection{SequenceLength: sequenceLength}
}

// AddNode appends a node row and returns its id.
func (tc *TableCollection) AddNode(flags uint32, time float64, metadata []byte) int {
	tc.Nodes = append(tc.Nodes, Node{Flags: flags, Time: time, Metadata: metadata})
	return len(tc.Nodes) - 1
}

// AddEdge appends an edge row and returns its index.
func (tc *TableCollection) AddEdge(left, right float64, parent, child int) int {
	tc.Edges = append(tc.Edges, Edge{Left: left, Right: right, Parent: parent, Child: child})
	return len(tc.Edges) - 1
}

// AddSite appends a site row and returns its id.
func (tc *TableCollection) AddSite(position float64, ancestralState string) int {
	tc.Sites = append(tc.Sites, Site{Position: position, AncestralState: ancestralState})
	return len(tc.Sites) - 1
}

// AddMutation appends a mutation row with no parent mutation and
// returns its index.
func (tc *TableCollection) AddMutation(site, node int, derivedState string) int {
	tc.Mutations = append(tc.Mutations, Mutation{
		Site: site, Node: node, DerivedState: derivedState, Parent: NullMutation,
	})
	return len(tc.Mutations) - 1
}

// Samples returns the ids of all nodes with the sample flag, ascending.
func (tc *TableCollection) Samples() []int {
	var samples []int
	for u, n := range tc.Nodes {
		if n.IsSample() {
			samples = append(samples, u)
		}
	}
	return samples
}

// Sort puts the tables into canonical order: edges by parent time,
// then parent id, child id and left coordinate; sites by position;
// mutations by site, preserving their relative order within a site.
// Site ids referenced by mutations are remapped to follow the sites.
// Sort fails if an edge or mutation references a row that does not
// exist, since ordering is undefined for dangling references.
func (tc *TableCollection) Sort() error {
	for i, e := range tc.Edges {
		if e.Parent < 0 || e.Parent >= len(tc.Nodes) || e.Child < 0 || e.Child >= len(tc.Nodes) {
			return newError(KindTables, "edge %d references node outside the node table", i)
		}
	}
	sort.SliceStable(tc.Edges, func(i, j int) bool {
		a, b := tc.Edges[i], tc.Edges[j]
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
	})

	if len(tc.Sites) > 0 {
		order := make([]int, len(tc.Sites))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return tc.Sites[order[i]].Position < tc.Sites[order[j]].Position
		})
		siteMap := make([]int, len(tc.Sites))
		sorted := make([]Site, len(tc.Sites))
		for newID, oldID := range order {
			sorted[newID] = tc.Sites[oldID]
			siteMap[oldID] = newID
		}
		tc.Sites = sorted
		for i, m := range tc.Mutations {
			if m.Site < 0 || m.Site >= len(siteMap) {
				return newError(KindTables, "mutation %d references site outside the site table", i)
			}
			tc.Mutations[i].Site = siteMap[m.Site]
		}
	}
	if len(tc.Mutations) > 0 {
		order := make([]int, len(tc.Mutations))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return tc.Mutations[order[i]].Site < tc.Mutations[order[j]].Site
		})
		mutMap := make([]int, len(tc.Mutations))
		sorted := make([]Mutation, len(tc.Mutations))
		for newID, oldID := range order {
			sorted[newID] = tc.Mutations[oldID]
			mutMap[oldID] = newID
		}
		for i, m := range sorted {
			if m.Parent != NullMutation {
				if m.Parent < 0 || m.Parent >= len(mutMap) {
					return newError(KindTables, "mutation %d references parent mutation outside the table", order[i])
				}
				sorted[i].Parent = mutMap[m.Parent]
			}
		}
		tc.Mutations = sorted
	}
	return nil
}

func validCoordinate(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
