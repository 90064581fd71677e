package tsconvert

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tskit-dev/tsconvert/trees"
)

// FromOrientedForest builds a tree sequence from the oriented forest
// history produced by spatial simulators such as discsim and ercs.
//
// pi and tau hold one parent array and one time array per locus, with
// locus l covering the genome interval [l, l+1). Entries are 1-based:
// node 0 is the root sentinel, nodes 1..n are the samples, and higher
// entries are ancestors private to that locus. pi[l][j] is the parent
// of node j at locus l and tau[l][j] its time; entries 0 of both
// arrays are ignored. Samples are remapped to ids 0..n-1. Lineages not
// ancestral to any sample are dropped by simplification.
func FromOrientedForest(n int, pi [][]int, tau [][]float64) (*trees.TreeSequence, error) {
	if n < 1 {
		return nil, fmt.Errorf("oriented forest: need at least one sample, got %d", n)
	}
	if len(pi) == 0 {
		return nil, fmt.Errorf("oriented forest: no loci")
	}
	if len(tau) != len(pi) {
		return nil, fmt.Errorf("oriented forest: %d parent arrays but %d time arrays",
			len(pi), len(tau))
	}
	for l := range pi {
		if len(tau[l]) != len(pi[l]) {
			return nil, fmt.Errorf("oriented forest: locus %d: pi has %d entries but tau has %d",
				l, len(pi[l]), len(tau[l]))
		}
		if len(pi[l]) < n+1 {
			return nil, fmt.Errorf("oriented forest: locus %d: need entries for nodes 0..%d, got %d",
				l, n, len(pi[l]))
		}
	}

	tc := trees.NewTableCollection(float64(len(pi)))
	for j := 0; j < n; j++ {
		tc.AddNode(trees.NodeIsSample, tau[0][j+1], nil)
	}
	// Ancestor times need not be unique, so ancestors are fresh nodes
	// per locus rather than shared by time; simplification merges
	// nothing but does drop the unused ones.
	for l := range pi {
		nodeMap := make([]int, len(pi[l]))
		for j := 1; j <= n; j++ {
			nodeMap[j] = j - 1
		}
		for j := n + 1; j < len(pi[l]); j++ {
			nodeMap[j] = tc.AddNode(0, tau[l][j], nil)
		}
		for j := 1; j < len(pi[l]); j++ {
			p := pi[l][j]
			if p == 0 {
				continue
			}
			if p < 1 || p >= len(pi[l]) {
				return nil, fmt.Errorf("oriented forest: locus %d: node %d has parent %d outside 1..%d",
					l, j, p, len(pi[l])-1)
			}
			tc.AddEdge(float64(l), float64(l+1), nodeMap[p], nodeMap[j])
		}
	}

	if err := tc.Sort(); err != nil {
		return nil, err
	}
	if _, err := tc.Simplify(); err != nil {
		return nil, err
	}
	return tc.TreeSequence()
}

// orientedForestDoc is the JSON form accepted by the registry decoder.
type orientedForestDoc struct {
	N   int         `json:"n"`
	Pi  [][]int     `json:"pi"`
	Tau [][]float64 `json:"tau"`
}

// DecodeOrientedForest reads the JSON rendition of an oriented
// forest, {"n": ..., "pi": [[...]], "tau": [[...]]}, and converts it.
func DecodeOrientedForest(r io.Reader) (*trees.TreeSequence, error) {
	var doc orientedForestDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("oriented forest: %w", err)
	}
	return FromOrientedForest(doc.N, doc.Pi, doc.Tau)
}
