package tsconvert

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tskit-dev/tsconvert/trees"
)

// FromMs builds a tree sequence from ms-style tree output: one
// `[span]newick` line per marginal tree, after any leading lines of
// other output. Leaf labels are 1-based sample numbers. Internal nodes
// are matched across trees by their age, so within one tree all
// internal ages must be distinct. The result is simplified, which
// squashes the edges of identical adjacent trees.
func FromMs(data string) (*trees.TreeSequence, error) {
	lines := strings.Split(data, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	first := 0
	for first < len(lines) && !strings.HasPrefix(lines[first], "[") {
		first++
	}
	if first == len(lines) {
		return nil, fmt.Errorf("ms: malformed input: no lines starting with [")
	}

	type msTree struct {
		span float64
		root *newickNode
		line int
	}
	var parsed []msTree
	sequenceLength := 0.0
	for i := first; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			break
		}
		lineno := i + 1
		if !strings.HasPrefix(line, "[") {
			return nil, fmt.Errorf("ms: line %d not in ms format: missing [", lineno)
		}
		end := strings.IndexByte(line, ']')
		if end < 0 {
			return nil, fmt.Errorf("ms: line %d not in ms format: missing ]", lineno)
		}
		span, err := strconv.ParseFloat(line[1:end], 64)
		if err != nil {
			return nil, fmt.Errorf("ms: line %d: bad interval length %q", lineno, line[1:end])
		}
		if span <= 0 {
			return nil, fmt.Errorf("ms: line %d: interval length must be positive", lineno)
		}
		root, err := parseNewick(line[end+1:])
		if err != nil {
			return nil, fmt.Errorf("ms: line %d: %w", lineno, err)
		}
		if err := computeAges(root); err != nil {
			return nil, fmt.Errorf("ms: line %d: %w", lineno, err)
		}
		seen := make(map[float64]bool)
		for _, n := range ageOrder(root) {
			if len(n.children) == 0 {
				continue
			}
			if seen[n.age] {
				return nil, fmt.Errorf(
					"ms: line %d: cannot have two internal nodes with the same time", lineno)
			}
			seen[n.age] = true
		}
		parsed = append(parsed, msTree{span: span, root: root, line: lineno})
		sequenceLength += span
	}

	tc := trees.NewTableCollection(sequenceLength)
	numSamples, err := allocateMsSamples(tc, parsed[0].root, parsed[0].line)
	if err != nil {
		return nil, err
	}

	ageID := make(map[float64]int)
	childID := func(tree msTree, n *newickNode) (int, error) {
		if len(n.children) > 0 {
			return ageID[n.age], nil
		}
		label, err := strconv.Atoi(n.label)
		if err != nil || label < 1 || label > numSamples {
			return 0, fmt.Errorf("ms: line %d: leaf label %q is not a sample number in 1..%d",
				tree.line, n.label, numSamples)
		}
		return label - 1, nil
	}
	left := 0.0
	for _, tree := range parsed {
		right := left + tree.span
		for _, n := range ageOrder(tree.root) {
			if len(n.children) == 0 {
				continue
			}
			if _, ok := ageID[n.age]; !ok {
				ageID[n.age] = tc.AddNode(0, n.age, nil)
			}
			parent := ageID[n.age]
			for _, c := range n.children {
				child, err := childID(tree, c)
				if err != nil {
					return nil, err
				}
				tc.AddEdge(left, right, parent, child)
			}
		}
		left = right
	}

	if err := tc.Sort(); err != nil {
		return nil, err
	}
	// Simplification squashes the redundant edges of adjacent trees
	// that share structure.
	if _, err := tc.Simplify(); err != nil {
		return nil, err
	}
	return tc.TreeSequence()
}

// allocateMsSamples creates the sample nodes from the leaves of the
// first tree. The labels must form the set 1..n.
func allocateMsSamples(tc *trees.TableCollection, root *newickNode, lineno int) (int, error) {
	var leaves []*newickNode
	for _, n := range ageOrder(root) {
		if len(n.children) == 0 {
			leaves = append(leaves, n)
		}
	}
	n := len(leaves)
	times := make([]float64, n)
	seen := make([]bool, n)
	for _, leaf := range leaves {
		label, err := strconv.Atoi(leaf.label)
		if err != nil || label < 1 || label > n {
			return 0, fmt.Errorf("ms: line %d: leaf label %q is not a sample number in 1..%d",
				lineno, leaf.label, n)
		}
		if seen[label-1] {
			return 0, fmt.Errorf("ms: line %d: duplicate leaf label %q", lineno, leaf.label)
		}
		seen[label-1] = true
		times[label-1] = leaf.age
	}
	for i := 0; i < n; i++ {
		tc.AddNode(trees.NodeIsSample, times[i], nil)
	}
	return n, nil
}

// MsEncoder returns an encoder for ms-style output with the given
// newick precision.
func MsEncoder(precision int) Encoder {
	return func(ts *trees.TreeSequence, w io.Writer) error {
		tree := ts.NewTree()
		for tree.Next() {
			left, right := tree.Interval()
			s, err := tree.Newick(precision)
			if err != nil {
				return fmt.Errorf("ms: tree %d: %w", tree.Index(), err)
			}
			if _, err := fmt.Fprintf(w, "[%s]%s\n", formatFloat(right-left), s); err != nil {
				return err
			}
		}
		return nil
	}
}

// ToMs writes ts as ms-style tree output with the default newick
// precision.
func ToMs(ts *trees.TreeSequence, w io.Writer) error {
	return MsEncoder(trees.DefaultNewickPrecision)(ts, w)
}
