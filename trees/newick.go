package trees

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultNewickPrecision is the number of digits written after the
// decimal point in branch lengths.
const DefaultNewickPrecision = 14

// Newick renders the current tree in newick form. Leaves are labelled
// with their node id plus one, internal nodes are unlabelled, branch
// lengths are the time difference between parent and child to the
// given number of decimal digits, and the root carries neither label
// nor branch length. The tree must have exactly one root.
func (t *Tree) Newick(precision int) (string, error) {
	root, err := t.Root()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	t.writeSubtree(&sb, root, precision)
	sb.WriteByte(';')
	return sb.String(), nil
}

// WriteNewick writes the current tree in newick form to w.
func (t *Tree) WriteNewick(w io.Writer, precision int) error {
	s, err := t.Newick(precision)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func (t *Tree) writeSubtree(sb *strings.Builder, u, precision int) {
	if t.leftChild[u] == NullNode {
		sb.WriteString(strconv.Itoa(u + 1))
		return
	}
	sb.WriteByte('(')
	for c := t.leftChild[u]; c != NullNode; c = t.rightSib[c] {
		if c != t.leftChild[u] {
			sb.WriteByte(',')
		}
		t.writeSubtree(sb, c, precision)
		branch := t.ts.tables.Nodes[u].Time - t.ts.tables.Nodes[c].Time
		fmt.Fprintf(sb, ":%.*f", precision, branch)
	}
	sb.WriteByte(')')
}
