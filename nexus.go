package tsconvert

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tskit-dev/tsconvert/trees"
)

// NexusEncoder returns an encoder for the nexus format: a TAXA block
// naming every sample n<id> and a TREES block with one rooted tree per
// genome interval, named t<left>^<right>.
func NexusEncoder(precision int) Encoder {
	return func(ts *trees.TreeSequence, w io.Writer) error {
		bw := bufio.NewWriter(w)
		fmt.Fprintln(bw, "#NEXUS")
		fmt.Fprintln(bw, "BEGIN TAXA;")
		fmt.Fprintf(bw, "  DIMENSIONS NTAX=%d;\n", ts.NumSamples())
		labels := make([]string, 0, ts.NumSamples())
		for _, s := range ts.Samples() {
			labels = append(labels, "n"+strconv.Itoa(s))
		}
		fmt.Fprintf(bw, "  TAXLABELS %s;\n", strings.Join(labels, " "))
		fmt.Fprintln(bw, "END;")
		fmt.Fprintln(bw, "BEGIN TREES;")
		tree := ts.NewTree()
		for tree.Next() {
			left, right := tree.Interval()
			root, err := tree.Root()
			if err != nil {
				return fmt.Errorf("nexus: tree %d: %w", tree.Index(), err)
			}
			var sb strings.Builder
			nexusSubtree(ts, tree, root, precision, &sb)
			fmt.Fprintf(bw, "  TREE t%s^%s = [&R] %s;\n",
				formatFloat(left), formatFloat(right), sb.String())
		}
		fmt.Fprintln(bw, "END;")
		return bw.Flush()
	}
}

// ToNexus writes ts in nexus format with the default precision.
func ToNexus(ts *trees.TreeSequence, w io.Writer) error {
	return NexusEncoder(trees.DefaultNewickPrecision)(ts, w)
}

func nexusSubtree(ts *trees.TreeSequence, t *trees.Tree, u, precision int, sb *strings.Builder) {
	children := t.Children(u)
	if len(children) == 0 {
		sb.WriteString("n")
		sb.WriteString(strconv.Itoa(u))
		return
	}
	sb.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			sb.WriteByte(',')
		}
		nexusSubtree(ts, t, c, precision, sb)
		branch := ts.Node(u).Time - ts.Node(c).Time
		fmt.Fprintf(sb, ":%.*f", precision, branch)
	}
	sb.WriteByte(')')
}
