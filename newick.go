package tsconvert

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/tskit-dev/tsconvert/trees"
)

// ultrametricityPrecision is how far the root age implied by one leaf
// may drift from the age implied by another before the tree is
// rejected as non-ultrametric.
const ultrametricityPrecision = 1e-5

// FromNewick builds a single-tree sequence over [0, 1) from a newick
// string. Leaves become sample nodes; node times are ages computed
// from the branch lengths, so the tree must be ultrametric. Labels are
// kept as {"name": label} JSON metadata on their nodes. Nodes are
// numbered in age order, leaves first in the order they appear, so the
// samples are 0..n-1 left to right.
func FromNewick(data string) (*trees.TreeSequence, error) {
	root, err := parseNewick(data)
	if err != nil {
		return nil, err
	}
	if err := computeAges(root); err != nil {
		return nil, err
	}
	ordered := ageOrder(root)

	tc := trees.NewTableCollection(1)
	ids := make(map[*newickNode]int, len(ordered))
	for _, n := range ordered {
		var flags uint32
		if len(n.children) == 0 {
			flags = trees.NodeIsSample
		}
		var metadata []byte
		if n.label != "" {
			metadata, err = json.Marshal(map[string]string{"name": n.label})
			if err != nil {
				return nil, fmt.Errorf("newick: encoding label metadata: %w", err)
			}
		}
		ids[n] = tc.AddNode(flags, n.age, metadata)
	}
	for _, n := range ordered {
		for _, child := range n.children {
			if child.age >= n.age {
				return nil, fmt.Errorf(
					"newick: branch to %s must have positive length", describeNode(child))
			}
			tc.AddEdge(0, 1, ids[n], ids[child])
		}
	}
	if err := tc.Sort(); err != nil {
		return nil, err
	}
	return tc.TreeSequence()
}

// NewickEncoder returns an encoder that writes the single tree of a
// sequence in newick form with the given number of digits in branch
// lengths.
func NewickEncoder(precision int) Encoder {
	return func(ts *trees.TreeSequence, w io.Writer) error {
		if n := ts.NumTrees(); n != 1 {
			return fmt.Errorf("newick: tree sequence has %d trees, can only encode one (use ms for many)", n)
		}
		tree := ts.NewTree()
		tree.Next()
		if err := tree.WriteNewick(w, precision); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
}

// ToNewick writes the single tree of ts in newick form with the
// default precision.
func ToNewick(ts *trees.TreeSequence, w io.Writer) error {
	return NewickEncoder(trees.DefaultNewickPrecision)(ts, w)
}

// newickNode is one clade of a parsed newick string.
type newickNode struct {
	label     string
	length    float64
	hasLength bool
	children  []*newickNode
	age       float64
}

func describeNode(n *newickNode) string {
	if n.label != "" {
		return fmt.Sprintf("node %q", n.label)
	}
	return "unlabelled node"
}

// parseNewick parses exactly one ;-terminated tree, rejecting
// anything but whitespace after it.
func parseNewick(data string) (*newickNode, error) {
	p := &newickParser{input: data}
	p.skipLayout()
	if p.pos >= len(p.input) {
		return nil, p.errorf("input is empty")
	}
	root, err := p.parseClade()
	if err != nil {
		return nil, err
	}
	p.skipLayout()
	if p.pos >= len(p.input) || p.input[p.pos] != ';' {
		return nil, p.errorf("expected ';' at end of tree")
	}
	p.pos++
	p.skipLayout()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected data after tree")
	}
	return root, nil
}

type newickParser struct {
	input string
	pos   int
}

func (p *newickParser) errorf(format string, args ...any) error {
	return fmt.Errorf("newick: offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// skipLayout advances over whitespace and [...] comments.
func (p *newickParser) skipLayout() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if unicode.IsSpace(rune(c)) {
			p.pos++
			continue
		}
		if c == '[' {
			end := strings.IndexByte(p.input[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.input)
				return
			}
			p.pos += end + 1
			continue
		}
		return
	}
}

func (p *newickParser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *newickParser) parseClade() (*newickNode, error) {
	p.skipLayout()
	n := &newickNode{}
	if p.peek() == '(' {
		p.pos++
		for {
			child, err := p.parseClade()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			p.skipLayout()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			if p.peek() == ')' {
				p.pos++
				break
			}
			return nil, p.errorf("expected ',' or ')'")
		}
	}
	p.skipLayout()
	label, err := p.readLabel()
	if err != nil {
		return nil, err
	}
	n.label = label
	p.skipLayout()
	if p.peek() == ':' {
		p.pos++
		p.skipLayout()
		x, err := p.readNumber()
		if err != nil {
			return nil, err
		}
		n.length = x
		n.hasLength = true
	}
	if len(n.children) == 0 && n.label == "" {
		return nil, p.errorf("leaf has no label")
	}
	return n, nil
}

// readLabel reads a possibly empty node label. Quoted labels keep
// their text as written with '' collapsing to a single quote;
// unquoted labels follow the newick convention of underscores
// standing for spaces.
func (p *newickParser) readLabel() (string, error) {
	if p.peek() == '\'' {
		p.pos++
		var sb strings.Builder
		for {
			if p.pos >= len(p.input) {
				return "", p.errorf("unterminated quoted label")
			}
			c := p.input[p.pos]
			if c == '\'' {
				if p.pos+1 < len(p.input) && p.input[p.pos+1] == '\'' {
					sb.WriteByte('\'')
					p.pos += 2
					continue
				}
				p.pos++
				return sb.String(), nil
			}
			sb.WriteByte(c)
			p.pos++
		}
	}
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if strings.IndexByte("(),:;[]'", c) >= 0 || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	return strings.ReplaceAll(p.input[start:p.pos], "_", " "), nil
}

func (p *newickParser) readNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return 0, p.errorf("expected a branch length")
	}
	x, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("bad branch length %q", p.input[start:p.pos])
	}
	return x, nil
}

// computeAges assigns each node its time before present: leaves at 0,
// an internal node at child age plus the child's branch length, with
// all children required to agree within ultrametricityPrecision.
func computeAges(n *newickNode) error {
	if len(n.children) == 0 {
		n.age = 0
		return nil
	}
	for _, c := range n.children {
		if err := computeAges(c); err != nil {
			return err
		}
		if !c.hasLength {
			return fmt.Errorf("newick: %s has no branch length", describeNode(c))
		}
	}
	first := n.children[0]
	n.age = first.age + first.length
	for _, c := range n.children[1:] {
		if math.Abs(c.age+c.length-n.age) > ultrametricityPrecision {
			return fmt.Errorf("newick: tree is not ultrametric: %s implies age %v, %s implies %v",
				describeNode(first), n.age, describeNode(c), c.age+c.length)
		}
	}
	return nil
}

// ageOrder lists nodes by ascending age, ties broken by preorder
// position. All leaves have age 0, so they come first, left to right.
func ageOrder(root *newickNode) []*newickNode {
	var nodes []*newickNode
	var walk func(n *newickNode)
	walk = func(n *newickNode) {
		nodes = append(nodes, n)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].age < nodes[j].age })
	return nodes
}
