package tsconvert

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tskit-dev/tsconvert/trees"
)

// The tables format is a single text stream holding the whole table
// collection, one tab-separated section per table:
//
//	##tsconvert=1
//	##sequence_length=10
//	#nodes
//	id	is_sample	time	metadata
//	0	1	0	{"name":"a"}
//	...
//
// It round-trips exactly: no sorting, no simplification, shortest
// float representation that parses back to the same value.

const tablesFormatLine = "##tsconvert=1"

// formatFloat renders x in the shortest form that parses back to the
// same float64.
func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

var tablesSectionHeaders = map[string]string{
	"#nodes":     "id\tis_sample\ttime\tmetadata",
	"#edges":     "left\tright\tparent\tchild",
	"#sites":     "position\tancestral_state",
	"#mutations": "site\tnode\tderived_state\tparent",
}

// ToTables writes ts in the native text tables format.
func ToTables(ts *trees.TreeSequence, w io.Writer) error {
	tc := ts.Tables()
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, tablesFormatLine)
	fmt.Fprintf(bw, "##sequence_length=%s\n", formatFloat(tc.SequenceLength))

	fmt.Fprintln(bw, "#nodes")
	fmt.Fprintln(bw, tablesSectionHeaders["#nodes"])
	for id, n := range tc.Nodes {
		if err := checkCellText("node", id, string(n.Metadata)); err != nil {
			return err
		}
		sample := 0
		if n.IsSample() {
			sample = 1
		}
		fmt.Fprintf(bw, "%d\t%d\t%s\t%s\n", id, sample, formatFloat(n.Time), n.Metadata)
	}

	fmt.Fprintln(bw, "#edges")
	fmt.Fprintln(bw, tablesSectionHeaders["#edges"])
	for _, e := range tc.Edges {
		fmt.Fprintf(bw, "%s\t%s\t%d\t%d\n", formatFloat(e.Left), formatFloat(e.Right), e.Parent, e.Child)
	}

	fmt.Fprintln(bw, "#sites")
	fmt.Fprintln(bw, tablesSectionHeaders["#sites"])
	for id, s := range tc.Sites {
		if err := checkCellText("site", id, s.AncestralState); err != nil {
			return err
		}
		fmt.Fprintf(bw, "%s\t%s\n", formatFloat(s.Position), s.AncestralState)
	}

	fmt.Fprintln(bw, "#mutations")
	fmt.Fprintln(bw, tablesSectionHeaders["#mutations"])
	for id, m := range tc.Mutations {
		if err := checkCellText("mutation", id, m.DerivedState); err != nil {
			return err
		}
		fmt.Fprintf(bw, "%d\t%d\t%s\t%d\n", m.Site, m.Node, m.DerivedState, m.Parent)
	}
	return bw.Flush()
}

// checkCellText rejects values that would break the tab and newline
// framing of the format.
func checkCellText(table string, id int, s string) error {
	if strings.ContainsAny(s, "\t\n\r") {
		return fmt.Errorf("tables: %s %d: value contains a tab or newline", table, id)
	}
	return nil
}

// FromTables reads the native text tables format.
func FromTables(r io.Reader) (*trees.TreeSequence, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	p := &tablesReader{lines: lines}
	return p.run()
}

type tablesReader struct {
	lines []string
	pos   int
	tc    *trees.TableCollection
}

func (p *tablesReader) errorf(format string, args ...any) error {
	return fmt.Errorf("tables: line %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// next returns the next non-blank line, or false at end of input.
func (p *tablesReader) next() (string, bool) {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}

func (p *tablesReader) run() (*trees.TreeSequence, error) {
	line, ok := p.next()
	if !ok || line != tablesFormatLine {
		return nil, p.errorf("expected %s header", tablesFormatLine)
	}
	line, ok = p.next()
	if !ok || !strings.HasPrefix(line, "##sequence_length=") {
		return nil, p.errorf("expected ##sequence_length header")
	}
	length, err := strconv.ParseFloat(strings.TrimPrefix(line, "##sequence_length="), 64)
	if err != nil {
		return nil, p.errorf("bad sequence length %q", strings.TrimPrefix(line, "##sequence_length="))
	}
	p.tc = trees.NewTableCollection(length)

	seen := make(map[string]bool)
	for {
		section, ok := p.next()
		if !ok {
			break
		}
		header, known := tablesSectionHeaders[section]
		if !known {
			return nil, p.errorf("unknown section %q", section)
		}
		if seen[section] {
			return nil, p.errorf("section %q appears twice", section)
		}
		seen[section] = true
		line, ok := p.next()
		if !ok || line != header {
			return nil, p.errorf("section %q must start with header %q", section, header)
		}
		if err := p.readRows(section); err != nil {
			return nil, err
		}
	}
	return p.tc.TreeSequence()
}

// readRows consumes data lines until the next section marker.
func (p *tablesReader) readRows(section string) error {
	for {
		line, ok := p.next()
		if !ok {
			return nil
		}
		if strings.HasPrefix(line, "#") {
			p.pos--
			return nil
		}
		cells := strings.Split(line, "\t")
		var err error
		switch section {
		case "#nodes":
			err = p.readNode(cells)
		case "#edges":
			err = p.readEdge(cells)
		case "#sites":
			err = p.readSite(cells)
		case "#mutations":
			err = p.readMutation(cells)
		}
		if err != nil {
			return err
		}
	}
}

func (p *tablesReader) readNode(cells []string) error {
	if len(cells) != 4 {
		return p.errorf("node rows need 4 columns, got %d", len(cells))
	}
	id, err := strconv.Atoi(cells[0])
	if err != nil || id != len(p.tc.Nodes) {
		return p.errorf("node ids must count up from 0, got %q", cells[0])
	}
	sample, err := strconv.Atoi(cells[1])
	if err != nil || (sample != 0 && sample != 1) {
		return p.errorf("is_sample must be 0 or 1, got %q", cells[1])
	}
	t, err := strconv.ParseFloat(cells[2], 64)
	if err != nil {
		return p.errorf("bad node time %q", cells[2])
	}
	var flags uint32
	if sample == 1 {
		flags = trees.NodeIsSample
	}
	var metadata []byte
	if cells[3] != "" {
		metadata = []byte(cells[3])
	}
	p.tc.AddNode(flags, t, metadata)
	return nil
}

func (p *tablesReader) readEdge(cells []string) error {
	if len(cells) != 4 {
		return p.errorf("edge rows need 4 columns, got %d", len(cells))
	}
	left, err1 := strconv.ParseFloat(cells[0], 64)
	right, err2 := strconv.ParseFloat(cells[1], 64)
	parent, err3 := strconv.Atoi(cells[2])
	child, err4 := strconv.Atoi(cells[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return p.errorf("bad edge row %q", strings.Join(cells, " "))
	}
	p.tc.AddEdge(left, right, parent, child)
	return nil
}

func (p *tablesReader) readSite(cells []string) error {
	if len(cells) != 2 {
		return p.errorf("site rows need 2 columns, got %d", len(cells))
	}
	pos, err := strconv.ParseFloat(cells[0], 64)
	if err != nil {
		return p.errorf("bad site position %q", cells[0])
	}
	p.tc.AddSite(pos, cells[1])
	return nil
}

func (p *tablesReader) readMutation(cells []string) error {
	if len(cells) != 4 {
		return p.errorf("mutation rows need 4 columns, got %d", len(cells))
	}
	site, err1 := strconv.Atoi(cells[0])
	node, err2 := strconv.Atoi(cells[1])
	parent, err3 := strconv.Atoi(cells[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return p.errorf("bad mutation row %q", strings.Join(cells, " "))
	}
	m := p.tc.AddMutation(site, node, cells[2])
	p.tc.Mutations[m].Parent = parent
	return nil
}
