package tsconvert

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tskit-dev/tsconvert/trees"
)

// AnnotateNodesCSV returns a copy of ts with node metadata merged in
// from a CSV or TSV stream. The delimiter is sniffed from the header
// line. Each data row is matched to the nodes whose JSON metadata has
// idProperty equal to the row's idColumn value; the row's columns are
// then written into that metadata, overwriting existing properties of
// the same name. Nodes without metadata, or whose metadata lacks
// idProperty, are left alone.
func AnnotateNodesCSV(ts *trees.TreeSequence, r io.Reader, idColumn, idProperty string) (*trees.TreeSequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("annotate: no header row")
	}
	header := records[0]
	idIndex := -1
	for i, name := range header {
		if name == idColumn {
			idIndex = i
			break
		}
	}
	if idIndex < 0 {
		return nil, fmt.Errorf("annotate: no column %q in header %v", idColumn, header)
	}
	rowForID := make(map[string]map[string]string, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		rowForID[record[idIndex]] = row
	}

	tables := ts.Tables()
	for i, node := range tables.Nodes {
		if len(node.Metadata) == 0 {
			continue
		}
		var metadata map[string]any
		if err := json.Unmarshal(node.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("annotate: node %d metadata is not a JSON object: %w", i, err)
		}
		key, ok := metadataKey(metadata[idProperty])
		if !ok {
			continue
		}
		row, ok := rowForID[key]
		if !ok {
			continue
		}
		for name, value := range row {
			metadata[name] = value
		}
		merged, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("annotate: node %d: %w", i, err)
		}
		tables.Nodes[i].Metadata = merged
	}
	return tables.TreeSequence()
}

// metadataKey renders a metadata property value in the form it would
// take as a CSV cell.
func metadataKey(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return formatFloat(x), true
	default:
		return "", false
	}
}

// sniffDelimiter picks the field separator that occurs most often in
// the header line, defaulting to a comma.
func sniffDelimiter(data []byte) rune {
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best := ','
	bestCount := strings.Count(line, ",")
	for _, candidate := range []string{"\t", ";", "|"} {
		if n := strings.Count(line, candidate); n > bestCount {
			best = rune(candidate[0])
			bestCount = n
		}
	}
	return best
}
