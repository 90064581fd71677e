package tsconvert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tskit-dev/tsconvert/trees"
)

// jsonDoc is the JSON rendition of a table collection. Node metadata
// is embedded as the JSON value it already is rather than a string.
type jsonDoc struct {
	SequenceLength float64        `json:"sequence_length"`
	Nodes          []jsonNode     `json:"nodes"`
	Edges          []jsonEdge     `json:"edges"`
	Sites          []jsonSite     `json:"sites"`
	Mutations      []jsonMutation `json:"mutations"`
}

type jsonNode struct {
	IsSample bool            `json:"is_sample"`
	Time     float64         `json:"time"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type jsonEdge struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Parent int     `json:"parent"`
	Child  int     `json:"child"`
}

type jsonSite struct {
	Position       float64 `json:"position"`
	AncestralState string  `json:"ancestral_state"`
}

// A mutation with no parent mutation omits the field entirely, so
// Parent is a pointer rather than an int with a magic value.
type jsonMutation struct {
	Site         int    `json:"site"`
	Node         int    `json:"node"`
	DerivedState string `json:"derived_state"`
	Parent       *int   `json:"parent,omitempty"`
}

// ToJSON writes ts as an indented JSON document that FromJSON reads
// back without loss.
func ToJSON(ts *trees.TreeSequence, w io.Writer) error {
	tc := ts.Tables()
	doc := jsonDoc{
		SequenceLength: tc.SequenceLength,
		Nodes:          make([]jsonNode, 0, len(tc.Nodes)),
		Edges:          make([]jsonEdge, 0, len(tc.Edges)),
		Sites:          make([]jsonSite, 0, len(tc.Sites)),
		Mutations:      make([]jsonMutation, 0, len(tc.Mutations)),
	}
	for _, n := range tc.Nodes {
		doc.Nodes = append(doc.Nodes, jsonNode{
			IsSample: n.IsSample(),
			Time:     n.Time,
			Metadata: json.RawMessage(n.Metadata),
		})
	}
	for _, e := range tc.Edges {
		doc.Edges = append(doc.Edges, jsonEdge{Left: e.Left, Right: e.Right, Parent: e.Parent, Child: e.Child})
	}
	for _, s := range tc.Sites {
		doc.Sites = append(doc.Sites, jsonSite{Position: s.Position, AncestralState: s.AncestralState})
	}
	for _, m := range tc.Mutations {
		row := jsonMutation{Site: m.Site, Node: m.Node, DerivedState: m.DerivedState}
		if m.Parent != trees.NullMutation {
			parent := m.Parent
			row.Parent = &parent
		}
		doc.Mutations = append(doc.Mutations, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}

// FromJSON reads the JSON document written by ToJSON.
func FromJSON(r io.Reader) (*trees.TreeSequence, error) {
	var doc jsonDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	tc := trees.NewTableCollection(doc.SequenceLength)
	for i, n := range doc.Nodes {
		var flags uint32
		if n.IsSample {
			flags = trees.NodeIsSample
		}
		// The decoder hands metadata over with the document's
		// indentation still inside, so normalize to compact form.
		var metadata []byte
		if len(n.Metadata) > 0 {
			var compact bytes.Buffer
			if err := json.Compact(&compact, n.Metadata); err != nil {
				return nil, fmt.Errorf("json: node %d metadata: %w", i, err)
			}
			metadata = compact.Bytes()
		}
		tc.AddNode(flags, n.Time, metadata)
	}
	for _, e := range doc.Edges {
		tc.AddEdge(e.Left, e.Right, e.Parent, e.Child)
	}
	for _, s := range doc.Sites {
		tc.AddSite(s.Position, s.AncestralState)
	}
	for _, m := range doc.Mutations {
		i := tc.AddMutation(m.Site, m.Node, m.DerivedState)
		if m.Parent != nil {
			tc.Mutations[i].Parent = *m.Parent
		}
	}
	return tc.TreeSequence()
}
