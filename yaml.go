package tsconvert

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tskit-dev/tsconvert/trees"
)

// yamlDoc mirrors jsonDoc for YAML output. Node metadata stays a
// string holding the JSON object, since YAML has no raw-JSON value.
type yamlDoc struct {
	SequenceLength float64        `yaml:"sequence_length"`
	Nodes          []yamlNode     `yaml:"nodes"`
	Edges          []yamlEdge     `yaml:"edges"`
	Sites          []yamlSite     `yaml:"sites"`
	Mutations      []yamlMutation `yaml:"mutations"`
}

type yamlNode struct {
	IsSample bool    `yaml:"is_sample"`
	Time     float64 `yaml:"time"`
	Metadata string  `yaml:"metadata,omitempty"`
}

type yamlEdge struct {
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Parent int     `yaml:"parent"`
	Child  int     `yaml:"child"`
}

type yamlSite struct {
	Position       float64 `yaml:"position"`
	AncestralState string  `yaml:"ancestral_state"`
}

type yamlMutation struct {
	Site         int    `yaml:"site"`
	Node         int    `yaml:"node"`
	DerivedState string `yaml:"derived_state"`
	Parent       *int   `yaml:"parent,omitempty"`
}

// ToYAML writes ts as a YAML document that FromYAML reads back.
func ToYAML(ts *trees.TreeSequence, w io.Writer) error {
	tc := ts.Tables()
	doc := yamlDoc{
		SequenceLength: tc.SequenceLength,
		Nodes:          make([]yamlNode, 0, len(tc.Nodes)),
		Edges:          make([]yamlEdge, 0, len(tc.Edges)),
		Sites:          make([]yamlSite, 0, len(tc.Sites)),
		Mutations:      make([]yamlMutation, 0, len(tc.Mutations)),
	}
	for _, n := range tc.Nodes {
		doc.Nodes = append(doc.Nodes, yamlNode{
			IsSample: n.IsSample(),
			Time:     n.Time,
			Metadata: string(n.Metadata),
		})
	}
	for _, e := range tc.Edges {
		doc.Edges = append(doc.Edges, yamlEdge{Left: e.Left, Right: e.Right, Parent: e.Parent, Child: e.Child})
	}
	for _, s := range tc.Sites {
		doc.Sites = append(doc.Sites, yamlSite{Position: s.Position, AncestralState: s.AncestralState})
	}
	for _, m := range tc.Mutations {
		row := yamlMutation{Site: m.Site, Node: m.Node, DerivedState: m.DerivedState}
		if m.Parent != trees.NullMutation {
			parent := m.Parent
			row.Parent = &parent
		}
		doc.Mutations = append(doc.Mutations, row)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		enc.Close()
		return fmt.Errorf("yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("yaml: %w", err)
	}
	return nil
}

// FromYAML reads the YAML document written by ToYAML.
func FromYAML(r io.Reader) (*trees.TreeSequence, error) {
	var doc yamlDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	tc := trees.NewTableCollection(doc.SequenceLength)
	for _, n := range doc.Nodes {
		var flags uint32
		if n.IsSample {
			flags = trees.NodeIsSample
		}
		var metadata []byte
		if n.Metadata != "" {
			metadata = []byte(n.Metadata)
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
