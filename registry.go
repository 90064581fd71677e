package tsconvert

import (
	"io"
	"sort"

	"github.com/tskit-dev/tsconvert/trees"
)

// Encoder writes a tree sequence to w in some external format.
type Encoder func(ts *trees.TreeSequence, w io.Writer) error

// Decoder reads a tree sequence from r in some external format.
type Decoder func(r io.Reader) (*trees.TreeSequence, error)

// Descriptor binds a format name to its conversion functions. Either
// function may be nil for a one-way format, but not both.
type Descriptor struct {
	Name        string
	Description string
	Encoder     Encoder
	Decoder     Decoder
}

// Registry dispatches conversions by format name. Populate it during
// startup; afterwards it is read-only, so lookups need no locking.
type Registry struct {
	formats map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Descriptor)}
}

// Register adds a format. It fails with a ConfigurationError, leaving
// the registry as it was, if the name is empty or already taken, or if
// the descriptor carries neither an encoder nor a decoder.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return &ConfigurationError{Format: d.Name, Reason: "format name is empty"}
	}
	if d.Encoder == nil && d.Decoder == nil {
		return &ConfigurationError{Format: d.Name, Reason: "neither encoder nor decoder provided"}
	}
	if _, ok := r.formats[d.Name]; ok {
		return &ConfigurationError{Format: d.Name, Reason: "already registered"}
	}
	r.formats[d.Name] = d
	return nil
}

// To encodes ts to w in the named format. Errors from the underlying
// encoder are returned as they are.
func (r *Registry) To(name string, ts *trees.TreeSequence, w io.Writer) error {
	d, ok := r.formats[name]
	if !ok || d.Encoder == nil {
		return &UnsupportedFormatError{Format: name, Direction: DirectionEncode}
	}
	return d.Encoder(ts, w)
}

// From decodes a tree sequence from rd in the named format. Errors
// from the underlying decoder are returned as they are.
func (r *Registry) From(name string, rd io.Reader) (*trees.TreeSequence, error) {
	d, ok := r.formats[name]
	if !ok || d.Decoder == nil {
		return nil, &UnsupportedFormatError{Format: name, Direction: DirectionDecode}
	}
	return d.Decoder(rd)
}

// Formats returns the registered descriptors sorted by name.
func (r *Registry) Formats() []Descriptor {
	out := make([]Descriptor, 0, len(r.formats))
	for _, d := range r.formats {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
