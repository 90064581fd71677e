package tsconvert

import (
	"io"

	"github.com/tskit-dev/tsconvert/trees"
)

// Options tune the encoders built by NewDefaultRegistry.
type Options struct {
	// Precision is the number of digits written after the decimal point
	// for branch lengths and tree spans. Zero or negative selects
	// trees.DefaultNewickPrecision.
	Precision int

	// VCF configures the vcf encoder.
	VCF VCFOptions
}

// NewDefaultRegistry returns a registry populated with every built-in
// format. Callers that need additional formats can register them on the
// returned registry before use.
func NewDefaultRegistry(opts Options) *Registry {
	precision := opts.Precision
	if precision <= 0 {
		precision = trees.DefaultNewickPrecision
	}

	r := NewRegistry()
	builtins := []Descriptor{
		{Name: "tables", Description: "native tab-separated tables",
			Encoder: ToTables, Decoder: FromTables},
		{Name: "json", Description: "tables as a JSON document",
			Encoder: ToJSON, Decoder: FromJSON},
		{Name: "yaml", Description: "tables as a YAML document",
			Encoder: ToYAML, Decoder: FromYAML},
		{Name: "newick", Description: "single rooted newick tree",
			Encoder: NewickEncoder(precision), Decoder: decodeNewick},
		{Name: "ms", Description: "ms-style [span]newick tree lines",
			Encoder: MsEncoder(precision), Decoder: decodeMs},
		{Name: "nexus", Description: "nexus TAXA and TREES blocks",
			Encoder: NexusEncoder(precision)},
		{Name: "vcf", Description: "VCFv4.2 site genotypes",
			Encoder: VCFEncoder(opts.VCF)},
		{Name: "oriented-forest", Description: "per-locus parent and time arrays as JSON",
			Decoder: DecodeOrientedForest},
		{Name: "pdf", Description: "summary report",
			Encoder: ToPDF},
		{Name: "docx", Description: "summary report",
			Encoder: ToDocx},
	}
	for _, d := range builtins {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func decodeNewick(r io.Reader) (*trees.TreeSequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromNewick(string(data))
}

func decodeMs(r io.Reader) (*trees.TreeSequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromMs(string(data))
}
