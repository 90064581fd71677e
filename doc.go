// Package tsconvert converts succinct tree sequences to and from
// other formats: ms and newick tree text, nexus, VCF, oriented
// forests, and a set of whole-table codecs.
//
// Conversion functions such as FromMs and ToNexus are plain functions
// over trees.TreeSequence values. A Registry maps format names to
// these functions so that callers like the command line tool can
// dispatch by name:
//
//	reg := tsconvert.NewDefaultRegistry(tsconvert.Options{})
//	ts, err := reg.From("ms", input)
//	if err != nil {
//		...
//	}
//	err = reg.To("nexus", ts, output)
package tsconvert
