// Package trees holds the succinct tree sequence model that the
// converters in the parent package read from and write into.
//
// A tree sequence is stored as a TableCollection: flat tables of nodes,
// edges, sites and mutations over a genome interval [0, SequenceLength).
// Converters that build genealogies append rows to a TableCollection,
// canonicalise it with Sort and Simplify, and seal it into an immutable
// TreeSequence, which validates the tables and precomputes the edge
// insertion and removal orders needed to sweep across the genome.
//
// Tree exposes one marginal tree at a time. The iterator follows the
// standard left-to-right sweep: at each breakpoint the edges ending
// there are removed and the edges starting there are inserted, so
// moving between adjacent trees costs only the edges that differ.
//
//	t := ts.NewTree()
//	for t.Next() {
//		// inspect t.Root(), t.Children(u), ...
//	}
package trees
