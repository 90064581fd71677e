package tsconvert

import (
	"fmt"
	"io"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/tskit-dev/tsconvert/trees"
)

// ToDocx writes a human-readable summary report describing ts as a Word
// document. It carries the same sections as the PDF report.
func ToDocx(ts *trees.TreeSequence, w io.Writer) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	addDocxTitle(document, ts)
	addDocxSummary(document, ts)
	if err := addDocxTrees(document, ts); err != nil {
		return err
	}
	addDocxSites(document, ts)

	if err := document.Write(w); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

func addDocxTitle(document *docx.RootDoc, ts *trees.TreeSequence) {
	_, _ = document.AddHeading("Tree Sequence Report", 0) // Level 0 = Title style
	document.AddParagraph(fmt.Sprintf("%d samples over [0, %s)", ts.NumSamples(), formatFloat(ts.SequenceLength())))
	document.AddEmptyParagraph()
}

func addDocxSummary(document *docx.RootDoc, ts *trees.TreeSequence) {
	_, _ = document.AddHeading("Summary", 1)

	document.AddParagraph(fmt.Sprintf("• Sequence length: %s", formatFloat(ts.SequenceLength())))
	document.AddParagraph(fmt.Sprintf("• Sample nodes: %d", ts.NumSamples()))
	document.AddParagraph(fmt.Sprintf("• Nodes: %d", ts.NumNodes()))
	document.AddParagraph(fmt.Sprintf("• Edges: %d", ts.NumEdges()))
	document.AddParagraph(fmt.Sprintf("• Trees: %d", ts.NumTrees()))
	document.AddParagraph(fmt.Sprintf("• Sites: %d", ts.NumSites()))
	document.AddParagraph(fmt.Sprintf("• Mutations: %d", ts.NumMutations()))
	document.AddEmptyParagraph()
}

func addDocxTrees(document *docx.RootDoc, ts *trees.TreeSequence) error {
	_, _ = document.AddHeading("Trees", 1)

	t := ts.NewTree()
	for t.Next() {
		left, right := t.Interval()
		_, _ = document.AddHeading(fmt.Sprintf("Tree %d [%s, %s)", t.Index(), formatFloat(left), formatFloat(right)), 2)

		if _, err := t.Root(); err != nil {
			document.AddParagraph(fmt.Sprintf("forest with %d roots", len(t.Roots())))
		} else {
			s, err := t.Newick(reportPrecision)
			if err != nil {
				return err
			}
			document.AddParagraph(s)
		}
		document.AddEmptyParagraph()
	}
	return nil
}

func addDocxSites(document *docx.RootDoc, ts *trees.TreeSequence) {
	if ts.NumSites() == 0 {
		return
	}

	_, _ = document.AddHeading("Sites", 1)

	mutationCounts := make([]int, ts.NumSites())
	for i := 0; i < ts.NumMutations(); i++ {
		mutationCounts[ts.Mutation(i).Site]++
	}

	for i := 0; i < ts.NumSites(); i++ {
		site := ts.Site(i)
		document.AddParagraph(fmt.Sprintf("• %s: ancestral state %q, %d mutations",
			formatFloat(site.Position), site.AncestralState, mutationCounts[i]))
	}
	document.AddEmptyParagraph()
}
