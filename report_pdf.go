package tsconvert

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/tskit-dev/tsconvert/trees"
)

const (
	pdfPageWidth    = 190.0
	pdfMarginLeft   = 10.0
	pdfMarginTop    = 10.0
	pdfMarginRight  = 10.0
	pdfLineHeight   = 6.0
	pdfHeaderHeight = 10.0

	// Newick precision used by the report renditions.
	reportPrecision = 6
)

// ToPDF writes a human-readable summary report describing ts. The report
// covers the table counts, the per-tree intervals with a Newick rendition
// of each tree, and the variant sites.
func ToPDF(ts *trees.TreeSequence, w io.Writer) error {
	r := &pdfReport{}
	return r.render(ts, w)
}

type pdfReport struct {
	pdf *gofpdf.Fpdf
}

func (r *pdfReport) render(ts *trees.TreeSequence, w io.Writer) error {
	r.pdf = gofpdf.New("P", "mm", "A4", "")
	r.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	r.pdf.AddPage()

	r.addTitle(ts)
	r.addSummary(ts)
	if err := r.addTrees(ts); err != nil {
		return err
	}
	r.addSites(ts)

	return r.pdf.Output(w)
}

func (r *pdfReport) addTitle(ts *trees.TreeSequence) {
	r.pdf.SetFont("Arial", "B", 28)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.CellFormat(0, 12, "Tree Sequence Report", "", 1, "L", false, 0, "")

	r.pdf.SetFont("Arial", "", 12)
	r.pdf.SetTextColor(100, 100, 100)
	subtitle := fmt.Sprintf("%d samples over [0, %s)", ts.NumSamples(), formatFloat(ts.SequenceLength()))
	r.pdf.CellFormat(0, 8, subtitle, "", 1, "L", false, 0, "")

	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.Ln(4)

	r.pdf.SetDrawColor(200, 200, 200)
	r.pdf.Line(pdfMarginLeft, r.pdf.GetY(), pdfMarginLeft+pdfPageWidth, r.pdf.GetY())
	r.pdf.Ln(4)
}

func (r *pdfReport) addSummary(ts *trees.TreeSequence) {
	r.addSectionHeader("Summary")

	rows := [][2]string{
		{"Sequence length", formatFloat(ts.SequenceLength())},
		{"Sample nodes", fmt.Sprintf("%d", ts.NumSamples())},
		{"Nodes", fmt.Sprintf("%d", ts.NumNodes())},
		{"Edges", fmt.Sprintf("%d", ts.NumEdges())},
		{"Trees", fmt.Sprintf("%d", ts.NumTrees())},
		{"Sites", fmt.Sprintf("%d", ts.NumSites())},
		{"Mutations", fmt.Sprintf("%d", ts.NumMutations())},
	}

	for _, row := range rows {
		r.checkPageBreak(pdfLineHeight)
		r.pdf.SetFont("Arial", "B", 10)
		r.pdf.CellFormat(60, pdfLineHeight, row[0], "", 0, "L", false, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.CellFormat(0, pdfLineHeight, row[1], "", 1, "L", false, 0, "")
	}
	r.pdf.Ln(4)
}

func (r *pdfReport) addTrees(ts *trees.TreeSequence) error {
	r.addSectionHeader("Trees")

	t := ts.NewTree()
	for t.Next() {
		left, right := t.Interval()

		r.checkPageBreak(pdfLineHeight * 3)
		r.pdf.SetFont("Arial", "B", 11)
		header := fmt.Sprintf("Tree %d", t.Index())
		r.pdf.CellFormat(40, pdfLineHeight, header, "", 0, "L", false, 0, "")
		r.pdf.SetFont("Arial", "", 10)
		r.pdf.SetTextColor(100, 100, 100)
		interval := fmt.Sprintf("[%s, %s)", formatFloat(left), formatFloat(right))
		r.pdf.CellFormat(0, pdfLineHeight, interval, "", 1, "L", false, 0, "")
		r.pdf.SetTextColor(0, 0, 0)

		r.pdf.SetFont("Courier", "", 9)
		if _, err := t.Root(); err != nil {
			roots := t.Roots()
			r.pdf.MultiCell(pdfPageWidth, 5, fmt.Sprintf("forest with %d roots", len(roots)), "", "L", false)
		} else {
			s, err := t.Newick(reportPrecision)
			if err != nil {
				return err
			}
			r.pdf.MultiCell(pdfPageWidth, 5, s, "", "L", false)
		}
		r.pdf.Ln(2)
	}
	r.pdf.Ln(2)
	return nil
}

func (r *pdfReport) addSites(ts *trees.TreeSequence) {
	if ts.NumSites() == 0 {
		return
	}

	r.addSectionHeader("Sites")

	mutationCounts := make([]int, ts.NumSites())
	for i := 0; i < ts.NumMutations(); i++ {
		mutationCounts[ts.Mutation(i).Site]++
	}

	colWidths := []float64{40, 75, 75}
	headers := []string{"Position", "Ancestral state", "Mutations"}

	r.checkPageBreak(pdfHeaderHeight)
	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		r.pdf.CellFormat(colWidths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 10)
	for i := 0; i < ts.NumSites(); i++ {
		site := ts.Site(i)
		r.checkPageBreak(pdfLineHeight)
		cells := []string{
			formatFloat(site.Position),
			site.AncestralState,
			fmt.Sprintf("%d", mutationCounts[i]),
		}
		for j, cell := range cells {
			r.pdf.CellFormat(colWidths[j], pdfLineHeight, cell, "1", 0, "L", false, 0, "")
		}
		r.pdf.Ln(-1)
	}
	r.pdf.Ln(4)
}

func (r *pdfReport) addSectionHeader(title string) {
	r.checkPageBreak(pdfHeaderHeight + pdfLineHeight)
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetFillColor(240, 240, 240)
	r.pdf.CellFormat(0, pdfHeaderHeight, title, "", 1, "L", true, 0, "")
	r.pdf.Ln(2)
}

func (r *pdfReport) checkPageBreak(height float64) {
	_, pageHeight := r.pdf.GetPageSize()
	_, _, _, bottom := r.pdf.GetMargins()
	if r.pdf.GetY()+height > pageHeight-bottom {
		r.pdf.AddPage()
	}
}
