package tsconvert

import (
	"bytes"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

func TestToPDF(t *testing.T) {
	ts := mustSeal(t, vcfFixture())
	var buf bytes.Buffer
	if err := ToPDF(ts, &buf); err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:16])
	}
}

func TestToPDFHandlesForests(t *testing.T) {
	tc := twoTreeTables()
	tc.AddNode(trees.NodeIsSample, 0, nil) // isolated sample, so every tree has two roots
	ts := mustSeal(t, tc)
	var buf bytes.Buffer
	if err := ToPDF(ts, &buf); err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty report")
	}
}

func TestToDocx(t *testing.T) {
	ts := mustSeal(t, vcfFixture())
	var buf bytes.Buffer
	if err := ToDocx(ts, &buf); err != nil {
		t.Fatalf("ToDocx: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Errorf("output does not look like a docx archive: %q", buf.Bytes()[:8])
	}
}
