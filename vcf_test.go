package tsconvert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

func vcfFixture() *trees.TableCollection {
	tc := singleTreeTables()
	tc.AddSite(1.1, "T")
	tc.AddSite(2.3, "A")
	tc.AddSite(7.9, "G")
	tc.AddSite(9.2, "C")
	tc.AddMutation(1, 3, "T")
	tc.AddMutation(2, 2, "C")
	tc.AddMutation(3, 3, "T")
	tc.AddMutation(3, 0, "C")
	return tc
}

func TestToVCF(t *testing.T) {
	ts := mustSeal(t, vcfFixture())
	var buf bytes.Buffer
	if err := ToVCF(ts, &buf); err != nil {
		t.Fatalf("ToVCF: %v", err)
	}
	want := strings.Join([]string{
		"##fileformat=VCFv4.2",
		"##source=tsconvert",
		`##FILTER=<ID=PASS,Description="All filters passed">`,
		"##contig=<ID=1,length=10>",
		`##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">`,
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\ttsk_0\ttsk_1\ttsk_2",
		"1\t1\t.\tT\t.\t.\tPASS\t.\tGT\t0\t0\t0",
		"1\t2\t.\tA\tT\t.\tPASS\t.\tGT\t1\t1\t0",
		"1\t8\t.\tG\tC\t.\tPASS\t.\tGT\t0\t0\t1",
		"1\t9\t.\tC\tT\t.\tPASS\t.\tGT\t0\t1\t0",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("ToVCF output:\n%s\nwant:\n%s", got, want)
	}
}

func TestVCFEncoderPloidy(t *testing.T) {
	tc := trees.NewTableCollection(10)
	for i := 0; i < 4; i++ {
		tc.AddNode(trees.NodeIsSample, 0, nil)
	}
	tc.AddNode(0, 1, nil) // 4
	tc.AddNode(0, 1, nil) // 5
	tc.AddEdge(0, 10, 4, 0)
	tc.AddEdge(0, 10, 4, 1)
	tc.AddEdge(0, 10, 5, 2)
	tc.AddEdge(0, 10, 5, 3)
	tc.AddSite(4.6, "A")
	tc.AddMutation(0, 4, "T")
	ts := mustSeal(t, tc)

	var buf bytes.Buffer
	err := VCFEncoder(VCFOptions{Ploidy: 2, Contig: "chr2"})(ts, &buf)
	if err != nil {
		t.Fatalf("VCFEncoder: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "##contig=<ID=chr2,length=10>") {
		t.Errorf("output missing contig header:\n%s", out)
	}
	if !strings.Contains(out, "FORMAT\ttsk_0\ttsk_1\n") {
		t.Errorf("output should have two diploid individuals:\n%s", out)
	}
	if !strings.Contains(out, "chr2\t5\t.\tA\tT\t.\tPASS\t.\tGT\t1|1\t0|0\n") {
		t.Errorf("output missing phased genotype row:\n%s", out)
	}
}

func TestVCFEncoderErrors(t *testing.T) {
	ts := mustSeal(t, singleTreeTables())
	err := VCFEncoder(VCFOptions{Ploidy: 2})(ts, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "does not divide") {
		t.Errorf("ploidy 2 over 3 samples: err = %v", err)
	}
	err = VCFEncoder(VCFOptions{Ploidy: -1})(ts, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "ploidy must be positive") {
		t.Errorf("negative ploidy: err = %v", err)
	}

	tc := singleTreeTables()
	tc.AddSite(2.3, "A")
	tc.AddSite(2.4, "G")
	ts = mustSeal(t, tc)
	err = ToVCF(ts, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "both round to position 2") {
		t.Errorf("colliding positions: err = %v", err)
	}
}
