package tsconvert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

func TestNexusEncoder(t *testing.T) {
	ts := mustSeal(t, twoTreeTables())
	var buf bytes.Buffer
	if err := NexusEncoder(2)(ts, &buf); err != nil {
		t.Fatalf("NexusEncoder: %v", err)
	}
	want := strings.Join([]string{
		"#NEXUS",
		"BEGIN TAXA;",
		"  DIMENSIONS NTAX=3;",
		"  TAXLABELS n0 n1 n2;",
		"END;",
		"BEGIN TREES;",
		"  TREE t0^5 = [&R] (n2:2.00,(n0:1.00,n1:1.00):1.00);",
		"  TREE t5^10 = [&R] (n0:3.00,(n1:1.50,n2:1.50):1.50);",
		"END;",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("nexus output:\n%s\nwant:\n%s", got, want)
	}
}

func TestNexusEncoderNeedsSingleRoots(t *testing.T) {
	tc := trees.NewTableCollection(1)
	tc.AddNode(trees.NodeIsSample, 0, nil)
	tc.AddNode(trees.NodeIsSample, 0, nil)
	ts := mustSeal(t, tc)
	err := ToNexus(ts, &bytes.Buffer{})
	if !trees.IsKind(err, trees.KindTopology) {
		t.Errorf("ToNexus on a forest: err = %v, want topology error", err)
	}
}
