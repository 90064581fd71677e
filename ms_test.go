package tsconvert

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

// twoTreeTables builds tables over [0, 10) whose trees are
// ((0,1)3,2)4 on [0, 5) and (0,(1,2)6)5 on [5, 10).
func twoTreeTables() *trees.TableCollection {
	tc := trees.NewTableCollection(10)
	for i := 0; i < 3; i++ {
		tc.AddNode(trees.NodeIsSample, 0, nil)
	}
	tc.AddNode(0, 1, nil)   // 3
	tc.AddNode(0, 2, nil)   // 4
	tc.AddNode(0, 3, nil)   // 5
	tc.AddNode(0, 1.5, nil) // 6
	tc.AddEdge(0, 5, 3, 0)
	tc.AddEdge(0, 5, 3, 1)
	tc.AddEdge(5, 10, 6, 1)
	tc.AddEdge(5, 10, 6, 2)
	tc.AddEdge(0, 5, 4, 2)
	tc.AddEdge(0, 5, 4, 3)
	tc.AddEdge(5, 10, 5, 0)
	tc.AddEdge(5, 10, 5, 6)
	return tc
}

func TestFromMs(t *testing.T) {
	input := strings.Join([]string{
		"ms 3 1 -T",
		"31562 27265 1691",
		"",
		"//",
		"[5](1:1,(2:0.5,3:0.5):0.5);",
		"[5]((1:0.6,2:0.6):0.4,3:1);",
	}, "\n")
	ts, err := FromMs(input)
	if err != nil {
		t.Fatalf("FromMs: %v", err)
	}
	if got := ts.SequenceLength(); got != 10 {
		t.Errorf("SequenceLength = %v, want 10", got)
	}
	if got := ts.NumTrees(); got != 2 {
		t.Errorf("NumTrees = %d, want 2", got)
	}
	if got := ts.NumSamples(); got != 3 {
		t.Errorf("NumSamples = %d, want 3", got)
	}
	// Both roots are at time 1 and so become a single node shared by
	// the two trees.
	if got := ts.NumNodes(); got != 6 {
		t.Errorf("NumNodes = %d, want 6", got)
	}
	wantTimes := []float64{0, 0, 0, 0.5, 0.6, 1}
	for id, want := range wantTimes {
		if got := ts.Node(id).Time; got != want {
			t.Errorf("node %d time = %v, want %v", id, got, want)
		}
	}
}

func TestFromMsSquashesIdenticalTrees(t *testing.T) {
	input := "[3](1:1,(2:0.5,3:0.5):0.5);\n[4](1:1,(2:0.5,3:0.5):0.5);\n"
	ts, err := FromMs(input)
	if err != nil {
		t.Fatalf("FromMs: %v", err)
	}
	if got := ts.NumTrees(); got != 1 {
		t.Errorf("NumTrees = %d, want 1", got)
	}
	if got := ts.SequenceLength(); got != 7 {
		t.Errorf("SequenceLength = %v, want 7", got)
	}
}

func TestFromMsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no trees", "ms 2 1\n12345\n", "no lines starting with ["},
		{"bad span", "[abc](1:1,2:1);", "bad interval length"},
		{"zero span", "[0](1:1,2:1);", "interval length must be positive"},
		{"missing bracket", "[5](1:1,2:1);\n(1:1,2:1);", "line 2 not in ms format"},
		{"unterminated span", "[5(1:1,2:1);", "missing ]"},
		{"equal internal times", "[5]((1:1,2:1):1,(3:1,4:1):1);", "two internal nodes with the same time"},
		{"bad leaf label", "[5](1:1,5:1);", `leaf label "5" is not a sample number in 1..2`},
		{"duplicate leaf label", "[5](1:1,1:1);", `duplicate leaf label "1"`},
		{"not ultrametric", "[5](1:1,2:2);", "not ultrametric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromMs(tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("FromMs(%q) err = %v, want %q", tt.input, err, tt.want)
			}
		})
	}
}

func TestMsEncoder(t *testing.T) {
	ts := mustSeal(t, twoTreeTables())
	var buf bytes.Buffer
	if err := MsEncoder(2)(ts, &buf); err != nil {
		t.Fatalf("MsEncoder: %v", err)
	}
	want := "[5](3:2.00,(1:1.00,2:1.00):1.00);\n" +
		"[5](1:3.00,(2:1.50,3:1.50):1.50);\n"
	if got := buf.String(); got != want {
		t.Errorf("encoded ms = %q, want %q", got, want)
	}
}

func TestMsRoundTrip(t *testing.T) {
	in := "[5](3:2.00,(1:1.00,2:1.00):1.00);\n" +
		"[5](1:3.00,(2:1.50,3:1.50):1.50);\n"
	ts, err := FromMs(in)
	if err != nil {
		t.Fatalf("FromMs: %v", err)
	}
	var buf bytes.Buffer
	if err := MsEncoder(2)(ts, &buf); err != nil {
		t.Fatalf("MsEncoder: %v", err)
	}
	if got := buf.String(); got != in {
		t.Errorf("round trip = %q, want %q", got, in)
	}
}
