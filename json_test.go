package tsconvert

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

func TestToJSON(t *testing.T) {
	tc := trees.NewTableCollection(1)
	tc.AddNode(trees.NodeIsSample, 0, nil)
	ts := mustSeal(t, tc)
	var buf bytes.Buffer
	if err := ToJSON(ts, &buf); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	want := `{
  "sequence_length": 1,
  "nodes": [
    {
      "is_sample": true,
      "time": 0
    }
  ],
  "edges": [],
  "sites": [],
  "mutations": []
}
`
	if got := buf.String(); got != want {
		t.Errorf("ToJSON output:\n%s\nwant:\n%s", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	ts := mustSeal(t, tablesFixture())
	var buf bytes.Buffer
	if err := ToJSON(ts, &buf); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	decoded, err := FromJSON(&buf)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got, want := decoded.Tables(), ts.Tables(); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip tables = %+v, want %+v", got, want)
	}
}

func TestJSONMutationParents(t *testing.T) {
	ts := mustSeal(t, tablesFixture())
	var buf bytes.Buffer
	if err := ToJSON(ts, &buf); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	out := buf.String()
	// Only the one mutation with a parent carries the field.
	if got := strings.Count(out, `"parent": 1`); got != 1 {
		t.Errorf("output has %d mutation parent fields, want 1:\n%s", got, out)
	}
	decoded, err := FromJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	tables := decoded.Tables()
	if got := tables.Mutations[0].Parent; got != trees.NullMutation {
		t.Errorf("mutation 0 parent = %d, want null", got)
	}
	if got := tables.Mutations[2].Parent; got != 1 {
		t.Errorf("mutation 2 parent = %d, want 1", got)
	}
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	if _, err := FromJSON(strings.NewReader("not json")); err == nil {
		t.Error("FromJSON accepted garbage")
	}
	bad := `{"sequence_length": 1, "nodes": [{"is_sample": true, "time": 0, "metadata": [}]}`
	if _, err := FromJSON(strings.NewReader(bad)); err == nil {
		t.Error("FromJSON accepted malformed metadata")
	}
}
