package tsconvert

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

func TestToYAML(t *testing.T) {
	ts := mustSeal(t, tablesFixture())
	var buf bytes.Buffer
	if err := ToYAML(ts, &buf); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"sequence_length: 10",
		"is_sample: true",
		`metadata: '{"name":"a"}'`,
		"position: 1.5",
		"ancestral_state: A",
		"derived_state: G",
		"parent: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToYAML output missing %q:\n%s", want, out)
		}
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	ts := mustSeal(t, tablesFixture())
	var buf bytes.Buffer
	if err := ToYAML(ts, &buf); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	decoded, err := FromYAML(&buf)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if got, want := decoded.Tables(), ts.Tables(); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip tables = %+v, want %+v", got, want)
	}
}

func TestYAMLOmitsNullMutationParents(t *testing.T) {
	tc := trees.NewTableCollection(1)
	n := tc.AddNode(trees.NodeIsSample, 0, nil)
	s := tc.AddSite(0.5, "A")
	tc.AddMutation(s, n, "T")
	ts := mustSeal(t, tc)
	var buf bytes.Buffer
	if err := ToYAML(ts, &buf); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	if out := buf.String(); strings.Contains(out, "parent: -1") {
		t.Errorf("parentless mutation serialized a sentinel:\n%s", out)
	}
	decoded, err := FromYAML(&buf)
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	if got := decoded.Tables().Mutations[0].Parent; got != trees.NullMutation {
		t.Errorf("mutation parent = %d, want null", got)
	}
}

func TestFromYAMLRejectsGarbage(t *testing.T) {
	if _, err := FromYAML(strings.NewReader("\tsequence_length: 1\n")); err == nil {
		t.Error("FromYAML accepted garbage")
	}
	if _, err := FromYAML(strings.NewReader("sequence_length: [1]\n")); err == nil {
		t.Error("FromYAML accepted a mistyped document")
	}
}
