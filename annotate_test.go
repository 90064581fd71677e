package tsconvert

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/tskit-dev/tsconvert/trees"
)

func annotateFixture(t *testing.T) *trees.TreeSequence {
	t.Helper()
	tc := trees.NewTableCollection(10)
	tc.AddNode(trees.NodeIsSample, 0, []byte(`{"name":"a"}`))
	tc.AddNode(trees.NodeIsSample, 0, []byte(`{"name":"b","population":"old"}`))
	tc.AddNode(0, 1, nil)
	tc.AddEdge(0, 10, 2, 0)
	tc.AddEdge(0, 10, 2, 1)
	return mustSeal(t, tc)
}

func metadataMap(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("metadata %s: %v", data, err)
	}
	return m
}

func TestAnnotateNodesCSV(t *testing.T) {
	ts := annotateFixture(t)
	csv := "name,population,latitude\n" +
		"a,AFR,1.5\n" +
		"b,EUR,2.5\n" +
		"missing,SAS,9\n"
	annotated, err := AnnotateNodesCSV(ts, strings.NewReader(csv), "name", "name")
	if err != nil {
		t.Fatalf("AnnotateNodesCSV: %v", err)
	}

	want0 := map[string]any{"name": "a", "population": "AFR", "latitude": "1.5"}
	if got := metadataMap(t, annotated.Node(0).Metadata); !reflect.DeepEqual(got, want0) {
		t.Errorf("node 0 metadata = %v, want %v", got, want0)
	}
	// Row values overwrite properties already present.
	want1 := map[string]any{"name": "b", "population": "EUR", "latitude": "2.5"}
	if got := metadataMap(t, annotated.Node(1).Metadata); !reflect.DeepEqual(got, want1) {
		t.Errorf("node 1 metadata = %v, want %v", got, want1)
	}
	if md := annotated.Node(2).Metadata; md != nil {
		t.Errorf("metadata-less node gained metadata %s", md)
	}
	// The input sequence is left alone.
	if got := string(ts.Node(0).Metadata); got != `{"name":"a"}` {
		t.Errorf("source sequence was modified: %s", got)
	}
}

func TestAnnotateNodesCSVLastRowWins(t *testing.T) {
	ts := annotateFixture(t)
	csv := "name,x\na,1\na,2\n"
	annotated, err := AnnotateNodesCSV(ts, strings.NewReader(csv), "name", "name")
	if err != nil {
		t.Fatalf("AnnotateNodesCSV: %v", err)
	}
	if got := metadataMap(t, annotated.Node(0).Metadata)["x"]; got != "2" {
		t.Errorf("node 0 x = %v, want 2", got)
	}
}

func TestAnnotateNodesCSVSniffsDelimiter(t *testing.T) {
	ts := annotateFixture(t)
	for _, input := range []string{
		"name\tx\na\tok\n",
		"name;x\na;ok\n",
		"name|x\na|ok\n",
	} {
		annotated, err := AnnotateNodesCSV(ts, strings.NewReader(input), "name", "name")
		if err != nil {
			t.Fatalf("AnnotateNodesCSV(%q): %v", input, err)
		}
		if got := metadataMap(t, annotated.Node(0).Metadata)["x"]; got != "ok" {
			t.Errorf("input %q: node 0 x = %v, want ok", input, got)
		}
	}
}

func TestAnnotateNodesCSVNumericIDs(t *testing.T) {
	tc := trees.NewTableCollection(1)
	tc.AddNode(trees.NodeIsSample, 0, []byte(`{"sample_id":12}`))
	ts := mustSeal(t, tc)
	csv := "id,region\n12,north\n"
	annotated, err := AnnotateNodesCSV(ts, strings.NewReader(csv), "id", "sample_id")
	if err != nil {
		t.Fatalf("AnnotateNodesCSV: %v", err)
	}
	want := map[string]any{"sample_id": float64(12), "id": "12", "region": "north"}
	if got := metadataMap(t, annotated.Node(0).Metadata); !reflect.DeepEqual(got, want) {
		t.Errorf("node 0 metadata = %v, want %v", got, want)
	}
}

func TestAnnotateNodesCSVSkipsNodesWithoutProperty(t *testing.T) {
	tc := trees.NewTableCollection(1)
	tc.AddNode(trees.NodeIsSample, 0, []byte(`{"other":"x"}`))
	ts := mustSeal(t, tc)
	annotated, err := AnnotateNodesCSV(ts, strings.NewReader("name,x\na,1\n"), "name", "name")
	if err != nil {
		t.Fatalf("AnnotateNodesCSV: %v", err)
	}
	if got := string(annotated.Node(0).Metadata); got != `{"other":"x"}` {
		t.Errorf("node without the id property changed: %s", got)
	}
}

func TestAnnotateNodesCSVErrors(t *testing.T) {
	ts := annotateFixture(t)
	_, err := AnnotateNodesCSV(ts, strings.NewReader("pop,x\na,1\n"), "name", "name")
	if err == nil || !strings.Contains(err.Error(), `no column "name"`) {
		t.Errorf("missing column: err = %v", err)
	}
	_, err = AnnotateNodesCSV(ts, strings.NewReader(""), "name", "name")
	if err == nil || !strings.Contains(err.Error(), "no header row") {
		t.Errorf("empty input: err = %v", err)
	}
	_, err = AnnotateNodesCSV(ts, strings.NewReader("name,x\na\n"), "name", "name")
	if err == nil {
		t.Error("ragged row accepted")
	}
}
