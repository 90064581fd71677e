package trees

import (
	"reflect"
	"testing"
)

func TestTreeSweep(t *testing.T) {
	ts := mustSeal(t, twoTreeTables())
	tree := ts.NewTree()

	if !tree.Next() {
		t.Fatal("Next: no first tree")
	}
	if l, r := tree.Interval(); l != 0 || r != 5 {
		t.Fatalf("first interval = [%v, %v), want [0, 5)", l, r)
	}
	if got, want := tree.Children(4), []int{2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Children(4) = %v, want %v", got, want)
	}
	if got, want := tree.Children(3), []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Children(3) = %v, want %v", got, want)
	}
	if got := tree.Parent(3); got != 4 {
		t.Errorf("Parent(3) = %d, want 4", got)
	}
	if root, err := tree.Root(); err != nil || root != 4 {
		t.Errorf("Root() = %d, %v, want 4", root, err)
	}

	if !tree.Next() {
		t.Fatal("Next: no second tree")
	}
	if l, r := tree.Interval(); l != 5 || r != 10 {
		t.Fatalf("second interval = [%v, %v), want [5, 10)", l, r)
	}
	if root, err := tree.Root(); err != nil || root != 5 {
		t.Errorf("Root() = %d, %v, want 5", root, err)
	}
	if got, want := tree.Children(6), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Children(6) = %v, want %v", got, want)
	}
	if got := tree.Parent(3); got != NullNode {
		t.Errorf("Parent(3) = %d in second tree, want none", got)
	}
	if tree.Index() != 1 {
		t.Errorf("Index = %d, want 1", tree.Index())
	}

	if tree.Next() {
		t.Error("Next returned true past the last tree")
	}
}

func TestTreeSamplesAreLeftToRight(t *testing.T) {
	ts := mustSeal(t, twoTreeTables())
	tree := ts.NewTree()
	if !tree.Next() {
		t.Fatal("Next failed")
	}
	if got, want := tree.Samples(4), []int{2, 0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Samples(root) = %v, want %v", got, want)
	}
	if got, want := tree.Samples(3), []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Samples(3) = %v, want %v", got, want)
	}
	if got, want := tree.Samples(2), []int{2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Samples(2) = %v, want %v", got, want)
	}
}

func TestRootsWithIsolatedSample(t *testing.T) {
	tc := NewTableCollection(1)
	tc.AddNode(NodeIsSample, 0, nil) // 0, attached
	tc.AddNode(NodeIsSample, 0, nil) // 1, attached
	tc.AddNode(NodeIsSample, 0, nil) // 2, isolated
	tc.AddNode(0, 1, nil)            // 3
	tc.AddEdge(0, 1, 3, 0)
	tc.AddEdge(0, 1, 3, 1)
	ts := mustSeal(t, tc)
	tree := ts.NewTree()
	if !tree.Next() {
		t.Fatal("Next failed")
	}
	if got, want := tree.Roots(), []int{3, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("Roots = %v, want %v", got, want)
	}
	if _, err := tree.Root(); !IsKind(err, KindTopology) {
		t.Errorf("Root() on two-root tree: err = %v, want topology error", err)
	}
}
