package deepcopy

import (
	"errors"
	"reflect"
	"testing"
)

type tree struct {
	Name     string
	Count    int
	Tags     []string
	Meta     map[string]int
	Left     *tree
	Right    *tree
	internal int
}

func TestCopyOneScalars(t *testing.T) {
	c := New()

	for _, root := range []any{42, "hello", true, 3.5} {
		cp, err := c.CopyOne(root)
		if err != nil {
			t.Fatalf("CopyOne(%v): %v", root, err)
		}
		if cp != root {
			t.Fatalf("expected %v, got %v", root, cp)
		}
	}

	cp, err := c.CopyOne(nil)
	if err != nil {
		t.Fatalf("CopyOne(nil): %v", err)
	}
	if cp != nil {
		t.Fatalf("expected nil, got %v", cp)
	}
}

func TestCopyOneGraph(t *testing.T) {
	c := New()

	root := &tree{
		Name:  "root",
		Count: 2,
		Tags:  []string{"a", "b"},
		Meta:  map[string]int{"depth": 0},
		Left:  &tree{Name: "left", Meta: map[string]int{"depth": 1}},
	}

	cp, err := c.CopyOne(root)
	if err != nil {
		t.Fatalf("CopyOne: %v", err)
	}
	got, ok := cp.(*tree)
	if !ok {
		t.Fatalf("expected *tree, got %T", cp)
	}
	if got == root {
		t.Fatal("copy aliases the source")
	}
	if !reflect.DeepEqual(got, root) {
		t.Fatalf("copy not deep-equal: %+v vs %+v", got, root)
	}
	if got.Left == root.Left {
		t.Fatal("nested pointer aliases the source")
	}
	if &got.Tags[0] == &root.Tags[0] {
		t.Fatal("slice backing array aliases the source")
	}

	// Mutating the copy must not touch the original.
	got.Meta["depth"] = 99
	if root.Meta["depth"] != 0 {
		t.Fatalf("mutating the copy leaked into the source: %d", root.Meta["depth"])
	}
}

func TestCopyOneSharedSubstructure(t *testing.T) {
	c := New()

	shared := &tree{Name: "shared"}
	root := &tree{Name: "root", Left: shared, Right: shared}

	cp, err := c.CopyOne(root)
	if err != nil {
		t.Fatalf("CopyOne: %v", err)
	}
	got := cp.(*tree)
	if got.Left != got.Right {
		t.Fatal("shared subtree duplicated in the copy")
	}
	if got.Left == shared {
		t.Fatal("shared subtree aliases the source")
	}
}

func TestCopyOneCycle(t *testing.T) {
	c := New()

	root := &tree{Name: "root"}
	root.Left = root

	cp, err := c.CopyOne(root)
	if err != nil {
		t.Fatalf("CopyOne: %v", err)
	}
	got := cp.(*tree)
	if got.Left != got {
		t.Fatal("cycle not preserved in the copy")
	}
	if got == root {
		t.Fatal("copy aliases the source")
	}
}

func TestCopyOneCyclicMap(t *testing.T) {
	c := New()

	m := map[string]any{"name": "m"}
	m["self"] = m

	cp, err := c.CopyOne(m)
	if err != nil {
		t.Fatalf("CopyOne: %v", err)
	}
	got := cp.(map[string]any)
	if reflect.ValueOf(got).Pointer() == reflect.ValueOf(m).Pointer() {
		t.Fatal("copy aliases the source")
	}
	self, ok := got["self"].(map[string]any)
	if !ok {
		t.Fatalf("self entry is %T", got["self"])
	}
	if reflect.ValueOf(self).Pointer() != reflect.ValueOf(got).Pointer() {
		t.Fatal("map cycle not preserved in the copy")
	}
}

func TestCopyManyIdentity(t *testing.T) {
	c := New()

	m := map[string]int{"k": 1}
	other := map[string]int{"k": 1}

	outs, err := c.CopyMany([]any{m, other, m})
	if err != nil {
		t.Fatalf("CopyMany: %v", err)
	}
	if len(outs) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(outs))
	}
	p0 := reflect.ValueOf(outs[0]).Pointer()
	p1 := reflect.ValueOf(outs[1]).Pointer()
	p2 := reflect.ValueOf(outs[2]).Pointer()
	if p0 != p2 {
		t.Fatal("identical roots produced distinct outputs")
	}
	if p0 == p1 {
		t.Fatal("value-equal but distinct roots share an output")
	}
	if p0 == reflect.ValueOf(m).Pointer() {
		t.Fatal("output aliases the source")
	}
}

func TestCopyManyOrder(t *testing.T) {
	c := New()

	outs, err := c.CopyMany([]any{"a", "b", "c"})
	if err != nil {
		t.Fatalf("CopyMany: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if outs[i] != want {
			t.Fatalf("output %d: expected %q, got %v", i, want, outs[i])
		}
	}
}

func TestCopyOneUnexportedField(t *testing.T) {
	c := New()

	root := &tree{Name: "root", internal: 7}
	cp, err := c.CopyOne(root)
	if err != nil {
		t.Fatalf("CopyOne: %v", err)
	}
	if cp.(*tree).internal != 7 {
		t.Fatalf("unexported field not carried: %d", cp.(*tree).internal)
	}
}

func TestCopyUncopyable(t *testing.T) {
	c := New()

	_, err := c.CopyOne(make(chan int))
	if !errors.Is(err, ErrUncopyable) {
		t.Fatalf("expected ErrUncopyable, got %v", err)
	}

	// A channel buried in a graph fails the whole call.
	_, err = c.CopyMany([]any{map[string]int{"ok": 1}, []any{make(chan int)}})
	if !errors.Is(err, ErrUncopyable) {
		t.Fatalf("expected ErrUncopyable, got %v", err)
	}
}

func TestCopyOneArrayAndInterface(t *testing.T) {
	c := New()

	root := [2]any{map[string]int{"k": 1}, "s"}
	cp, err := c.CopyOne(root)
	if err != nil {
		t.Fatalf("CopyOne: %v", err)
	}
	got := cp.([2]any)
	if !reflect.DeepEqual(got, root) {
		t.Fatalf("copy not deep-equal: %v vs %v", got, root)
	}
	if reflect.ValueOf(got[0]).Pointer() == reflect.ValueOf(root[0]).Pointer() {
		t.Fatal("array element aliases the source")
	}
}
