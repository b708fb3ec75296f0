package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// getterTree builds:
//
//	speed = "4.5";
//	count = "3";
//	on = "true";
//	name = "rover";
//	nums = ["1", "2", "3"];
//	robot {
//	    retries = "2";
//	}
func getterTree() *Node {
	root := NewRoot()
	add := func(name string, vals ...string) {
		a := NewArray(name)
		a.Values = vals
		root.AddChild(a)
	}
	add("speed", "4.5")
	add("count", "3")
	add("on", "true")
	add("name", "rover")
	add("nums", "1", "2", "3")
	robot := NewContainer("robot")
	root.AddChild(robot)
	retries := NewArray("retries")
	retries.AddValue("2")
	robot.AddChild(retries)
	return root
}

func TestScalarGetters(t *testing.T) {
	root := getterTree()
	if got, err := Int(root, "count"); err != nil || got != 3 {
		t.Errorf("Int = %d, %v", got, err)
	}
	if got, err := Bool(root, "on"); err != nil || !got {
		t.Errorf("Bool = %v, %v", got, err)
	}
	if got, err := Float(root, "speed"); err != nil || got != 4.5 {
		t.Errorf("Float = %v, %v", got, err)
	}
	if got, err := Str(root, "name"); err != nil || got != "rover" {
		t.Errorf("Str = %q, %v", got, err)
	}
	if got, err := Int(root, "robot.retries"); err != nil || got != 2 {
		t.Errorf("nested Int = %d, %v", got, err)
	}
}

func TestGetterErrors(t *testing.T) {
	root := getterTree()
	if _, err := Int(root, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing key: got %v, want ErrNotFound", err)
	}
	if _, err := Int(root, "robot"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("container as scalar: got %v, want ErrTypeMismatch", err)
	}
	if _, err := Int(root, "name"); !errors.Is(err, ErrCastFailed) {
		t.Errorf("non-numeric value: got %v, want ErrCastFailed", err)
	}
	if _, err := StrArray(root, "robot"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("container as array: got %v, want ErrTypeMismatch", err)
	}
}

func TestArrayFill(t *testing.T) {
	root := getterTree()

	// shorter destination: fill to capacity, report the fill count
	short := make([]int64, 2)
	n, err := IntArray(root, "nums", short)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("fill count = %d, want 2", n)
	}
	if d := cmp.Diff([]int64{1, 2}, short); d != "" {
		t.Errorf("filled values (-want +got):\n%s", d)
	}

	// longer destination: only the available values are written
	long := make([]int64, 5)
	n, err = IntArray(root, "nums", long)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("fill count = %d, want 3", n)
	}
	if d := cmp.Diff([]int64{1, 2, 3, 0, 0}, long); d != "" {
		t.Errorf("filled values (-want +got):\n%s", d)
	}
}

func TestArrayFillBadValue(t *testing.T) {
	root := NewRoot()
	a := NewArray("mixed")
	a.Values = []string{"1", "x", "3"}
	root.AddChild(a)

	out := make([]int64, 3)
	n, err := IntArray(root, "mixed", out)
	if !errors.Is(err, ErrCastFailed) {
		t.Fatalf("got %v, want ErrCastFailed", err)
	}
	if n != 1 {
		t.Errorf("fill count before failure = %d, want 1", n)
	}
}

func TestStrArrayCopies(t *testing.T) {
	root := getterTree()
	got, err := StrArray(root, "nums")
	if err != nil {
		t.Fatal(err)
	}
	got[0] = "mutated"
	if v, _ := Str(root, "nums"); v != "1" {
		t.Error("StrArray returned a live reference to stored values")
	}
}

func TestArrayLenAndHasKey(t *testing.T) {
	root := getterTree()
	if n, err := ArrayLen(root, "nums"); err != nil || n != 3 {
		t.Errorf("ArrayLen = %d, %v", n, err)
	}
	if !HasKey(root, "robot.retries") {
		t.Error("HasKey(robot.retries) = false")
	}
	if HasKey(root, "robot.nope") {
		t.Error("HasKey(robot.nope) = true")
	}
}

func TestSetValue(t *testing.T) {
	root := getterTree()

	// replace an existing scalar
	if err := SetValue(root, "count", "9"); err != nil {
		t.Fatal(err)
	}
	if got, _ := Int(root, "count"); got != 9 {
		t.Errorf("count = %d after set", got)
	}

	// create a missing path
	if err := SetValue(root, "new.deep.key", "v"); err != nil {
		t.Fatal(err)
	}
	if got, _ := Str(root, "new.deep.key"); got != "v" {
		t.Errorf("created key = %q", got)
	}

	// container keys reject scalar sets
	if err := SetValue(root, "robot", "v"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("set on container: got %v, want ErrTypeMismatch", err)
	}
}

func TestSetValueKeepsTail(t *testing.T) {
	root := getterTree()
	if err := SetValue(root, "nums", "9"); err != nil {
		t.Fatal(err)
	}
	got, _ := StrArray(root, "nums")
	if d := cmp.Diff([]string{"9", "2", "3"}, got); d != "" {
		t.Errorf("values (-want +got):\n%s", d)
	}
}

func TestSetValues(t *testing.T) {
	root := getterTree()
	if err := SetValues(root, "nums", []string{"7", "8"}); err != nil {
		t.Fatal(err)
	}
	got, _ := StrArray(root, "nums")
	if d := cmp.Diff([]string{"7", "8"}, got); d != "" {
		t.Errorf("values (-want +got):\n%s", d)
	}
	if err := SetValues(root, "robot", nil); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("set on container: got %v, want ErrTypeMismatch", err)
	}
}

func TestSubkeysAtRoot(t *testing.T) {
	root := getterTree()
	got, err := SubkeysAt(root, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"speed", "count", "on", "name", "nums", "robot"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("root subkeys (-want +got):\n%s", d)
	}
	if _, err := SubkeysAt(root, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
