package parse

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/driftlab/param-format/ir"
	"github.com/driftlab/param-format/token"
)

const robotSrc = `
# robot configuration
robot {
    name = "rover";
    speed = (double) 4.5;
    retries = 3;
    sensors = ["lidar", "camera", "gps"];
    arm {
        joints = [1, 2, 3, 4, 5, 6];
        enabled = true;
    }
}
timeout_ms = 250;
`

func TestParseRobot(t *testing.T) {
	root, err := ParseString(robotSrc)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := ir.Str(root, "robot.name"); got != "rover" {
		t.Errorf("robot.name = %q", got)
	}
	if got, _ := ir.Float(root, "robot.speed"); got != 4.5 {
		t.Errorf("robot.speed = %v", got)
	}
	if got, _ := ir.Int(root, "timeout_ms"); got != 250 {
		t.Errorf("timeout_ms = %d", got)
	}
	if got, _ := ir.Bool(root, "robot.arm.enabled"); !got {
		t.Error("robot.arm.enabled = false")
	}
	sensors, err := ir.StrArray(root, "robot.sensors")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"lidar", "camera", "gps"}, sensors); d != "" {
		t.Errorf("sensors (-want +got):\n%s", d)
	}
	joints := make([]int64, 6)
	n, err := ir.IntArray(root, "robot.arm.joints", joints)
	if err != nil || n != 6 {
		t.Fatalf("joints fill = %d, %v", n, err)
	}
	subs, err := ir.SubkeysAt(root, "robot")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"name", "speed", "retries", "sensors", "arm"}
	if d := cmp.Diff(want, subs); d != "" {
		t.Errorf("robot subkeys (-want +got):\n%s", d)
	}
}

func TestParseForms(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, root *ir.Node)
	}{
		{
			name:  "empty input",
			input: "",
			check: func(t *testing.T, root *ir.Node) {
				if len(root.Children) != 0 {
					t.Errorf("root has %d children", len(root.Children))
				}
			},
		},
		{
			name:  "empty array",
			input: "a = [];",
			check: func(t *testing.T, root *ir.Node) {
				if n, err := ir.ArrayLen(root, "a"); err != nil || n != 0 {
					t.Errorf("len = %d, %v", n, err)
				}
			},
		},
		{
			name:  "empty container",
			input: "a { }",
			check: func(t *testing.T, root *ir.Node) {
				el := ir.Find(root, "a", false)
				if el == nil || el.Type != ir.ContainerType {
					t.Errorf("a = %+v", el)
				}
			},
		},
		{
			name:  "trailing comma",
			input: `a = ["x", ];`,
			check: func(t *testing.T, root *ir.Node) {
				vals, err := ir.StrArray(root, "a")
				if err != nil {
					t.Fatal(err)
				}
				if d := cmp.Diff([]string{"x"}, vals); d != "" {
					t.Errorf("values (-want +got):\n%s", d)
				}
			},
		},
		{
			name:  "cast in array element position is not allowed but cast before value is dropped",
			input: "a = (int) 5;",
			check: func(t *testing.T, root *ir.Node) {
				if got, _ := ir.Str(root, "a"); got != "5" {
					t.Errorf("a = %q, want cast dropped", got)
				}
			},
		},
		{
			name:  "bare identifiers as values",
			input: "a = [x, y];",
			check: func(t *testing.T, root *ir.Node) {
				vals, _ := ir.StrArray(root, "a")
				if d := cmp.Diff([]string{"x", "y"}, vals); d != "" {
					t.Errorf("values (-want +got):\n%s", d)
				}
			},
		},
		{
			name:  "duplicate keys both kept, first wins on lookup",
			input: "a = 1;\na = 2;",
			check: func(t *testing.T, root *ir.Node) {
				if len(root.Children) != 2 {
					t.Fatalf("root has %d children, want 2", len(root.Children))
				}
				if got, _ := ir.Int(root, "a"); got != 1 {
					t.Errorf("a = %d, want first declaration", got)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root, err := ParseString(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			tc.check(t, root)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two identifiers", "a b;"},
		{"assign without key", "= 5;"},
		{"missing value", "a = ;"},
		{"missing semicolon", "a = 5"},
		{"missing semicolon before close", "a { b = 1 }"},
		{"unclosed container", "a { b = 1;"},
		{"stray close", "}"},
		{"array missing comma", "a = [1 2];"},
		{"array unclosed", "a = [1, 2;"},
		{"value at top level", "\"v\";"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrSyntax) && !errors.Is(err, token.ErrLex) {
				t.Errorf("error %v wraps neither ErrSyntax nor ErrLex", err)
			}
		})
	}
}

func TestParseFailureDiscardsNothingOnSuccessPath(t *testing.T) {
	// a syntax error after valid content must not yield a partial tree
	root, err := ParseString("a = 1;\nb = ;")
	if err == nil {
		t.Fatal("expected an error")
	}
	if root != nil {
		t.Errorf("got partial tree %+v, want nil", root)
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := ParseString("a = 1;\nb = ;")
	var serr *SyntaxError
	if !errors.As(err, &serr) {
		t.Fatalf("error %T is not a *SyntaxError", err)
	}
	if serr.Line != 2 {
		t.Errorf("line = %d, want 2", serr.Line)
	}
}

func TestParseReaderName(t *testing.T) {
	_, err := ParseReader("conf", strings.NewReader("a = ;"))
	if err == nil || !strings.Contains(err.Error(), "conf:") {
		t.Errorf("error %v does not mention the source name", err)
	}
}
