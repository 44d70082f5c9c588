package ir

import (
	"testing"
)

func TestPostorder(t *testing.T) {
	cases := []struct {
		tree Node
		want []string
	}{
		{NewConst(0), []string{"0"}},
		{NewOp("add", NewConst(0), NewConst(2)), []string{"0", "2", "add(0, 2)"}},
		{
			NewOp("add", NewOp("sub", NewConst(0), NewConst(6)), NewConst(2)),
			[]string{"0", "6", "sub(0, 6)", "2", "add(sub(0, 6), 2)"},
		},
	}

	for i, tc := range cases {
		nodes := tc.tree.Postorder(nil)
		if len(nodes) != len(tc.want) {
			t.Errorf("%d: Got %d nodes, wanted %d.", i, len(nodes), len(tc.want))
			continue
		}
		for j, n := range nodes {
			if n.String() != tc.want[j] {
				t.Errorf("%d: Node %d = %q, wanted %q.", i, j, n, tc.want[j])
			}
		}
	}
}

func TestPostorderVisitsParentLast(t *testing.T) {
	inner := NewOp("sub", NewConst(0), NewConst(6))
	root := NewOp("add", inner, NewConst(2))

	nodes := root.Postorder(nil)
	if nodes[len(nodes)-1] != Node(root) {
		t.Errorf("Root wasn't last, got %v.", nodes[len(nodes)-1])
	}

	seen := map[Node]int{}
	for i, n := range nodes {
		seen[n] = i
	}
	if seen[Node(inner)] > seen[Node(root)] {
		t.Errorf("Operand %v visited after its parent.", inner)
	}
}

func TestString(t *testing.T) {
	cases := []struct {
		tree Node
		want string
	}{
		{NewConst(-6), "-6"},
		{NewOp("neg", NewConst(1)), "neg(1)"},
		{NewOp("add", NewConst(1), NewConst(2)), "add(1, 2)"},
	}

	for i, tc := range cases {
		if got := tc.tree.String(); got != tc.want {
			t.Errorf("%d: Got %q, wanted %q.", i, got, tc.want)
		}
	}
}
