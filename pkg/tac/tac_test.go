package tac

import "testing"

func TestEmitAppendsToTail(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	b := c.Emit(VAR, nil, nil, nil)

	if c.Head != a || c.Tail != b {
		t.Fatalf("expected Head=a, Tail=b, got Head=%v Tail=%v", c.Head, c.Tail)
	}
	if a.Next != b || b.Prev != a {
		t.Fatalf("expected a<->b linkage, got a.Next=%v b.Prev=%v", a.Next, b.Prev)
	}
}

func TestDetachMiddle(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	b := c.Emit(VAR, nil, nil, nil)
	d := c.Emit(VAR, nil, nil, nil)

	c.Detach(b)

	if a.Next != d || d.Prev != a {
		t.Fatalf("expected a<->d after detaching b, got a.Next=%v d.Prev=%v", a.Next, d.Prev)
	}
	if b.Prev != nil || b.Next != nil {
		t.Fatalf("expected detached node's links cleared, got Prev=%v Next=%v", b.Prev, b.Next)
	}
}

func TestDetachHead(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	b := c.Emit(VAR, nil, nil, nil)

	c.Detach(a)

	if c.Head != b || b.Prev != nil {
		t.Fatalf("expected b to become the new head, got Head=%v b.Prev=%v", c.Head, b.Prev)
	}
}

func TestDetachTail(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	b := c.Emit(VAR, nil, nil, nil)

	c.Detach(b)

	if c.Tail != a || a.Next != nil {
		t.Fatalf("expected a to become the new tail, got Tail=%v a.Next=%v", c.Tail, a.Next)
	}
}

func TestDetachOnlyNode(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)

	c.Detach(a)

	if c.Head != nil || c.Tail != nil {
		t.Fatalf("expected empty list after detaching the only node, got Head=%v Tail=%v", c.Head, c.Tail)
	}
}

func TestInsertBeforeMiddle(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	d := c.Emit(VAR, nil, nil, nil)

	n := &Instr{Op: LABEL}
	c.InsertBefore(d, n)

	if a.Next != n || n.Prev != a || n.Next != d || d.Prev != n {
		t.Fatalf("expected a<->n<->d, got a.Next=%v n.Prev=%v n.Next=%v d.Prev=%v", a.Next, n.Prev, n.Next, d.Prev)
	}
}

func TestInsertBeforeHead(t *testing.T) {
	c := NewContext(nil)
	d := c.Emit(VAR, nil, nil, nil)

	n := &Instr{Op: LABEL}
	c.InsertBefore(d, n)

	if c.Head != n {
		t.Fatalf("expected n to become the new head, got Head=%v", c.Head)
	}
}

func TestInsertBeforeNilAppendsAtTail(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)

	n := &Instr{Op: LABEL}
	c.InsertBefore(nil, n)

	if c.Tail != n || a.Next != n {
		t.Fatalf("expected n appended at tail, got Tail=%v a.Next=%v", c.Tail, a.Next)
	}
}

func TestInsertAfterMiddle(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	d := c.Emit(VAR, nil, nil, nil)

	n := &Instr{Op: LABEL}
	c.InsertAfter(a, n)

	if a.Next != n || n.Prev != a || n.Next != d || d.Prev != n {
		t.Fatalf("expected a<->n<->d, got a.Next=%v n.Prev=%v n.Next=%v d.Prev=%v", a.Next, n.Prev, n.Next, d.Prev)
	}
}

func TestInsertAfterNilPrependsAtHead(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)

	n := &Instr{Op: LABEL}
	c.InsertAfter(nil, n)

	if c.Head != n || n.Next != a || a.Prev != n {
		t.Fatalf("expected n prepended at head, got Head=%v n.Next=%v a.Prev=%v", c.Head, n.Next, a.Prev)
	}
}

func TestNewTempNameIsSequential(t *testing.T) {
	c := NewContext(nil)
	if got := c.NewTempName(); got != "t1" {
		t.Errorf("expected t1, got %q", got)
	}
	if got := c.NewTempName(); got != "t2" {
		t.Errorf("expected t2, got %q", got)
	}
}

func TestNewLabelNameIsSequential(t *testing.T) {
	c := NewContext(nil)
	if got := c.NewLabelName(); got != "L1" {
		t.Errorf("expected L1, got %q", got)
	}
	if got := c.NewLabelName(); got != "L2" {
		t.Errorf("expected L2, got %q", got)
	}
}

func TestWalkReturnsInOrder(t *testing.T) {
	c := NewContext(nil)
	a := c.Emit(VAR, nil, nil, nil)
	b := c.Emit(LABEL, nil, nil, nil)

	got := c.Walk()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("expected [a, b], got %v", got)
	}
}

func TestOpString(t *testing.T) {
	if ADD.String() != "ADD" {
		t.Errorf("expected ADD, got %q", ADD.String())
	}
	if got := Op(999).String(); got != "?" {
		t.Errorf("expected ? for unknown op, got %q", got)
	}
}
