package vm

import "testing"

func TestCompletion(t *testing.T) {
	s := NewString("boom")
	c := Throw(s)
	if !c.IsThrow() || c.IsNormal() {
		t.Fatal("Expected a throw completion")
	}
	if c.String() != `throw("boom")` {
		t.Errorf("Unexpected String(): %s", c.String())
	}
	c.Free()
	if s.RefCount() != 0 {
		t.Errorf("Expected the completion to own its value, refcount %d", s.RefCount())
	}

	n := Normal(NumberValue(1))
	if !n.IsNormal() || n.Take().AsNumber() != 1 {
		t.Error("Expected normal(1)")
	}
}
