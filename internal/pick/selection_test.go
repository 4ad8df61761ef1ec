package pick

import "testing"

func TestSelectionSetOrderAndDedupe(t *testing.T) {
	s := NewSelectionSet()

	a := Ref{Type: TypePoint, ID: "a"}
	b := Ref{Type: TypeLine, ID: "b"}

	if !s.Add(a) || !s.Add(b) {
		t.Fatal("fresh adds reported no change")
	}
	if s.Add(a) {
		t.Error("duplicate add reported a change")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}

	refs := s.Refs()
	if refs[0] != a || refs[1] != b {
		t.Errorf("order lost: %+v", refs)
	}

	// Mutating the returned slice must not affect the set.
	refs[0] = Ref{Type: TypePoint, ID: "x"}
	if !s.Contains(a) {
		t.Error("external mutation leaked into the set")
	}
}

func TestSelectionSetRemoveClear(t *testing.T) {
	s := NewSelectionSet()
	a := Ref{Type: TypePoint, ID: "a"}
	b := Ref{Type: TypePoint, ID: "b"}
	c := Ref{Type: TypeLine, ID: "c"}
	s.AddAll([]Ref{a, b, c})

	if !s.Remove(b) {
		t.Fatal("remove of member failed")
	}
	if s.Remove(b) {
		t.Error("second remove reported a change")
	}
	refs := s.Refs()
	if len(refs) != 2 || refs[0] != a || refs[1] != c {
		t.Errorf("refs after remove = %+v", refs)
	}

	s.Clear()
	if s.Len() != 0 || s.Contains(a) {
		t.Error("clear left members behind")
	}
	if !s.Add(a) {
		t.Error("add after clear failed")
	}
}
