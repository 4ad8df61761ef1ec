package pick

// SelectionSet is an ordered, duplicate-free set of object refs.
// Insertion order is preserved so batch operations apply in the order
// the user selected.
type SelectionSet struct {
	refs  []Ref
	index map[Ref]struct{}
}

// NewSelectionSet returns an empty selection.
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{index: make(map[Ref]struct{})}
}

// Add appends a ref unless it is already selected. Reports whether the
// selection changed.
func (s *SelectionSet) Add(r Ref) bool {
	if _, ok := s.index[r]; ok {
		return false
	}
	s.index[r] = struct{}{}
	s.refs = append(s.refs, r)
	return true
}

// AddAll adds every ref in order.
func (s *SelectionSet) AddAll(refs []Ref) {
	for _, r := range refs {
		s.Add(r)
	}
}

// Remove drops a ref if present.
func (s *SelectionSet) Remove(r Ref) bool {
	if _, ok := s.index[r]; !ok {
		return false
	}
	delete(s.index, r)
	for i, have := range s.refs {
		if have == r {
			s.refs = append(s.refs[:i], s.refs[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports membership.
func (s *SelectionSet) Contains(r Ref) bool {
	_, ok := s.index[r]
	return ok
}

// Len returns the number of selected objects.
func (s *SelectionSet) Len() int { return len(s.refs) }

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.refs = s.refs[:0]
	s.index = make(map[Ref]struct{})
}

// Refs returns the selection in insertion order. The caller owns the
// returned slice.
func (s *SelectionSet) Refs() []Ref {
	out := make([]Ref, len(s.refs))
	copy(out, s.refs)
	return out
}
