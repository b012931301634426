package sql

// AttributeSet is a set of attributes keyed by expression-id, not by name:
// two attribute references with different names but the same id are the
// same element.
type AttributeSet map[ExprId]Attribute

// NewAttributeSet builds an AttributeSet from the given attributes.
func NewAttributeSet(attrs ...Attribute) AttributeSet {
	s := make(AttributeSet, len(attrs))
	for _, a := range attrs {
		s[a.ExprId()] = a
	}
	return s
}

// Contains reports whether a is a member of s (by id).
func (s AttributeSet) Contains(a Attribute) bool {
	_, ok := s[a.ExprId()]
	return ok
}

// ContainsId reports whether id is a member of s.
func (s AttributeSet) ContainsId(id ExprId) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set containing every attribute in s or other.
func (s AttributeSet) Union(other AttributeSet) AttributeSet {
	out := make(AttributeSet, len(s)+len(other))
	for id, a := range s {
		out[id] = a
	}
	for id, a := range other {
		out[id] = a
	}
	return out
}

// Intersect returns a new set containing every attribute in both s and
// other.
func (s AttributeSet) Intersect(other AttributeSet) AttributeSet {
	out := AttributeSet{}
	for id, a := range s {
		if _, ok := other[id]; ok {
			out[id] = a
		}
	}
	return out
}

// Subtract returns a new set containing every attribute in s that is not in
// other.
func (s AttributeSet) Subtract(other AttributeSet) AttributeSet {
	out := AttributeSet{}
	for id, a := range s {
		if _, ok := other[id]; !ok {
			out[id] = a
		}
	}
	return out
}

// IsEmpty reports whether the set has no members.
func (s AttributeSet) IsEmpty() bool {
	return len(s) == 0
}

// ToSlice returns the set's members in unspecified order.
func (s AttributeSet) ToSlice() []Attribute {
	out := make([]Attribute, 0, len(s))
	for _, a := range s {
		out = append(out, a)
	}
	return out
}

// AttributeMap is a mapping keyed by expression-id, used to record
// substitutions (e.g. the id-rewrite map dedupRight builds for the right
// side of a self-join).
type AttributeMap map[ExprId]Attribute

// Get returns the mapped attribute for id, or (nil, false) if absent.
func (m AttributeMap) Get(id ExprId) (Attribute, bool) {
	a, ok := m[id]
	return a, ok
}
