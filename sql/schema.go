package sql

// Column describes one column of a base relation as the catalog reports
// it, before it has been turned into an AttributeReference by relation
// binding (§4.E).
type Column struct {
	Name     string
	Type     Type
	Nullable bool
	Source   string
}

// Schema is an ordered list of columns.
type Schema []*Column

// IndexOf returns the position of the named column, or -1. When resolver
// is nil, comparison is case-sensitive.
func (s Schema) IndexOf(name string, resolver Resolver) int {
	for i, c := range s {
		if resolver != nil {
			if resolver(c.Name, name) {
				return i
			}
		} else if c.Name == name {
			return i
		}
	}
	return -1
}
