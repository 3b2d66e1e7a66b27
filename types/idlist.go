package types

// IDList is an ordered list of identifiers (keyword names, variable names,
// struct tags). Order is significant: positions are used as indices.
type IDList []string

// Find returns the position of name in l, or -1 if it is absent.
func (l IDList) Find(name string) int {
	for i, id := range l {
		if id == name {
			return i
		}
	}
	return -1
}
