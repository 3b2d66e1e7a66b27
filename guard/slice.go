package guard

// Slice adapts a Go slice to Container.
type Slice[E any] []E

// Len returns the number of elements.
func (s *Slice[E]) Len() int { return len(*s) }

// Back returns the last element.
func (s *Slice[E]) Back() E { return (*s)[len(*s)-1] }

// PopBack removes the last element.
func (s *Slice[E]) PopBack() {
	n := len(*s) - 1
	var zero E
	(*s)[n] = zero
	*s = (*s)[:n]
}

// Push appends e.
func (s *Slice[E]) Push(e E) { *s = append(*s, e) }
