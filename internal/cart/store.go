package cart

// The functions in this file are the pure cart transitions. None of them
// mutate their input or perform I/O.

// AddProduct increments the line named p.Name, or appends a new quantity-1
// line without id when no such line exists.
func AddProduct(s State, p Product) State {
	next := s.Clone()
	if i := next.indexByName(p.Name); i >= 0 {
		next[i].Quantity++
		return next
	}
	return append(next, NewLineItem(p))
}

// SetQuantity replaces the quantity of the line with id. Zero or below
// removes the line. An unknown id is a no-op.
func SetQuantity(s State, id string, quantity int) State {
	i := s.indexByID(id)
	if i < 0 {
		return s.Clone()
	}
	if quantity <= 0 {
		next := make(State, 0, len(s)-1)
		next = append(next, s[:i]...)
		return append(next, s[i+1:]...)
	}
	next := s.Clone()
	next[i].Quantity = quantity
	return next
}

// RemoveLine is the single quantity-zero-deletes transition.
func RemoveLine(s State, id string) State {
	return SetQuantity(s, id, 0)
}

// Find returns the line with id.
func Find(s State, id string) (LineItem, bool) {
	if i := s.indexByID(id); i >= 0 {
		return s[i], true
	}
	return LineItem{}, false
}

// IncreasedQuantity has no upper bound.
func IncreasedQuantity(l LineItem) int {
	return l.Quantity + 1
}

// DecreasedQuantity never goes below zero; zero means removal.
func DecreasedQuantity(l LineItem) int {
	return max(0, l.Quantity-1)
}

// Subtotal sums price * quantity over all lines.
func Subtotal(s State) float64 {
	var sum float64
	for _, l := range s {
		sum += l.Total()
	}
	return sum
}

// ApplyCreate is the persistence-side create: merge by name or append with a
// fresh id from newID.
func ApplyCreate(s State, item LineItem, newID func() string) State {
	if s.indexByName(item.Name) >= 0 {
		return AddProduct(s, Product{Name: item.Name})
	}
	line := item
	line.ID = newID()
	line.Quantity = 1
	return append(s.Clone(), line)
}

// ApplyUpdate is the persistence-side update: quantity zero deletes,
// otherwise patch is merged into the existing line. Unknown ids are a no-op.
func ApplyUpdate(s State, id string, patch LineItem) State {
	i := s.indexByID(id)
	if i < 0 {
		return s.Clone()
	}
	if patch.Quantity <= 0 {
		return RemoveLine(s, id)
	}
	next := s.Clone()
	next[i] = next[i].Merge(patch)
	return next
}
