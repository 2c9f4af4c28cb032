package cart

// Product is a read-only catalog entry.
type Product struct {
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// LineItem is one distinct product in the cart. ID is assigned by the
// persistence layer and stays empty until then.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Total is price * quantity, unrounded.
func (l LineItem) Total() float64 {
	return l.Price * float64(l.Quantity)
}

// Merge returns l with the non-zero fields of patch applied. The id is never
// taken from patch.
func (l LineItem) Merge(patch LineItem) LineItem {
	if patch.Name != "" {
		l.Name = patch.Name
	}
	if patch.Image != "" {
		l.Image = patch.Image
	}
	if patch.Category != "" {
		l.Category = patch.Category
	}
	if patch.Price != 0 {
		l.Price = patch.Price
	}
	if patch.Quantity != 0 {
		l.Quantity = patch.Quantity
	}
	return l
}

// NewLineItem copies the product fields into a quantity-1 line without id.
func NewLineItem(p Product) LineItem {
	return LineItem{
		Name:     p.Name,
		Image:    p.Image,
		Category: p.Category,
		Price:    p.Price,
		Quantity: 1,
	}
}

// State is the ordered list of line items, in the order they were first added.
type State []LineItem

// Clone returns an independent copy of s. A nil state clones to an empty one.
func (s State) Clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

func (s State) indexByName(name string) int {
	for i, l := range s {
		if l.Name == name {
			return i
		}
	}
	return -1
}

func (s State) indexByID(id string) int {
	if id == "" {
		return -1
	}
	for i, l := range s {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Units is the sum of quantities over all lines.
func (s State) Units() int {
	n := 0
	for _, l := range s {
		n += l.Quantity
	}
	return n
}
