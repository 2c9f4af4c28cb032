package catalog

import (
	"errors"
	"fmt"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// ErrUnknownProduct is returned by Lookup for names outside the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// Catalog is a static, ordered product list with unique names.
type Catalog struct {
	products []cart.Product
	byName   map[string]int
}

// New builds a Catalog. Duplicate names are rejected.
func New(products []cart.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]cart.Product, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	copy(c.products, products)
	for i, p := range c.products {
		if p.Name == "" {
			return nil, fmt.Errorf("product %d: empty name", i)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q: negative price", p.Name)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("product %q: duplicate name", p.Name)
		}
		c.byName[p.Name] = i
	}
	return c, nil
}

// Products returns the catalog in display order.
func (c *Catalog) Products() []cart.Product {
	out := make([]cart.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Lookup finds a product by name.
func (c *Catalog) Lookup(name string) (cart.Product, error) {
	i, ok := c.byName[name]
	if !ok {
		return cart.Product{}, fmt.Errorf("%q: %w", name, ErrUnknownProduct)
	}
	return c.products[i], nil
}

// Default is the ice cream menu the cart page ships with.
func Default() *Catalog {
	c, err := New(defaultProducts)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultProducts = []cart.Product{
	{Name: "Abacaxi Suíço", Image: "https://placehold.co/100x100/F7D046/333?text=Abacaxi", Category: "Leite", Price: 3.50},
	{Name: "Açaí", Image: "https://placehold.co/100x100/4B0082/FFF?text=Açaí", Category: "Leite", Price: 4.00},
	{Name: "Ameixa", Image: "https://placehold.co/100x100/8A2BE2/FFF?text=Ameixa", Category: "Leite", Price: 3.25},
	{Name: "Amendoim", Image: "https://placehold.co/100x100/D2B48C/333?text=Amendoim", Category: "Leite", Price: 3.75},
	{Name: "Banana", Image: "https://placehold.co/100x100/FFD700/333?text=Banana", Category: "Leite", Price: 3.00},
	{Name: "Blue Ice", Image: "https://placehold.co/100x100/00BFFF/FFF?text=Blue+Ice", Category: "Leite", Price: 3.50},
	{Name: "Chocolate", Image: "https://placehold.co/100x100/7B3F00/FFF?text=Chocolate", Category: "Leite", Price: 3.75},
	{Name: "Coco", Image: "https://placehold.co/100x100/FFFFFF/333?text=Coco", Category: "Leite", Price: 3.25},
	{Name: "Coco Queimado", Image: "https://placehold.co/100x100/8B4513/FFF?text=Coco+Q", Category: "Leite", Price: 3.50},
	{Name: "Creme", Image: "https://placehold.co/100x100/FFFACD/333?text=Creme", Category: "Leite", Price: 3.00},
	{Name: "Cupuaçu", Image: "https://placehold.co/100x100/967969/FFF?text=Cupuaçu", Category: "Leite", Price: 4.25},
	{Name: "Goiaba", Image: "https://placehold.co/100x100/FF6347/FFF?text=Goiaba", Category: "Leite", Price: 3.25},
}
