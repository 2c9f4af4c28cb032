package handlers

import (
	"github.com/imrishuroy/go-cart-view/internal/cart"
)

// LineView is one cart row as the page renders it.
type LineView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Total        float64 `json:"total"`
	PriceDisplay string  `json:"price_display"`
	TotalDisplay string  `json:"total_display"`
}

// CartView is the cart table plus the order summary. Shipping is free, so
// total equals subtotal.
type CartView struct {
	Items           []LineView `json:"items"`
	Empty           bool       `json:"empty"`
	Lines           int        `json:"lines"`
	Units           int        `json:"units"`
	Subtotal        float64    `json:"subtotal"`
	SubtotalDisplay string     `json:"subtotal_display"`
	Total           float64    `json:"total"`
	TotalDisplay    string     `json:"total_display"`
}

// ProductView is a catalog card.
type ProductView struct {
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	PriceDisplay string  `json:"price_display"`
}

func newCartView(s cart.State) CartView {
	items := make([]LineView, 0, len(s))
	for _, l := range s {
		items = append(items, LineView{
			ID:           l.ID,
			Name:         l.Name,
			Image:        l.Image,
			Category:     l.Category,
			Price:        l.Price,
			Quantity:     l.Quantity,
			Total:        l.Total(),
			PriceDisplay: cart.FormatAmount(l.Price),
			TotalDisplay: cart.FormatAmount(l.Total()),
		})
	}
	subtotal := cart.Subtotal(s)
	return CartView{
		Items:           items,
		Empty:           len(s) == 0,
		Lines:           len(s),
		Units:           s.Units(),
		Subtotal:        subtotal,
		SubtotalDisplay: cart.FormatAmount(subtotal),
		Total:           subtotal,
		TotalDisplay:    cart.FormatAmount(subtotal),
	}
}

func newProductViews(ps []cart.Product) []ProductView {
	out := make([]ProductView, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProductView{
			Name:         p.Name,
			Image:        p.Image,
			Category:     p.Category,
			Price:        p.Price,
			PriceDisplay: cart.FormatAmount(p.Price),
		})
	}
	return out
}
