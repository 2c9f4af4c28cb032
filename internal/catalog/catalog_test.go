package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-cart-view/internal/cart"
)

func TestDefault(t *testing.T) {
	c := Default()
	products := c.Products()

	require.Len(t, products, 12)
	assert.Equal(t, "Abacaxi Suíço", products[0].Name)

	p, err := c.Lookup("Cupuaçu")
	require.NoError(t, err)
	assert.Equal(t, 4.25, p.Price)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Default().Lookup("Pistache")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestNew_Rejects(t *testing.T) {
	cases := map[string][]cart.Product{
		"duplicate": {{Name: "A", Price: 1}, {Name: "A", Price: 2}},
		"empty":     {{Name: "", Price: 1}},
		"negative":  {{Name: "A", Price: -1}},
	}
	for name, products := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(products)
			assert.Error(t, err)
		})
	}
}

func TestProducts_ReturnsCopy(t *testing.T) {
	c := Default()
	ps := c.Products()
	ps[0].Price = 100

	assert.Equal(t, 3.50, c.Products()[0].Price)
}
