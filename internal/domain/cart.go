package domain

import "github.com/shopspring/decimal"

// CartLine is one product-and-quantity entry. Title, Price and ImageURL are
// captured when the product is first added and never refreshed.
type CartLine struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Subtotal is price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order, at most one line per product id.
type Cart struct {
	Lines []CartLine
}

// Find returns the index of the line for productID or -1.
func (c Cart) Find(productID int64) int {
	for i, l := range c.Lines {
		if l.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Total is the exact sum of every line subtotal.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount sums quantities across lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
