package api

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// productList is the one listing schema the rest of the client works with.
type productList struct {
	Products []domain.Product
}

// decodeProductList accepts the listing shapes the catalog is known to serve:
// a bare array, {"results": [...]} or {"products": [...]}.
func decodeProductList(op string, body []byte) (productList, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return productList{}, &ParseError{Op: op, Reason: "empty body"}
	}

	switch trimmed[0] {
	case '[':
		var items []domain.Product
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return productList{}, &ParseError{Op: op, Err: err}
		}
		return productList{Products: items}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return productList{}, &ParseError{Op: op, Err: err}
		}
		for _, key := range []string{"results", "products"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var items []domain.Product
			if err := json.Unmarshal(raw, &items); err != nil {
				return productList{}, &ParseError{Op: op, Reason: key + " is not a product list", Err: err}
			}
			return productList{Products: items}, nil
		}
		return productList{}, &ParseError{Op: op, Reason: "object has neither results nor products"}
	default:
		return productList{}, &ParseError{Op: op, Reason: "unexpected listing shape"}
	}
}

// normalizeOrder fills in totals that older servers leave out.
func normalizeOrder(o *domain.Order) {
	items := 0
	for i := range o.Items {
		it := &o.Items[i]
		if it.LineTotal.IsZero() {
			it.LineTotal = it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		}
		items += it.Quantity
	}
	if o.TotalItems == 0 {
		o.TotalItems = items
	}
	if o.TotalPrice.IsZero() {
		for _, it := range o.Items {
			o.TotalPrice = o.TotalPrice.Add(it.LineTotal)
		}
	}
}
