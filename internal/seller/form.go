package seller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Form holds product fields as typed by the seller, before parsing. It is
// also the shape of the saved draft.
type Form struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Price            string `json:"price"`
	Stock            string `json:"stock"`
	Category         string `json:"category"`
	Brand            string `json:"brand"`
	Tags             string `json:"tags"`
	Discount         string `json:"discount"`
	ImageURL         string `json:"image_url"`
	AdditionalImages string `json:"additional_images"`
}

func EmptyForm() Form {
	return Form{Discount: "0", AdditionalImages: "[]"}
}

// FormFromProduct prefills the form for editing p.
func FormFromProduct(p domain.Product) Form {
	f := Form{
		Title:            p.Title,
		Description:      p.Description,
		Price:            p.Price.String(),
		Stock:            strconv.Itoa(p.Stock),
		Category:         p.Category,
		Brand:            p.Brand,
		Tags:             p.Tags,
		Discount:         p.Discount.String(),
		ImageURL:         p.ImageURL,
		AdditionalImages: p.AdditionalImages,
	}
	if f.AdditionalImages == "" {
		f.AdditionalImages = "[]"
	}
	return f
}

// Input parses and validates the form. Failures are reported as a
// *domain.ValidationError keyed by field name.
func (f Form) Input() (domain.ProductInput, error) {
	v := &domain.ValidationError{}
	in := domain.ProductInput{
		Title:            strings.TrimSpace(f.Title),
		Description:      strings.TrimSpace(f.Description),
		Category:         strings.TrimSpace(f.Category),
		Brand:            strings.TrimSpace(f.Brand),
		Tags:             strings.TrimSpace(f.Tags),
		ImageURL:         strings.TrimSpace(f.ImageURL),
		AdditionalImages: strings.TrimSpace(f.AdditionalImages),
	}

	if price, err := decimal.NewFromString(strings.TrimSpace(f.Price)); err != nil {
		v.Add("price", "Price must be greater than 0")
	} else {
		in.Price = price
	}
	if stock, err := strconv.Atoi(strings.TrimSpace(f.Stock)); err != nil {
		v.Add("stock", "Stock cannot be negative")
	} else {
		in.Stock = stock
	}
	if d := strings.TrimSpace(f.Discount); d != "" {
		if discount, err := decimal.NewFromString(d); err != nil {
			v.Add("discount", "Discount must be between 0 and 100")
		} else {
			in.Discount = discount
		}
	}

	var invalid *domain.ValidationError
	if errors.As(in.Validate(), &invalid) {
		for field, msg := range invalid.Fields {
			v.Add(field, msg)
		}
	}
	if err := v.Err(); err != nil {
		return domain.ProductInput{}, err
	}
	return in, nil
}
