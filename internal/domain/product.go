package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is owned by the remote catalog; clients only read it.
type Product struct {
	ID               int64           `json:"id"`
	Seller           int64           `json:"seller,omitempty"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	Discount         decimal.Decimal `json:"discount"`
	ImageURL         string          `json:"image_url,omitempty"`
	Thumbnail        string          `json:"thumbnail,omitempty"`
	Rating           decimal.Decimal `json:"rating"`
	ReviewsCount     int             `json:"reviews_count"`
	Category         string          `json:"category,omitempty"`
	Brand            string          `json:"brand,omitempty"`
	Tags             string          `json:"tags,omitempty"`
	AdditionalImages string          `json:"additional_images,omitempty"`
	CreatedAt        time.Time       `json:"created_at,omitempty"`
}

// Image returns the best image reference for display and cart snapshots.
func (p Product) Image() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	return p.Thumbnail
}

// ProductInput is what a seller submits to create or replace a product.
type ProductInput struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	Category         string          `json:"category"`
	Brand            string          `json:"brand"`
	Tags             string          `json:"tags"`
	Discount         decimal.Decimal `json:"discount"`
	ImageURL         string          `json:"image_url"`
	AdditionalImages string          `json:"additional_images"`
}

var hundred = decimal.NewFromInt(100)

func (in ProductInput) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		v.Add("title", "Title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		v.Add("description", "Description is required")
	}
	if !in.Price.IsPositive() {
		v.Add("price", "Price must be greater than 0")
	}
	if in.Stock < 0 {
		v.Add("stock", "Stock cannot be negative")
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(hundred) {
		v.Add("discount", "Discount must be between 0 and 100")
	}
	if in.AdditionalImages != "" {
		var urls []string
		if err := json.Unmarshal([]byte(in.AdditionalImages), &urls); err != nil {
			v.Add("additional_images", `Must be valid JSON array (e.g., ["url1", "url2"])`)
		}
	}
	return v.Err()
}
