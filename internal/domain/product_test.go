package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductInputValidate(t *testing.T) {
	valid := ProductInput{
		Title:            "Lamp",
		Description:      "Bright",
		Price:            decimal.RequireFromString("9.99"),
		Stock:            1,
		Discount:         decimal.RequireFromString("100"),
		AdditionalImages: `["a.png"]`,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	bad := ProductInput{Stock: -2, Discount: decimal.RequireFromString("-1"), AdditionalImages: "{}"}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("expected *ValidationError")
	}
	for _, field := range []string{"title", "description", "price", "stock", "discount", "additional_images"} {
		if _, ok := v.Fields[field]; !ok {
			t.Fatalf("expected %s to fail, got %v", field, v.Fields)
		}
	}
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	v := &ValidationError{}
	v.Add("title", "Title is required")
	v.Add("price", "Price must be greater than 0")
	v.Add("title", "ignored")
	if got, want := v.Error(), "price: Price must be greater than 0; title: Title is required"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if (&ValidationError{}).Err() != nil {
		t.Fatalf("empty validation error should be nil")
	}
}
