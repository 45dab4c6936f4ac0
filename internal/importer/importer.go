// Package importer loads a seller's catalog from a CSV file.
package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Create(ctx context.Context, sellerID int64, in domain.ProductInput) (*domain.Product, error)
}

// CSVImporter reads product rows and creates them for one seller.
//
// Recognised columns: title, description, price, stock, discount, category,
// brand, tags, image_url. A row with an empty title and an image_url adds an
// extra image to the product above it.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	sellerID int64
}

func NewCSVImporter(r io.Reader, products ProductWriter, sellerID int64) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		products: products,
		sellerID: sellerID,
	}
}

type csvRow struct {
	line   int
	input  domain.ProductInput
	images []string
}

// Run creates one product per titled row and returns how many were created.
// It stops at the first row that fails validation or cannot be saved.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["title"]; !ok {
		return 0, errors.New("read headers: missing title column")
	}

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}

		if row.input.Title != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil {
			current.images = append(current.images, row.input.ImageURL)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	in := row.input
	images := row.images
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("line %d: encode images: %w", row.line, err)
	}
	in.AdditionalImages = string(raw)

	if err := in.Validate(); err != nil {
		return fmt.Errorf("line %d (%q): %w", row.line, in.Title, err)
	}
	if _, err := i.products.Create(ctx, i.sellerID, in); err != nil {
		return fmt.Errorf("create product %q: %w", in.Title, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	title := pick(record, index, "title")
	imageURL := pick(record, index, "image_url")
	if title == "" && imageURL == "" {
		return nil, nil
	}

	row := &csvRow{line: line}
	row.input = domain.ProductInput{
		Title:       title,
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Brand:       pick(record, index, "brand"),
		Tags:        pick(record, index, "tags"),
		ImageURL:    imageURL,
	}
	if title == "" {
		return row, nil
	}

	var err error
	if row.input.Price, err = decimalField(record, index, "price"); err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	if row.input.Discount, err = decimalField(record, index, "discount"); err != nil {
		return nil, fmt.Errorf("line %d: %w", line, err)
	}
	if s := pick(record, index, "stock"); s != "" {
		if row.input.Stock, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("line %d: stock %q is not a whole number", line, s)
		}
	}
	return row, nil
}

func decimalField(record []string, index map[string]int, key string) (decimal.Decimal, error) {
	s := pick(record, index, key)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a number", key, s)
	}
	return d, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
